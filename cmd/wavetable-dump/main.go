// ABOUTME: Prints the samples of a generated wavetable
// ABOUTME: Used to inspect table shapes and peak levels
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Resonate-Protocol/resonate-composer/pkg/wavetable"
)

var (
	kindName  = flag.String("kind", "sine", "Waveform: sine, saw, square, triangle, noise, additive-saw, additive-triangle")
	size      = flag.Int("size", wavetable.DefaultSize, "Table length in samples")
	harmonics = flag.Int("harmonics", wavetable.DefaultHarmonics, "Partials summed by additive kinds")
)

func main() {
	flag.Parse()

	kind, err := wavetable.ParseKind(*kindName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	table, err := wavetable.GenerateAdditive(kind, *size, *harmonics)
	if err != nil {
		log.Fatalf("Failed to generate %s table: %v", kind, err)
	}

	if err := dump(os.Stdout, kind, table); err != nil {
		log.Fatalf("Failed to write table: %v", err)
	}
}

// dump writes one "index value" line per sample followed by the peak
func dump(w io.Writer, kind wavetable.Kind, table wavetable.Table) error {
	if _, err := fmt.Fprintf(w, "# %s, %d samples\n", kind, len(table)); err != nil {
		return err
	}
	for i, v := range table {
		if _, err := fmt.Fprintf(w, "%d %.6f\n", i, v); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "# peak %.6f\n", wavetable.Peak(table))
	return err
}
