// ABOUTME: Process-wide noise loop shared by percussion instruments
// ABOUTME: Generated once on first use and reused verbatim afterwards
package wavetable

import (
	"log"
	"math/rand"
	"sync"
)

var (
	noiseOnce sync.Once
	noiseLoop Table
)

// NoiseLoop returns the process-wide noise table of DefaultSize samples.
// The table is randomized once; every caller gets the same samples.
// Callers must not modify the returned table.
func NoiseLoop() Table {
	noiseOnce.Do(func() {
		noiseLoop = noise(DefaultSize, rand.Float64)
		log.Printf("Noise loop generated: %d samples", len(noiseLoop))
	})
	return noiseLoop
}
