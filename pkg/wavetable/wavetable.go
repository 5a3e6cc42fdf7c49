// ABOUTME: Closed-form and additive wavetable generators
// ABOUTME: Produces one period of each waveform kind as a float32 table
package wavetable

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/viterin/vek/vek32"
)

const (
	// DefaultSize is the table length used by the instrument bank
	DefaultSize = 128

	// DefaultHarmonics is the number of partials summed by the additive kinds
	DefaultHarmonics = 8
)

// Kind identifies a waveform shape
type Kind int

const (
	Sine Kind = iota
	Saw
	Square
	Triangle
	Noise
	AdditiveSaw
	AdditiveTriangle
)

var kindNames = map[Kind]string{
	Sine:             "sine",
	Saw:              "saw",
	Square:           "square",
	Triangle:         "triangle",
	Noise:            "noise",
	AdditiveSaw:      "additive-saw",
	AdditiveTriangle: "additive-triangle",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a kind name (as printed by String) to a Kind
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown waveform kind: %q", name)
}

// Table holds one period of a waveform. Indices are taken modulo len(Table).
type Table []float32

// Generate builds a table of the given kind and size.
// Additive kinds use DefaultHarmonics partials.
func Generate(kind Kind, size int) (Table, error) {
	return GenerateAdditive(kind, size, DefaultHarmonics)
}

// GenerateAdditive builds a table using the given number of harmonics for the
// additive kinds. The harmonic count is ignored by the closed-form kinds.
func GenerateAdditive(kind Kind, size, harmonics int) (Table, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid table size %d", size)
	}

	switch kind {
	case Sine:
		return sine(size), nil
	case Saw:
		return saw(size), nil
	case Square:
		return square(size), nil
	case Triangle:
		return triangle(size), nil
	case Noise:
		return noise(size, rand.Float64), nil
	case AdditiveSaw:
		if harmonics <= 0 {
			return nil, fmt.Errorf("invalid harmonic count %d", harmonics)
		}
		return additiveSaw(size, harmonics), nil
	case AdditiveTriangle:
		if harmonics <= 0 {
			return nil, fmt.Errorf("invalid harmonic count %d", harmonics)
		}
		return additiveTriangle(size, harmonics), nil
	default:
		return nil, fmt.Errorf("unsupported waveform kind: %v", kind)
	}
}

// Peak returns the largest absolute sample value in the table
func Peak(t Table) float32 {
	if len(t) == 0 {
		return 0
	}
	return vek32.Max(vek32.Abs(t))
}

// phase returns the angle of sample n in a table of the given size
func phase(n, size int) float64 {
	return 2 * math.Pi * float64(n) / float64(size)
}

func sine(size int) Table {
	t := make(Table, size)
	for n := range t {
		t[n] = float32(math.Sin(phase(n, size)))
	}
	return t
}

func saw(size int) Table {
	t := make(Table, size)
	step := 2 / float64(size)
	for n := range t {
		t[n] = float32(-1 + step*float64(n))
	}
	return t
}

func square(size int) Table {
	t := make(Table, size)
	for n := range t {
		// sin(0) == 0 maps to the high level
		if math.Sin(phase(n, size)) >= 0 {
			t[n] = 1
		} else {
			t[n] = -1
		}
	}
	return t
}

func triangle(size int) Table {
	t := make(Table, size)
	step := 4 / float64(size)
	for n := range t {
		if n < size/2 {
			t[n] = float32(-1 + step*float64(n))
		} else {
			t[n] = float32(3 - step*float64(n))
		}
	}
	return t
}

// additiveSaw sums the first harmonics of the series. Each partial carries a
// 1/(1+i) offset that is left uncorrected, so the result is not normalized.
func additiveSaw(size, harmonics int) Table {
	t := make(Table, size)
	for n := range t {
		var sum float64
		for i := 1; i <= harmonics; i++ {
			sum += math.Sin(float64(i)*phase(n, size)) + 1/float64(1+i)
		}
		t[n] = float32(sum)
	}
	return t
}

// additiveTriangle sums odd harmonics with alternating sign and 1/(i+2)^2 falloff
func additiveTriangle(size, harmonics int) Table {
	t := make(Table, size)
	for n := range t {
		var sum float64
		for i := 0; i < harmonics; i++ {
			sign := 1.0
			if i%2 == 1 {
				sign = -1.0
			}
			falloff := float64((i + 2) * (i + 2))
			sum += sign * math.Sin(float64(2*i+1)*phase(n, size)) / falloff
		}
		t[n] = float32(sum)
	}
	return t
}

func noise(size int, rnd func() float64) Table {
	t := make(Table, size)
	for n := range t {
		t[n] = float32(rnd()*2 - 1)
	}
	return t
}
