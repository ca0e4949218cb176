package lattice

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the magnitude of the spatial frequency content of a profile.
// The input is zero-padded to a power of two; bin i is i cycles across the
// padded length, and only the lower half of the bins is returned.
func Spectrum(profile []float64) []float64 {
	if len(profile) == 0 {
		return nil
	}
	n := 1
	for n < len(profile) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, profile)

	coeffs := fft.FFTReal(padded)
	out := make([]float64, max(n/2, 1))
	for i := range out {
		out[i] = cmplx.Abs(coeffs[i])
	}
	return out
}

// Dominant returns the strongest non-DC bin, or 0 when there is none.
func Dominant(spectrum []float64) int {
	best, idx := 0.0, 0
	for i := 1; i < len(spectrum); i++ {
		if spectrum[i] > best {
			best, idx = spectrum[i], i
		}
	}
	return idx
}
