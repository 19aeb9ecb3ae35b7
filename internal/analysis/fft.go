package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the one-sided magnitude spectrum of data after
// removing its mean and zero-padding to a power of two. Bin k corresponds to
// frequency k/(n*dt) where n is the padded length.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	n := nextPow2(len(data))
	padded := make([]float64, n)
	copy(padded, data)
	floats.AddConst(-stat.Mean(data, nil), padded[:len(data)])

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency of the strongest non-DC bin of a
// series sampled every dt, and the bin's magnitude.
func DominantFrequency(data []float64, dt float64) (freq, power float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, 0
	}
	idx := floats.MaxIdx(ps[1:]) + 1
	n := 2 * len(ps)
	return float64(idx) / (float64(n) * dt), ps[idx]
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
