package pitch

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// minMagnitude clamps magnitudes before taking logarithms.
const minMagnitude = 1e-12

// Transformer turns fixed-size sample blocks into a spectrum.
type Transformer interface {
	// Process transforms exactly Size samples. Any other length is a
	// programming error and panics.
	Process(samples []int16)

	// FindFundamentalFrequency estimates the dominant frequency of the
	// last processed block with sub-bin accuracy.
	FindFundamentalFrequency(sampleRate float64) float64

	// FFTData returns the magnitude of every bin (N/2 values).
	FFTData() []float64

	// NormalizedFFTData returns FFTData scaled by 1/sqrt(N).
	NormalizedFFTData() []float64
}

// Window selects the taper applied to a block before the transform.
type Window int

const (
	WindowHann Window = iota
	WindowRectangular
)

func (w Window) String() string {
	switch w {
	case WindowHann:
		return "hann"
	case WindowRectangular:
		return "rectangular"
	default:
		return "unknown"
	}
}

// spectrum holds the state shared by every backend: the window
// coefficients, the input scratch buffer and the N/2 retained bins.
type spectrum struct {
	size   int
	window []float64
	input  []float64
	bins   []complex128
}

func checkSize(size int) error {
	if size < 8 || size%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrFFTSize, size)
	}
	return nil
}

func newSpectrum(size int, window []float64) *spectrum {
	return &spectrum{
		size:   size,
		window: window,
		input:  make([]float64, size),
		bins:   make([]complex128, size/2),
	}
}

// load checks the block size and fills the input buffer with windowed samples.
func (s *spectrum) load(samples []int16) {
	if len(samples) != s.size {
		panic(fmt.Sprintf("pitch: transform expects exactly %d samples, got %d", s.size, len(samples)))
	}
	for i, sample := range samples {
		v := float64(sample)
		if s.window != nil {
			v *= s.window[i]
		}
		s.input[i] = v
	}
}

// store keeps the first N/2 coefficients and clears the imaginary part of
// bin 0, where some real FFTs pack the Nyquist term.
func (s *spectrum) store(coeffs []complex128) {
	copy(s.bins, coeffs[:len(s.bins)])
	s.bins[0] = complex(real(s.bins[0]), 0)
}

func (s *spectrum) FFTData() []float64 {
	mags := make([]float64, len(s.bins))
	for i, c := range s.bins {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

func (s *spectrum) NormalizedFFTData() []float64 {
	mags := s.FFTData()
	floats.Scale(1/math.Sqrt(float64(s.size)), mags)
	return mags
}

func (s *spectrum) FindFundamentalFrequency(sampleRate float64) float64 {
	return estimateFundamental(s.FFTData(), sampleRate)
}

// estimateFundamental finds the strongest bin, excluding DC and the last
// bin, and refines it with a parabola fitted to the log magnitudes of the
// peak and its neighbours.
func estimateFundamental(mags []float64, sampleRate float64) float64 {
	if len(mags) < 3 {
		return 0
	}

	// Nyquist spread over the retained bins
	binWidth := (sampleRate / 2) / float64(len(mags))

	first, last := 1, len(mags)-2
	peak := floats.MaxIdx(mags[first:last+1]) + first
	if peak == first || peak == last {
		return float64(peak) * binWidth
	}

	y0 := math.Log(math.Max(mags[peak-1], minMagnitude))
	y1 := math.Log(math.Max(mags[peak], minMagnitude))
	y2 := math.Log(math.Max(mags[peak+1], minMagnitude))

	denom := y0 - 2*y1 + y2
	if denom == 0 {
		return float64(peak) * binWidth
	}

	delta := 0.5 * (y0 - y2) / denom
	return (float64(peak) + delta) * binWidth
}

// BinFrequency returns the centre frequency of bin i for a spectrum of
// binCount retained bins.
func BinFrequency(i, binCount int, sampleRate float64) float64 {
	if binCount == 0 {
		return 0
	}
	return float64(i) * (sampleRate / 2) / float64(binCount)
}
