package pitch

import (
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// FFTTransform runs go-dsp's real FFT, which accepts any block size.
type FFTTransform struct {
	*spectrum
}

var _ Transformer = (*FFTTransform)(nil)

// NewFFTTransform creates a go-dsp backed transform for blocks of size samples.
func NewFFTTransform(size int, w Window) (*FFTTransform, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}

	var coeffs []float64
	if w == WindowHann {
		coeffs = window.Hann(size)
	}
	return &FFTTransform{spectrum: newSpectrum(size, coeffs)}, nil
}

// Process transforms one block. It panics unless len(samples) equals the
// configured size.
func (t *FFTTransform) Process(samples []int16) {
	t.load(samples)
	t.store(fft.FFTReal(t.input))
}
