package pitch

import (
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// FourierTransform uses a gonum FFT plan built once for a fixed size.
// Process does not allocate, which suits constrained targets.
type FourierTransform struct {
	*spectrum
	plan   *fourier.FFT
	coeffs []complex128
}

var _ Transformer = (*FourierTransform)(nil)

// NewFourierTransform creates a gonum backed transform for blocks of size samples.
func NewFourierTransform(size int, w Window) (*FourierTransform, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}

	var coeffs []float64
	if w == WindowHann {
		coeffs = make([]float64, size)
		for i := range coeffs {
			coeffs[i] = 1
		}
		coeffs = window.Hann(coeffs)
	}

	return &FourierTransform{
		spectrum: newSpectrum(size, coeffs),
		plan:     fourier.NewFFT(size),
		coeffs:   make([]complex128, size/2+1),
	}, nil
}

// Process transforms one block. It panics unless len(samples) equals the
// configured size.
func (t *FourierTransform) Process(samples []int16) {
	t.load(samples)
	t.store(t.plan.Coefficients(t.coeffs, t.input))
}
