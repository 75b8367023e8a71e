package audio

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// SineSource generates a pure tone at real-time pace. It stands in for a
// microphone when no input device is available.
type SineSource struct {
	blockSize  int
	sampleRate float64
	amplitude  float64

	mu        sync.Mutex
	frequency float64
	phase     float64

	handoff     *Handoff
	isCapturing atomic.Bool
	cancel      context.CancelFunc
	done        chan struct{}
	logger      *slog.Logger
}

// NewSineSource creates a generator producing blocks of blockSize samples.
func NewSineSource(frequency, sampleRate, amplitude float64, blockSize int, logger *slog.Logger) (*SineSource, error) {
	if blockSize <= 0 {
		return nil, ErrBlockSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SineSource{
		blockSize:  blockSize,
		sampleRate: sampleRate,
		amplitude:  amplitude,
		frequency:  frequency,
		handoff:    NewHandoff(),
		logger:     logger,
	}, nil
}

// Start begins producing one block per block duration.
func (s *SineSource) Start() error {
	if s.isCapturing.Load() {
		return ErrAlreadyCapturing
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.isCapturing.Store(true)

	period := time.Duration(float64(s.blockSize) / s.sampleRate * float64(time.Second))
	go s.run(ctx, period)

	s.logger.Info("sine: generator started", "frequency", s.Frequency(), "period", period)
	return nil
}

func (s *SineSource) run(ctx context.Context, period time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.handoff.Publish(s.Next())
		}
	}
}

// Next synthesises the following block, continuing the phase of the last one.
func (s *SineSource) Next() *AudioBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples, phase := Sine(s.frequency, s.sampleRate, s.amplitude, s.blockSize, s.phase)
	s.phase = phase
	return &AudioBuffer{Samples: samples, SampleRate: s.sampleRate}
}

// Stop halts the generator.
func (s *SineSource) Stop() error {
	if !s.isCapturing.Swap(false) {
		return ErrNotCapturing
	}
	s.cancel()
	<-s.done
	s.logger.Info("sine: generator stopped")
	return nil
}

func (s *SineSource) GetBuffer() (*AudioBuffer, error) {
	if !s.isCapturing.Load() {
		return nil, ErrNotCapturing
	}
	return s.handoff.buffer()
}

func (s *SineSource) IsCapturing() bool { return s.isCapturing.Load() }

// SetFrequency retunes the generator without a phase jump.
func (s *SineSource) SetFrequency(hz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frequency = hz
}

func (s *SineSource) Frequency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency
}

// Sine returns n samples of a sine wave starting at phase (radians) and the
// phase following the last sample.
func Sine(frequency, sampleRate, amplitude float64, n int, phase float64) ([]int16, float64) {
	out := make([]int16, n)
	step := 2 * math.Pi * frequency / sampleRate
	for i := range out {
		out[i] = clampInt16(math.Round(amplitude * math.Sin(phase)))
		phase += step
	}
	return out, math.Mod(phase, 2*math.Pi)
}
