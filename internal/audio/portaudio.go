package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// DefaultAmplification boosts weak instrument inputs.
const DefaultAmplification = 5.0

// PortAudioCapturer implements audio capture using PortAudio
type PortAudioCapturer struct {
	isCapturing   atomic.Bool
	stream        *portaudio.Stream
	handoff       *Handoff
	assembler     *BlockAssembler
	blockSize     int
	sampleRate    float64
	channels      int
	mono          []int16
	bufferMutex   sync.Mutex
	amplification float64 // Audio signal amplification factor
	logger        *slog.Logger
}

// NewPortAudioCapturer creates a new audio capturer using PortAudio.
// Blocks of exactly blockSize mono samples are handed to GetBuffer.
func NewPortAudioCapturer(blockSize int, sampleRate float64, channels int, logger *slog.Logger) (*PortAudioCapturer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("portaudio: need at least one input channel, got %d", channels)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c, err := newPortAudioCapturer(blockSize, sampleRate, channels, logger)
	if err != nil {
		return nil, err
	}

	// Initialize PortAudio
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	return c, nil
}

func newPortAudioCapturer(blockSize int, sampleRate float64, channels int, logger *slog.Logger) (*PortAudioCapturer, error) {
	c := &PortAudioCapturer{
		handoff:       NewHandoff(),
		blockSize:     blockSize,
		sampleRate:    sampleRate,
		channels:      channels,
		mono:          make([]int16, 0, max(blockSize, 0)),
		amplification: DefaultAmplification,
		logger:        logger,
	}

	assembler, err := NewBlockAssembler(blockSize, func(block []int16) {
		c.handoff.Publish(&AudioBuffer{Samples: block, SampleRate: c.sampleRate})
	})
	if err != nil {
		return nil, err
	}
	c.assembler = assembler
	return c, nil
}

// Start begins audio capture
func (c *PortAudioCapturer) Start() error {
	if c.isCapturing.Load() {
		return ErrAlreadyCapturing
	}

	// Open default input stream
	var err error
	c.stream, err = portaudio.OpenDefaultStream(
		c.channels, // input channels
		0,          // output channels (we don't need output)
		c.sampleRate,
		c.blockSize,    // frames per buffer
		c.processAudio, // callback function
	)
	if err != nil {
		return fmt.Errorf("portaudio: open stream: %w", err)
	}

	// Start the stream
	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		return fmt.Errorf("portaudio: start stream: %w", err)
	}

	c.isCapturing.Store(true)
	c.logger.Info("portaudio: capture started",
		"sample_rate", c.sampleRate, "channels", c.channels, "block", c.blockSize)
	return nil
}

// Stop ends audio capture
func (c *PortAudioCapturer) Stop() error {
	if !c.isCapturing.Load() {
		return ErrNotCapturing
	}

	// Stop and close the stream
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio: stop stream: %w", err)
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("portaudio: close stream: %w", err)
	}

	// Terminate PortAudio
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("portaudio: terminate: %w", err)
	}

	c.isCapturing.Store(false)
	c.logger.Info("portaudio: capture stopped", "dropped_blocks", c.handoff.Dropped())
	return nil
}

// processAudio is the callback function for audio processing. It runs on
// the PortAudio thread and never blocks.
func (c *PortAudioCapturer) processAudio(in, _ []int16) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	c.mono = c.mono[:0]
	frames := len(in) / c.channels
	for i := 0; i < frames; i++ {
		// Average the channels and apply amplification
		sum := 0.0
		for ch := 0; ch < c.channels; ch++ {
			sum += float64(in[i*c.channels+ch])
		}
		c.mono = append(c.mono, clampInt16(sum/float64(c.channels)*c.amplification))
	}

	c.assembler.Write(c.mono)
}

// GetBuffer returns the newest complete block
func (c *PortAudioCapturer) GetBuffer() (*AudioBuffer, error) {
	if !c.isCapturing.Load() {
		return nil, ErrNotCapturing
	}
	return c.handoff.buffer()
}

// IsCapturing returns true if currently capturing audio
func (c *PortAudioCapturer) IsCapturing() bool {
	return c.isCapturing.Load()
}

// SetAmplification sets the audio amplification factor
func (c *PortAudioCapturer) SetAmplification(factor float64) {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()

	// Ensure amplification is positive
	if factor < 0.1 {
		factor = 0.1
	}

	c.amplification = factor
}

func (c *PortAudioCapturer) Amplification() float64 {
	c.bufferMutex.Lock()
	defer c.bufferMutex.Unlock()
	return c.amplification
}
