package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"go.bug.st/serial"
)

// SerialCapturer reads ADC frames from a microcontroller over a serial port.
type SerialCapturer struct {
	device string
	baud   int

	port        io.ReadCloser
	handoff     *Handoff
	assembler   *BlockAssembler
	sampleRate  atomic.Uint64 // float64 bits
	isCapturing atomic.Bool
	wg          sync.WaitGroup
	logger      *slog.Logger
}

// NewSerialCapturer creates a capturer for the named device. Blocks of
// exactly blockSize samples are handed to GetBuffer.
func NewSerialCapturer(device string, baud, blockSize int, logger *slog.Logger) (*SerialCapturer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &SerialCapturer{
		device:  device,
		baud:    baud,
		handoff: NewHandoff(),
		logger:  logger,
	}

	assembler, err := NewBlockAssembler(blockSize, func(block []int16) {
		c.handoff.Publish(&AudioBuffer{Samples: block, SampleRate: c.SampleRate()})
	})
	if err != nil {
		return nil, err
	}
	c.assembler = assembler
	return c, nil
}

// Start opens the port and begins reading frames in the background.
func (c *SerialCapturer) Start() error {
	if c.isCapturing.Load() {
		return ErrAlreadyCapturing
	}

	p, err := serial.Open(c.device, &serial.Mode{BaudRate: c.baud})
	if err != nil {
		return fmt.Errorf("serial: open %s: %w", c.device, err)
	}
	c.logger.Info("serial: port opened", "device", c.device, "baud", c.baud)

	c.startReading(p)
	return nil
}

func (c *SerialCapturer) startReading(r io.ReadCloser) {
	c.port = r
	c.assembler.Reset()
	c.isCapturing.Store(true)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.readLoop(r)
	}()
}

// Stop closes the port and waits for the reader to exit.
func (c *SerialCapturer) Stop() error {
	if !c.isCapturing.Swap(false) {
		return ErrNotCapturing
	}

	c.logger.Info("serial: closing port", "device", c.device)
	err := c.port.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("serial: close %s: %w", c.device, err)
	}
	return nil
}

func (c *SerialCapturer) readLoop(r io.Reader) {
	dec := NewFrameDecoder(r)
	for {
		f, err := dec.Next()
		switch {
		case err == nil:
		case errors.Is(err, ErrChecksum), errors.Is(err, ErrFrameLength):
			c.logger.Warn("serial: dropping frame", "err", err)
			continue
		default:
			// A failure while still capturing means the device went away.
			if c.isCapturing.Swap(false) {
				c.logger.Error("serial: read failed", "device", c.device, "err", err)
				_ = c.port.Close()
			}
			return
		}

		if rate := float64(f.SampleRate); rate != c.SampleRate() {
			c.logger.Debug("serial: sample rate changed", "sample_rate", rate)
			c.sampleRate.Store(math.Float64bits(rate))
		}
		c.assembler.Write(f.Samples())
	}
}

// GetBuffer returns the newest complete block
func (c *SerialCapturer) GetBuffer() (*AudioBuffer, error) {
	if !c.isCapturing.Load() {
		return nil, ErrNotCapturing
	}
	return c.handoff.buffer()
}

func (c *SerialCapturer) IsCapturing() bool { return c.isCapturing.Load() }

// SampleRate returns the rate reported by the last frame.
func (c *SerialCapturer) SampleRate() float64 {
	return math.Float64frombits(c.sampleRate.Load())
}
