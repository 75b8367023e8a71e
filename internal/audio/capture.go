package audio

import (
	"errors"
	"sync/atomic"
)

// Errors
var (
	ErrAlreadyCapturing = errors.New("audio capture already started")
	ErrNotCapturing     = errors.New("audio capture not started")
	ErrNoBuffer         = errors.New("no audio buffer available")
	ErrBlockSize        = errors.New("block size must be positive")
)

// AudioBuffer represents one block of mono audio samples
type AudioBuffer struct {
	Samples    []int16
	SampleRate float64
}

// Capturer defines the interface for audio capture
type Capturer interface {
	// Start begins audio capture
	Start() error

	// Stop ends audio capture
	Stop() error

	// GetBuffer returns the newest complete block without blocking.
	// It returns ErrNoBuffer when nothing new arrived since the last call.
	GetBuffer() (*AudioBuffer, error)

	// IsCapturing returns true if currently capturing audio
	IsCapturing() bool
}

// Handoff passes blocks from a producer to a consumer. It holds at most one
// block: publishing while full replaces the stale block.
type Handoff struct {
	ch      chan *AudioBuffer
	dropped atomic.Uint64
}

func NewHandoff() *Handoff {
	return &Handoff{ch: make(chan *AudioBuffer, 1)}
}

// Publish hands a block over without blocking the producer.
func (h *Handoff) Publish(b *AudioBuffer) {
	for {
		select {
		case h.ch <- b:
			return
		default:
		}

		select {
		case <-h.ch:
			h.dropped.Add(1)
		default:
		}
	}
}

// TryReceive returns the pending block, if any.
func (h *Handoff) TryReceive() (*AudioBuffer, bool) {
	select {
	case b := <-h.ch:
		return b, true
	default:
		return nil, false
	}
}

// C exposes the channel for consumers that want to select on it.
func (h *Handoff) C() <-chan *AudioBuffer { return h.ch }

// Dropped counts blocks replaced before they were received.
func (h *Handoff) Dropped() uint64 { return h.dropped.Load() }

func (h *Handoff) buffer() (*AudioBuffer, error) {
	if b, ok := h.TryReceive(); ok {
		return b, nil
	}
	return nil, ErrNoBuffer
}

// BlockAssembler turns a stream of arbitrarily sized chunks into blocks of
// exactly size samples.
type BlockAssembler struct {
	size int
	buf  []int16
	emit func(block []int16)
}

// NewBlockAssembler creates an assembler calling emit with every complete
// block. The block passed to emit is owned by the callee.
func NewBlockAssembler(size int, emit func(block []int16)) (*BlockAssembler, error) {
	if size <= 0 {
		return nil, ErrBlockSize
	}
	return &BlockAssembler{
		size: size,
		buf:  make([]int16, 0, size),
		emit: emit,
	}, nil
}

// Write appends samples, emitting as many complete blocks as they fill.
func (a *BlockAssembler) Write(samples []int16) {
	for len(samples) > 0 {
		n := min(a.size-len(a.buf), len(samples))
		a.buf = append(a.buf, samples[:n]...)
		samples = samples[n:]

		if len(a.buf) == a.size {
			block := make([]int16, a.size)
			copy(block, a.buf)
			a.buf = a.buf[:0]
			a.emit(block)
		}
	}
}

// Pending returns how many samples wait for the next block.
func (a *BlockAssembler) Pending() int { return len(a.buf) }

func (a *BlockAssembler) Size() int { return a.size }

// Reset drops any partial block.
func (a *BlockAssembler) Reset() { a.buf = a.buf[:0] }

// clampInt16 saturates v to the int16 range.
func clampInt16(v float64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
