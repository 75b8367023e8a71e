// Package app runs the polling loop that owns the tuner and the fretboard.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/0xlemi/fretnote/internal/audio"
	"github.com/0xlemi/fretnote/internal/fretboard"
	"github.com/0xlemi/fretnote/internal/pitch"
)

// Display range of the dBFS spectrum
const (
	SpectrumLow   = 80.0
	SpectrumHigh  = 5000.0
	SpectrumFloor = -60.0
)

const commandBuffer = 16

// Command mutates the fretboard on the loop goroutine.
type Command func(board *fretboard.Model)

// NotePublisher receives the held note after every step.
type NotePublisher interface {
	Update(r pitch.Reading, ok bool) error
}

// Frame is everything a renderer needs for one refresh. It shares no memory
// with the loop.
type Frame struct {
	Tuner    pitch.Snapshot
	Board    fretboard.View
	RMS      float64
	LevelDB  float64
	Spectrum []pitch.SpectrumPoint
	Fresh    bool // a new block was analysed this step
}

// Loop polls the capturer, feeds the tuner and ticks the fretboard. Tuner and
// board must not be touched by anything else while the loop runs.
type Loop struct {
	capturer audio.Capturer
	tuner    *pitch.Tuner
	board    *fretboard.Model
	notes    NotePublisher
	commands chan Command
	logger   *slog.Logger
}

// New creates a loop. notes may be nil.
func New(capturer audio.Capturer, tuner *pitch.Tuner, board *fretboard.Model, notes NotePublisher, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		capturer: capturer,
		tuner:    tuner,
		board:    board,
		notes:    notes,
		commands: make(chan Command, commandBuffer),
		logger:   logger,
	}
}

// Submit queues a command for the next step. It never blocks; commands
// beyond the queue capacity are dropped.
func (l *Loop) Submit(cmd Command) {
	select {
	case l.commands <- cmd:
	default:
		l.logger.Warn("app: command queue full, dropping input")
	}
}

// Step runs one cycle: pending commands, at most one audio block, the
// fretboard tick and the note publisher.
func (l *Loop) Step() (Frame, error) {
	for drained := false; !drained; {
		select {
		case cmd := <-l.commands:
			cmd(l.board)
		default:
			drained = true
		}
	}

	fresh := false
	buf, err := l.capturer.GetBuffer()
	switch {
	case err == nil:
		l.tuner.ProcessSamples(buf.Samples, buf.SampleRate)
		fresh = true
	case errors.Is(err, audio.ErrNoBuffer):
	default:
		return Frame{}, fmt.Errorf("app: read audio: %w", err)
	}

	l.board.Tick(l.tuner)

	if l.notes != nil {
		reading, ok := l.tuner.CurrentNote()
		if err := l.notes.Update(reading, ok); err != nil {
			l.logger.Warn("app: publishing note failed", "err", err)
		}
	}

	return l.frame(fresh), nil
}

func (l *Loop) frame(fresh bool) Frame {
	snap := l.tuner.Snapshot()
	rms, db := pitch.Level(snap.Samples)
	return Frame{
		Tuner:    snap,
		Board:    l.board.View(),
		RMS:      rms,
		LevelDB:  db,
		Spectrum: pitch.DBFSSpectrum(snap.Spectrum, snap.SampleRate, SpectrumLow, SpectrumHigh, SpectrumFloor),
		Fresh:    fresh,
	}
}

// Run steps the loop every interval and hands each frame to publish until
// ctx is cancelled.
func (l *Loop) Run(ctx context.Context, interval time.Duration, publish func(Frame)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info("app: loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("app: loop stopped")
			return nil
		case <-ticker.C:
			frame, err := l.Step()
			if err != nil {
				return err
			}
			publish(frame)
		}
	}
}
