// Package midiout mirrors the detected note to a MIDI output.
package midiout

import (
	"errors"
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"

	"github.com/0xlemi/fretnote/internal/pitch"
)

var ErrChannel = errors.New("midi channel must be 0..15")

const DefaultVelocity = 100

// SendFunc writes one message, typically the function returned by midi.SendTo.
type SendFunc func(msg midi.Message) error

// Publisher turns changes of the held note into NoteOn/NoteOff pairs.
type Publisher struct {
	send     SendFunc
	channel  uint8
	velocity uint8
	logger   *slog.Logger

	key      uint8
	sounding bool
}

type Option func(*Publisher)

func WithVelocity(v uint8) Option {
	return func(p *Publisher) { p.velocity = min(v, 127) }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPublisher creates a publisher writing to channel (0..15).
func NewPublisher(send SendFunc, channel int, opts ...Option) (*Publisher, error) {
	if channel < 0 || channel > 15 {
		return nil, fmt.Errorf("%w: got %d", ErrChannel, channel)
	}
	p := &Publisher{
		send:     send,
		channel:  uint8(channel),
		velocity: DefaultVelocity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Update publishes the current reading. A missing reading releases the
// sounding key; a new note releases the old key and strikes the new one.
func (p *Publisher) Update(r pitch.Reading, ok bool) error {
	var key uint8
	if ok {
		key, ok = r.Note.MIDIKey()
	}

	if p.sounding && ok && key == p.key {
		return nil
	}
	if err := p.release(); err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := p.send(midi.NoteOn(p.channel, key, p.velocity)); err != nil {
		return fmt.Errorf("midi: note on %d: %w", key, err)
	}
	p.key = key
	p.sounding = true
	p.logger.Debug("midi: note on", "ch", p.channel, "key", key, "note", r.Note)
	return nil
}

func (p *Publisher) release() error {
	if !p.sounding {
		return nil
	}
	p.sounding = false
	if err := p.send(midi.NoteOff(p.channel, p.key)); err != nil {
		return fmt.Errorf("midi: note off %d: %w", p.key, err)
	}
	p.logger.Debug("midi: note off", "ch", p.channel, "key", p.key)
	return nil
}

// Close releases any sounding key.
func (p *Publisher) Close() error {
	return p.release()
}
