package music

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Errors
var (
	ErrMissingLetter = errors.New("note letter is missing")
	ErrMissingOctave = errors.New("note octave is missing")
	ErrInvalidLetter = errors.New("invalid note letter")
	ErrInvalidOctave = errors.New("invalid note octave")
	ErrOutOfRange    = errors.New("frequency outside representable note range")
)

const (
	// ReferencePitch is the frequency of A4 in Hz
	ReferencePitch = 440.0

	// MaxOctave is the highest representable octave
	MaxOctave = 10

	// MaxSemitoneIndex is the index of B10
	MaxSemitoneIndex = MaxOctave*12 + 11

	// a4Index is the semitone index of A4 (9 + 4*12)
	a4Index = 57
)

// All note names in chromatic order
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is a pitch class and octave encoded as a semitone index, C0 = 0.
type Note int

// Notes of the fourth octave, handy for tables and tests.
const (
	C4 Note = 48 + iota
	CSharp4
	D4
	DSharp4
	E4
	F4
	FSharp4
	G4
	GSharp4
	A4
	ASharp4
	B4
)

// NewNote builds a note from a pitch class (0 = C .. 11 = B) and an octave.
func NewNote(pitchClass, octave int) Note {
	return Note(octave*12 + pitchClass)
}

// FromSemitoneIndex converts a semitone index into a note.
func FromSemitoneIndex(index int) Note {
	return Note(index)
}

// SemitoneIndex returns the canonical integer encoding of the note.
func (n Note) SemitoneIndex() int {
	return int(n)
}

// Valid reports whether the note lies within C0..B10.
func (n Note) Valid() bool {
	return n >= 0 && n <= MaxSemitoneIndex
}

// PitchClass returns the pitch class, 0 for C through 11 for B.
func (n Note) PitchClass() int {
	pc := int(n) % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// Octave returns the octave of the note (C4 is middle C).
func (n Note) Octave() int {
	return int(math.Floor(float64(n) / 12))
}

// Name returns the pitch class name, e.g. "C#".
func (n Note) Name() string {
	return noteNames[n.PitchClass()]
}

// String formats the note as name followed by octave, e.g. "C#4".
func (n Note) String() string {
	return n.Name() + strconv.Itoa(n.Octave())
}

// Add transposes the note by the given number of semitones.
func (n Note) Add(semitones int) Note {
	return FromSemitoneIndex(n.SemitoneIndex() + semitones)
}

// Frequency returns the equal-tempered frequency relative to A4 = 440 Hz.
func (n Note) Frequency() float64 {
	return n.FrequencyWithReference(ReferencePitch)
}

// FrequencyWithReference returns the equal-tempered frequency for a custom A4.
func (n Note) FrequencyWithReference(a4 float64) float64 {
	return a4 * math.Pow(2, float64(n.SemitoneIndex()-a4Index)/12)
}

// MIDIKey returns the MIDI key number of the note (C4 = 60).
func (n Note) MIDIKey() (uint8, bool) {
	key := n.SemitoneIndex() + 12
	if key < 0 || key > 127 {
		return 0, false
	}
	return uint8(key), true
}

// FromFrequency returns the nearest note to a frequency for the default reference.
func FromFrequency(frequency float64) (Note, error) {
	return FromFrequencyWithReference(frequency, ReferencePitch)
}

// FromFrequencyWithReference returns the nearest note to a frequency for a custom A4.
func FromFrequencyWithReference(frequency, a4 float64) (Note, error) {
	if frequency <= 0 || a4 <= 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return 0, fmt.Errorf("%w: %.2f Hz", ErrOutOfRange, frequency)
	}

	// A4 = 440Hz, calculate semitones from A4
	semitones := math.Round(12 * math.Log2(frequency/a4))
	n := Note(a4Index + int(semitones))
	if !n.Valid() {
		return 0, fmt.Errorf("%w: %.2f Hz", ErrOutOfRange, frequency)
	}
	return n, nil
}

// Cents returns the deviation of a frequency from the note's perfect pitch.
// Positive values are sharp, negative values flat.
func (n Note) Cents(frequency, a4 float64) float64 {
	return 1200 * math.Log2(frequency/n.FrequencyWithReference(a4))
}

// ParseNote parses a display string such as "C#4".
//
// The letter is required and may be followed by '#' and an octave. When the
// octave is absent the octave-0 note is returned together with
// ErrMissingOctave, leaving it to the caller to accept the default or fail.
func ParseNote(s string) (Note, error) {
	if s == "" {
		return 0, ErrMissingLetter
	}

	pc, ok := letterPitchClass(s[0])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLetter, s[:1])
	}

	rest := s[1:]
	if len(rest) > 0 && rest[0] == '#' {
		if s[0] == 'E' || s[0] == 'B' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLetter, s[:2])
		}
		pc++
		rest = rest[1:]
	}

	if rest == "" {
		return NewNote(pc, 0), ErrMissingOctave
	}

	octave, err := strconv.Atoi(rest)
	if err != nil || octave < 0 || octave > MaxOctave || rest[0] == '+' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOctave, rest)
	}

	return NewNote(pc, octave), nil
}

// MustParseNote is like ParseNote but panics on any error.
// It is meant for static tables.
func MustParseNote(s string) Note {
	n, err := ParseNote(s)
	if err != nil {
		panic(fmt.Sprintf("music: parse %q: %v", s, err))
	}
	return n
}

func letterPitchClass(c byte) (int, bool) {
	switch c {
	case 'C':
		return 0, true
	case 'D':
		return 2, true
	case 'E':
		return 4, true
	case 'F':
		return 5, true
	case 'G':
		return 7, true
	case 'A':
		return 9, true
	case 'B':
		return 11, true
	}
	return 0, false
}
