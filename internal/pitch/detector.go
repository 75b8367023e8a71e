package pitch

import (
	"errors"
	"log/slog"

	"github.com/0xlemi/fretnote/internal/music"
)

// Errors
var (
	ErrFFTSize = errors.New("fft size must be even and at least 8")
)

const (
	DefaultHistoryLength = 2
	DefaultMinFrequency  = 80.0   // E2 on guitar is ~82 Hz
	DefaultMaxFrequency  = 1320.0 // E6 on guitar is ~1319 Hz
	DefaultNoiseFloor    = 50.0   // RMS in int16 units, about -56 dBFS
)

// Policy decides when the history is stable enough to report a note.
type Policy int

const (
	// PolicyUnanimous requires every reading in the history to share a
	// pitch class.
	PolicyUnanimous Policy = iota

	// PolicyNewestWins reports the most frequent pitch class, breaking
	// ties in favour of the newest reading. With two slots this means
	// "agree, or else trust the newest".
	PolicyNewestWins
)

func (p Policy) String() string {
	switch p {
	case PolicyUnanimous:
		return "unanimous"
	case PolicyNewestWins:
		return "newest"
	default:
		return "unknown"
	}
}

// Reading is a stable detected note.
type Reading struct {
	Note      music.Note
	Frequency float64 // measured frequency in Hz
	Cents     float64 // deviation from perfect pitch, positive is sharp
}

// Tuner runs the transform over incoming blocks, keeps a short history of
// fundamentals and reports the currently held note.
//
// A Tuner is owned by a single goroutine. Use Snapshot to hand data to
// renderers running elsewhere.
type Tuner struct {
	transform  Transformer
	history    *NoteHistory
	policy     Policy
	minFreq    float64
	maxFreq    float64
	reference  float64
	noiseFloor float64
	logger     *slog.Logger

	samples    []int16
	sampleRate float64
	lastFreq   float64
}

// Option configures a Tuner.
type Option func(*Tuner)

// WithHistoryLength sets how many readings must be considered.
func WithHistoryLength(n int) Option {
	return func(t *Tuner) { t.history = NewNoteHistory(n) }
}

// WithPolicy sets the stability policy.
func WithPolicy(p Policy) Option {
	return func(t *Tuner) { t.policy = p }
}

// WithFrequencyRange sets the accepted fundamental range in Hz.
func WithFrequencyRange(lo, hi float64) Option {
	return func(t *Tuner) {
		t.minFreq = lo
		t.maxFreq = hi
	}
}

// WithReference sets the frequency of A4.
func WithReference(a4 float64) Option {
	return func(t *Tuner) { t.reference = a4 }
}

// WithNoiseFloor sets the RMS level below which blocks are treated as silence.
func WithNoiseFloor(rms float64) Option {
	return func(t *Tuner) { t.noiseFloor = rms }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tuner) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTuner creates a tuner that owns the given transform.
func NewTuner(transform Transformer, opts ...Option) *Tuner {
	t := &Tuner{
		transform:  transform,
		history:    NewNoteHistory(DefaultHistoryLength),
		policy:     PolicyUnanimous,
		minFreq:    DefaultMinFrequency,
		maxFreq:    DefaultMaxFrequency,
		reference:  music.ReferencePitch,
		noiseFloor: DefaultNoiseFloor,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ProcessSamples analyses one block. Readings outside the accepted range,
// silent blocks and unnameable frequencies are dropped and the previous
// state is kept.
func (t *Tuner) ProcessSamples(samples []int16, sampleRate float64) {
	t.samples = append(t.samples[:0], samples...)
	t.sampleRate = sampleRate

	t.transform.Process(samples)
	freq := t.transform.FindFundamentalFrequency(sampleRate)
	t.lastFreq = freq

	if rms, _ := Level(samples); rms < t.noiseFloor {
		t.logger.Debug("pitch: block below noise floor", "rms", rms, "floor", t.noiseFloor)
		return
	}

	if freq < t.minFreq || freq > t.maxFreq {
		t.logger.Debug("pitch: fundamental out of range",
			"frequency", freq, "min", t.minFreq, "max", t.maxFreq)
		return
	}

	note, err := music.FromFrequencyWithReference(freq, t.reference)
	if err != nil {
		t.logger.Debug("pitch: unnameable frequency", "frequency", freq, "err", err)
		return
	}

	t.history.Push(HistoryEntry{Name: note.Name(), Frequency: freq})
}

// CurrentNote returns the held note and its cents deviation, or false when
// the history is empty or not stable.
func (t *Tuner) CurrentNote() (Reading, bool) {
	entry, ok := t.stableEntry()
	if !ok {
		return Reading{}, false
	}

	note, err := music.FromFrequencyWithReference(entry.Frequency, t.reference)
	if err != nil {
		return Reading{}, false
	}

	return Reading{
		Note:      note,
		Frequency: entry.Frequency,
		Cents:     note.Cents(entry.Frequency, t.reference),
	}, true
}

func (t *Tuner) stableEntry() (HistoryEntry, bool) {
	entries := t.history.entries
	if len(entries) == 0 {
		return HistoryEntry{}, false
	}

	switch t.policy {
	case PolicyNewestWins:
		counts := make(map[string]int, len(entries))
		best := 0
		for _, e := range entries {
			counts[e.Name]++
			best = max(best, counts[e.Name])
		}
		for i := len(entries) - 1; i >= 0; i-- {
			if counts[entries[i].Name] == best {
				return entries[i], true
			}
		}
		return HistoryEntry{}, false

	default:
		first := entries[0].Name
		for _, e := range entries[1:] {
			if e.Name != first {
				return HistoryEntry{}, false
			}
		}
		return entries[len(entries)-1], true
	}
}

// Samples returns a copy of the last processed block.
func (t *Tuner) Samples() []int16 {
	return append([]int16(nil), t.samples...)
}

func (t *Tuner) SampleRate() float64 { return t.sampleRate }

// LastFrequency is the raw estimate of the last block, accepted or not.
func (t *Tuner) LastFrequency() float64 { return t.lastFreq }

func (t *Tuner) FFTData() []float64 { return t.transform.FFTData() }

func (t *Tuner) NormalizedFFTData() []float64 { return t.transform.NormalizedFFTData() }

// History returns the accepted readings, oldest first.
func (t *Tuner) History() []HistoryEntry { return t.history.Entries() }

// Reset forgets every reading.
func (t *Tuner) Reset() { t.history.Reset() }

// Snapshot is an immutable copy of everything a renderer needs.
type Snapshot struct {
	Samples       []int16
	SampleRate    float64
	Spectrum      []float64
	Normalized    []float64
	LastFrequency float64
	Reading       Reading
	HasReading    bool
	History       []HistoryEntry
}

// Snapshot copies the tuner state for read-only use on another goroutine.
func (t *Tuner) Snapshot() Snapshot {
	reading, ok := t.CurrentNote()
	return Snapshot{
		Samples:       t.Samples(),
		SampleRate:    t.sampleRate,
		Spectrum:      t.FFTData(),
		Normalized:    t.NormalizedFFTData(),
		LastFrequency: t.lastFreq,
		Reading:       reading,
		HasReading:    ok,
		History:       t.History(),
	}
}
