package fretboard

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/0xlemi/fretnote/internal/music"
	"github.com/0xlemi/fretnote/internal/pitch"
)

// Errors
var (
	ErrWindowSize = errors.New("fret window size out of range")
	ErrControlMax = errors.New("control maximum must be positive")
	ErrNoTuning   = errors.New("tuning has no strings")
)

const (
	DefaultWindowSize    = 12
	DefaultControlMax    = 4095 // 12-bit ADC
	DefaultRandomTimeout = 5 * time.Second
)

// Mode is a practice mode.
type Mode int

const (
	ModeLive Mode = iota
	ModeScale
	ModeRandom
	ModeSong
)

var modeNames = map[Mode]string{
	ModeLive:   "Live",
	ModeScale:  "Scale",
	ModeRandom: "Random",
	ModeSong:   "Song",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "Unknown"
}

// Next cycles Live, Scale, Random, Song and back to Live.
func (m Mode) Next() Mode {
	return (m + 1) % 4
}

// Event is a button press.
type Event int

const (
	ModeShortPress Event = iota
	ModeLongPress
	MenuShortPress
	MenuLongPress
	BothPressed
)

func (e Event) String() string {
	switch e {
	case ModeShortPress:
		return "mode"
	case ModeLongPress:
		return "mode-long"
	case MenuShortPress:
		return "menu"
	case MenuLongPress:
		return "menu-long"
	case BothPressed:
		return "both"
	default:
		return "unknown"
	}
}

// NoteSource reports the currently held note. pitch.Tuner implements it.
type NoteSource interface {
	CurrentNote() (pitch.Reading, bool)
}

// Model drives the fretboard state for the selected practice mode.
// It is owned by a single goroutine; use View to hand data to renderers.
type Model struct {
	state      *State
	mode       Mode
	windowSize int
	controlMax int
	control    int

	scale music.Scale
	root  music.Note

	songs     []Song
	songIndex int
	cursor    int
	beatShown bool

	score     int
	target    music.Position
	hasTarget bool
	spawnedAt time.Time
	timeout   time.Duration

	now    func() time.Time
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

func WithTuning(t music.Tuning) Option {
	return func(m *Model) { m.state.tuning = slices.Clone(t) }
}

// WithWindowSize sets how many frets past the start fret are visible.
func WithWindowSize(n int) Option {
	return func(m *Model) { m.windowSize = n }
}

// WithControlMax sets the largest value the scroll control reports.
func WithControlMax(n int) Option {
	return func(m *Model) { m.controlMax = n }
}

func WithRandomTimeout(d time.Duration) Option {
	return func(m *Model) { m.timeout = d }
}

func WithSongs(songs []Song) Option {
	return func(m *Model) { m.songs = slices.Clone(songs) }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

func WithRand(r *rand.Rand) Option {
	return func(m *Model) { m.rng = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewModel creates a model in Live mode showing the first frets.
func NewModel(opts ...Option) (*Model, error) {
	m := &Model{
		state:      NewState(music.StandardTuning, music.FretRange{}),
		windowSize: DefaultWindowSize,
		controlMax: DefaultControlMax,
		scale:      music.MajorPentatonic,
		root:       music.C4,
		songs:      DefaultSongs,
		timeout:    DefaultRandomTimeout,
		now:        time.Now,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if len(m.state.tuning) == 0 {
		return nil, ErrNoTuning
	}
	if m.windowSize < 1 || m.windowSize > music.MaxFret {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrWindowSize, m.windowSize, music.MaxFret)
	}
	if m.controlMax < 1 {
		return nil, fmt.Errorf("%w: %d", ErrControlMax, m.controlMax)
	}

	m.state.SetFrets(music.FretRange{Start: 0, End: m.windowSize})
	return m, nil
}

func (m *Model) Mode() Mode { return m.mode }

func (m *Model) State() *State { return m.state }

func (m *Model) Score() int { return m.score }

// SetMode switches modes. Ghost notes and per-mode counters are reset.
func (m *Model) SetMode(mode Mode) {
	prev := m.mode
	m.mode = mode
	m.resetMode()
	m.logger.Debug("fretboard: mode changed", "from", prev, "to", mode)
}

func (m *Model) resetMode() {
	m.state.ClearGhosts()
	m.cursor = 0
	m.beatShown = false
	m.score = 0
	m.hasTarget = false
	if m.mode == ModeScale {
		m.showScale()
	}
}

// HandleEvent applies a button press.
func (m *Model) HandleEvent(e Event) {
	switch e {
	case ModeShortPress:
		m.SetMode(m.mode.Next())

	case ModeLongPress:
		m.SetMode(ModeLive)

	case MenuShortPress:
		switch m.mode {
		case ModeScale:
			m.root = music.NewNote((m.root.PitchClass()+1)%12, m.root.Octave())
			m.showScale()
		case ModeSong:
			if len(m.songs) > 0 {
				m.songIndex = (m.songIndex + 1) % len(m.songs)
			}
			m.resetMode()
		case ModeRandom:
			m.state.ClearGhosts()
			m.hasTarget = false
		}

	case MenuLongPress:
		switch m.mode {
		case ModeScale:
			m.scale = m.scale.Next()
			m.showScale()
		case ModeSong:
			m.resetMode()
		case ModeRandom:
			m.score = 0
		}

	case BothPressed:
		if m.mode == ModeScale {
			m.scale = music.MajorPentatonic
			m.root = music.C4
		}
		m.resetMode()
	}

	m.logger.Debug("fretboard: event", "event", e, "mode", m.mode)
}

// SetControl maps a control reading in [0, controlMax] to the start fret.
// Larger values move the window up the neck.
func (m *Model) SetControl(v int) {
	v = max(0, min(v, m.controlMax))
	m.control = v

	span := music.MaxFret - m.windowSize
	start := int(math.Round(float64(v) * float64(span) / float64(m.controlMax)))
	frets := music.FretRange{Start: start, End: start + m.windowSize}
	if frets == m.state.Frets() {
		return
	}

	m.state.SetFrets(frets)
	if m.mode == ModeScale {
		m.showScale()
	}
}

// Control returns the last control value.
func (m *Model) Control() int { return m.control }

// ControlForStart returns the control value that places the window at fret start.
func (m *Model) ControlForStart(start int) int {
	span := music.MaxFret - m.windowSize
	if span == 0 {
		return 0
	}
	start = max(0, min(start, span))
	return int(math.Round(float64(start) * float64(m.controlMax) / float64(span)))
}

// Positions returns every position of note inside the visible window.
func (m *Model) Positions(note music.Note) []music.Position {
	return m.state.tuning.Positions(note, m.state.frets)
}

// showScale replaces the ghost notes with the scale notes visible in the window.
func (m *Model) showScale() {
	m.state.ClearGhosts()
	for _, p := range m.scale.FretboardNotes(m.root, m.state.tuning, m.state.frets) {
		m.state.SetGhost(m.state.tuning.NoteAt(p))
	}
}

// Tick runs the mode maintenance and then mirrors the note held by src.
func (m *Model) Tick(src NoteSource) {
	switch m.mode {
	case ModeRandom:
		m.tickRandom(m.now())
	case ModeSong:
		m.tickSong()
	}

	m.state.ClearActive()
	if src == nil {
		return
	}
	reading, ok := src.CurrentNote()
	if !ok {
		return
	}

	switch m.mode {
	case ModeRandom:
		if m.state.Play(reading.Note) {
			m.score++
			m.hasTarget = false
			m.logger.Info("fretboard: target hit", "note", reading.Note, "score", m.score)
		}
	case ModeSong:
		if m.state.Play(reading.Note) {
			m.logger.Debug("fretboard: beat note hit", "note", reading.Note, "cursor", m.cursor)
		}
	default:
		m.state.SetActive(reading.Note)
	}
}

func (m *Model) tickRandom(now time.Time) {
	pending := len(m.state.ghost) > 0
	if pending && now.Sub(m.spawnedAt) >= m.timeout {
		m.score = max(0, m.score-1)
		m.state.ClearGhosts()
		m.hasTarget = false
		m.logger.Info("fretboard: target missed", "score", m.score)
		return
	}
	if pending {
		return
	}

	frets := m.state.frets
	p := music.Position{
		String: m.rng.IntN(len(m.state.tuning)),
		Fret:   frets.Start + m.rng.IntN(frets.Len()),
	}
	m.state.SetGhost(m.state.tuning.NoteAt(p))
	m.target = p
	m.hasTarget = true
	m.spawnedAt = now
}

func (m *Model) tickSong() {
	if len(m.songs) == 0 || len(m.state.ghost) > 0 {
		return
	}
	song := m.songs[m.songIndex]
	if len(song.Beats) == 0 {
		return
	}

	if m.beatShown {
		m.cursor = (m.cursor + 1) % len(song.Beats)
	}
	for _, n := range song.Beats[m.cursor] {
		m.state.SetGhost(n)
	}
	m.beatShown = true
}

// View is an immutable copy of the model for renderers.
type View struct {
	Mode               Mode
	Tuning             music.Tuning
	Frets              music.FretRange
	Active             []music.Note
	Ghost              []music.Note
	ActivePositions    []music.Position
	GhostPositions     []music.Position
	HighlightedStrings []bool

	Scale music.Scale
	Root  music.Note

	Song      string
	SongIndex int
	Cursor    int
	Beats     int

	Score     int
	Target    music.Position
	HasTarget bool
	Remaining time.Duration
}

// View snapshots the model.
func (m *Model) View() View {
	v := View{
		Mode:               m.mode,
		Tuning:             m.state.Tuning(),
		Frets:              m.state.frets,
		Active:             m.state.ActiveNotes(),
		Ghost:              m.state.GhostNotes(),
		ActivePositions:    m.state.positions(m.state.active),
		GhostPositions:     m.state.positions(m.state.ghost),
		HighlightedStrings: m.state.HighlightedStrings(),
		Scale:              m.scale,
		Root:               m.root,
		Cursor:             m.cursor,
		Score:              m.score,
		Target:             m.target,
		HasTarget:          m.hasTarget,
	}
	if len(m.songs) > 0 {
		song := m.songs[m.songIndex]
		v.Song = song.Name
		v.SongIndex = m.songIndex
		v.Beats = len(song.Beats)
	}
	if m.mode == ModeRandom && m.hasTarget {
		v.Remaining = max(0, m.timeout-m.now().Sub(m.spawnedAt))
	}
	return v
}
