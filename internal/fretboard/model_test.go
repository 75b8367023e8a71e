package fretboard

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/0xlemi/fretnote/internal/music"
	"github.com/0xlemi/fretnote/internal/pitch"
)

type fakeSource struct {
	note music.Note
	ok   bool
}

func (f *fakeSource) CurrentNote() (pitch.Reading, bool) {
	return pitch.Reading{Note: f.note, Frequency: f.note.Frequency()}, f.ok
}

func (f *fakeSource) hold(n music.Note) { f.note, f.ok = n, true }
func (f *fakeSource) release()          { f.ok = false }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestModel(t *testing.T, opts ...Option) (*Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	base := []Option{
		WithClock(clock.now),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithControlMax(100),
	}
	m, err := NewModel(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m, clock
}

func TestNewModelValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"zero window", WithWindowSize(0), ErrWindowSize},
		{"window past the neck", WithWindowSize(25), ErrWindowSize},
		{"zero control max", WithControlMax(0), ErrControlMax},
		{"no strings", WithTuning(nil), ErrNoTuning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewModel(tt.opt); !errors.Is(err, tt.want) {
				t.Fatalf("err=%v, want %v", err, tt.want)
			}
		})
	}

	m, err := NewModel()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if got := m.View().Frets; got != (music.FretRange{Start: 0, End: 12}) {
		t.Fatalf("default window=%v", got)
	}
}

func TestModeCycling(t *testing.T) {
	m, _ := newTestModel(t)
	want := []Mode{ModeScale, ModeRandom, ModeSong, ModeLive}
	for _, w := range want {
		m.HandleEvent(ModeShortPress)
		if m.Mode() != w {
			t.Fatalf("mode=%s, want %s", m.Mode(), w)
		}
	}

	m.HandleEvent(ModeShortPress)
	m.HandleEvent(ModeShortPress)
	m.HandleEvent(ModeLongPress)
	if m.Mode() != ModeLive {
		t.Fatalf("long press: mode=%s, want Live", m.Mode())
	}
	if len(m.View().Ghost) != 0 {
		t.Fatal("Live mode should have no ghost notes")
	}
}

func TestSetControl(t *testing.T) {
	m, _ := newTestModel(t)
	tests := []struct {
		control int
		want    music.FretRange
	}{
		{0, music.FretRange{Start: 0, End: 12}},
		{50, music.FretRange{Start: 6, End: 18}},
		{100, music.FretRange{Start: 12, End: 24}},
		{-7, music.FretRange{Start: 0, End: 12}},
		{1000, music.FretRange{Start: 12, End: 24}},
		{25, music.FretRange{Start: 3, End: 15}},
	}
	for _, tt := range tests {
		m.SetControl(tt.control)
		if got := m.View().Frets; got != tt.want {
			t.Fatalf("control %d: frets=%v, want %v", tt.control, got, tt.want)
		}
	}

	if got := m.ControlForStart(6); got != 50 {
		t.Fatalf("ControlForStart(6)=%d, want 50", got)
	}
}

func TestLiveModeMirrorsSource(t *testing.T) {
	m, _ := newTestModel(t)
	src := &fakeSource{}

	src.hold(note("A2"))
	m.Tick(src)
	v := m.View()
	if !slices.Equal(v.Active, []music.Note{note("A2")}) {
		t.Fatalf("active=%v", v.Active)
	}
	if !v.HighlightedStrings[1] {
		t.Fatal("open A string should be highlighted")
	}

	src.release()
	m.Tick(src)
	if len(m.View().Active) != 0 {
		t.Fatal("active notes should clear when nothing is held")
	}
}

func TestScaleMode(t *testing.T) {
	m, _ := newTestModel(t)
	m.HandleEvent(ModeShortPress)

	check := func(root music.Note, scale music.Scale) {
		t.Helper()
		v := m.View()
		if v.Root != root || v.Scale != scale {
			t.Fatalf("root=%s scale=%s, want %s %s", v.Root, v.Scale, root, scale)
		}
		if len(v.Ghost) == 0 {
			t.Fatal("no ghost notes in Scale mode")
		}
		for _, n := range v.Ghost {
			if !scale.Contains(root, n) {
				t.Fatalf("%s is not in %s %s", n, root.Name(), scale)
			}
		}
		for _, p := range scale.FretboardNotes(root, v.Tuning, v.Frets) {
			if !slices.Contains(v.Ghost, v.Tuning.NoteAt(p)) {
				t.Fatalf("position %+v missing from ghosts", p)
			}
		}
	}

	check(music.C4, music.MajorPentatonic)

	m.HandleEvent(MenuShortPress)
	check(music.D4, music.MajorPentatonic)

	m.HandleEvent(MenuLongPress)
	check(music.D4, music.MinorPentatonic)

	m.SetControl(100)
	check(music.D4, music.MinorPentatonic)

	// Playing a scale note keeps it as a reference.
	ghost := m.View().Ghost[0]
	src := &fakeSource{}
	src.hold(ghost)
	m.Tick(src)
	v := m.View()
	if !slices.Contains(v.Ghost, ghost) || !slices.Contains(v.Active, ghost) {
		t.Fatalf("scale ghost %s should stay while played", ghost)
	}

	m.HandleEvent(BothPressed)
	check(music.C4, music.MajorPentatonic)
}

func TestScaleRootWraps(t *testing.T) {
	m, _ := newTestModel(t)
	m.SetMode(ModeScale)
	for range 12 {
		m.HandleEvent(MenuShortPress)
	}
	if got := m.View().Root; got != music.C4 {
		t.Fatalf("root=%s after twelve steps, want C4", got)
	}
}

func TestRandomMode(t *testing.T) {
	m, clock := newTestModel(t)
	m.SetControl(50)
	m.SetMode(ModeRandom)
	src := &fakeSource{}

	m.Tick(src)
	v := m.View()
	if !v.HasTarget || len(v.Ghost) != 1 {
		t.Fatalf("expected one pending target, got %+v", v.Ghost)
	}
	if !v.Frets.Contains(v.Target.Fret) || v.Target.String < 0 || v.Target.String >= len(v.Tuning) {
		t.Fatalf("target %+v outside window %v", v.Target, v.Frets)
	}
	if v.Ghost[0] != v.Tuning.NoteAt(v.Target) {
		t.Fatalf("ghost %s does not sound at target %+v", v.Ghost[0], v.Target)
	}
	if v.Remaining != DefaultRandomTimeout {
		t.Fatalf("remaining=%v", v.Remaining)
	}

	// A pending target is not replaced.
	clock.advance(time.Second)
	m.Tick(src)
	if got := m.View().Ghost; !slices.Equal(got, v.Ghost) {
		t.Fatalf("target changed to %v", got)
	}

	src.hold(v.Ghost[0])
	m.Tick(src)
	if m.Score() != 1 || len(m.View().Ghost) != 0 {
		t.Fatalf("score=%d ghost=%v after a hit", m.Score(), m.View().Ghost)
	}

	src.release()
	m.Tick(src)
	if len(m.View().Ghost) != 1 {
		t.Fatal("no new target after a hit")
	}

	clock.advance(DefaultRandomTimeout)
	m.Tick(src)
	if m.Score() != 0 || len(m.View().Ghost) != 0 {
		t.Fatalf("timeout: score=%d ghost=%v", m.Score(), m.View().Ghost)
	}

	m.Tick(src)
	clock.advance(DefaultRandomTimeout + time.Millisecond)
	m.Tick(src)
	if m.Score() != 0 {
		t.Fatalf("score=%d, must not go below zero", m.Score())
	}
}

func TestRandomModeMenu(t *testing.T) {
	m, _ := newTestModel(t)
	m.SetMode(ModeRandom)
	src := &fakeSource{}

	m.Tick(src)
	src.hold(m.View().Ghost[0])
	m.Tick(src)
	src.release()
	m.Tick(src)

	m.HandleEvent(MenuShortPress)
	if len(m.View().Ghost) != 0 || m.Score() != 1 {
		t.Fatalf("skip: ghost=%v score=%d", m.View().Ghost, m.Score())
	}

	m.HandleEvent(MenuLongPress)
	if m.Score() != 0 {
		t.Fatalf("reset: score=%d", m.Score())
	}
}

func TestSongMode(t *testing.T) {
	songs := []Song{
		{Name: "first", Beats: beats("A2 E3", "C4")},
		{Name: "second", Beats: beats("G3")},
	}
	m, _ := newTestModel(t, WithSongs(songs))
	m.SetMode(ModeSong)
	src := &fakeSource{}

	m.Tick(src)
	if got := m.View().Ghost; !slices.Equal(got, []music.Note{note("A2"), note("E3")}) {
		t.Fatalf("beat 0 ghost=%v", got)
	}

	src.hold(note("A2"))
	m.Tick(src)
	v := m.View()
	if !slices.Equal(v.Ghost, []music.Note{note("E3")}) || !slices.Equal(v.Active, []music.Note{note("A2")}) {
		t.Fatalf("after A2: ghost=%v active=%v", v.Ghost, v.Active)
	}

	src.hold(note("E3"))
	m.Tick(src)
	if len(m.View().Ghost) != 0 {
		t.Fatal("beat should be cleared")
	}

	src.release()
	m.Tick(src)
	v = m.View()
	if v.Cursor != 1 || !slices.Equal(v.Ghost, []music.Note{note("C4")}) {
		t.Fatalf("cursor=%d ghost=%v, want beat 1", v.Cursor, v.Ghost)
	}

	src.hold(note("C4"))
	m.Tick(src)
	src.release()
	m.Tick(src)
	if v := m.View(); v.Cursor != 0 || len(v.Ghost) != 2 {
		t.Fatalf("song should wrap: cursor=%d ghost=%v", v.Cursor, v.Ghost)
	}

	m.HandleEvent(MenuShortPress)
	v = m.View()
	if v.Song != "second" || v.Cursor != 0 || len(v.Ghost) != 0 {
		t.Fatalf("next song: %+v", v)
	}
	m.Tick(src)
	if got := m.View().Ghost; !slices.Equal(got, []music.Note{note("G3")}) {
		t.Fatalf("second song ghost=%v", got)
	}

	m.HandleEvent(MenuShortPress)
	if m.View().Song != "first" {
		t.Fatal("song selection should wrap")
	}
}

func TestModeSwitchResetsState(t *testing.T) {
	m, _ := newTestModel(t)
	m.SetMode(ModeRandom)
	src := &fakeSource{}
	m.Tick(src)
	src.hold(m.View().Ghost[0])
	m.Tick(src)
	if m.Score() != 1 {
		t.Fatalf("score=%d", m.Score())
	}

	m.HandleEvent(ModeShortPress)
	v := m.View()
	if v.Mode != ModeSong || v.Score != 0 || len(v.Ghost) != 0 || v.Cursor != 0 {
		t.Fatalf("stale state after switch: %+v", v)
	}
}

func TestModelPositions(t *testing.T) {
	m, _ := newTestModel(t)

	// E4 in frets 0..12: G string fret 9, B string fret 5, high E open.
	got := m.Positions(note("E4"))
	want := []music.Position{{String: 3, Fret: 9}, {String: 4, Fret: 5}, {String: 5, Fret: 0}}
	if !slices.Equal(got, want) {
		t.Fatalf("positions=%v, want %v", got, want)
	}
}
