package fretboard

import (
	"slices"

	"github.com/0xlemi/fretnote/internal/music"
)

// State holds the notes overlaid on the neck and the visible fret window.
//
// Active notes are the ones currently sounding. Ghost notes are targets the
// player should hit. Neither collection holds duplicates and both keep
// insertion order.
type State struct {
	tuning music.Tuning
	frets  music.FretRange
	active []music.Note
	ghost  []music.Note
}

// NewState creates an empty state for a tuning and fret window.
func NewState(tuning music.Tuning, frets music.FretRange) *State {
	return &State{
		tuning: slices.Clone(tuning),
		frets:  frets,
	}
}

func (s *State) Tuning() music.Tuning { return slices.Clone(s.tuning) }

func (s *State) Frets() music.FretRange { return s.frets }

func (s *State) SetFrets(r music.FretRange) { s.frets = r }

// SetActive marks a note as sounding. Ghost notes are left untouched.
func (s *State) SetActive(n music.Note) {
	if !slices.Contains(s.active, n) {
		s.active = append(s.active, n)
	}
}

func (s *State) SetActiveNotes(notes ...music.Note) {
	for _, n := range notes {
		s.SetActive(n)
	}
}

func (s *State) ClearActive() { s.active = s.active[:0] }

// Play marks a note as sounding and removes it from the ghost notes.
// It reports whether a ghost note was matched.
func (s *State) Play(n music.Note) bool {
	s.SetActive(n)
	return s.RemoveGhost(n)
}

// SetGhost adds a target note.
func (s *State) SetGhost(n music.Note) {
	if !slices.Contains(s.ghost, n) {
		s.ghost = append(s.ghost, n)
	}
}

// RemoveGhost removes a target note, reporting whether it was present.
func (s *State) RemoveGhost(n music.Note) bool {
	i := slices.Index(s.ghost, n)
	if i < 0 {
		return false
	}
	s.ghost = slices.Delete(s.ghost, i, i+1)
	return true
}

func (s *State) ClearGhosts() { s.ghost = s.ghost[:0] }

func (s *State) IsActive(n music.Note) bool { return slices.Contains(s.active, n) }

func (s *State) IsGhost(n music.Note) bool { return slices.Contains(s.ghost, n) }

// ActiveNotes returns a copy of the sounding notes.
func (s *State) ActiveNotes() []music.Note { return slices.Clone(s.active) }

// GhostNotes returns a copy of the target notes.
func (s *State) GhostNotes() []music.Note { return slices.Clone(s.ghost) }

// HighlightedStrings reports, per string, whether its open note is active.
func (s *State) HighlightedStrings() []bool {
	out := make([]bool, len(s.tuning))
	for i, open := range s.tuning {
		out[i] = s.IsActive(open)
	}
	return out
}

// positions maps notes to every position inside the visible window.
func (s *State) positions(notes []music.Note) []music.Position {
	var out []music.Position
	for _, n := range notes {
		out = append(out, s.tuning.Positions(n, s.frets)...)
	}
	return out
}
