package music

import "fmt"

// MaxFret is the absolute upper bound of the fretboard.
const MaxFret = 24

// Tuning lists the open-string notes from the lowest string to the highest.
type Tuning []Note

// StandardTuning is E2 A2 D3 G3 B3 E4.
var StandardTuning = Tuning{
	NewNote(4, 2),
	NewNote(9, 2),
	NewNote(2, 3),
	NewNote(7, 3),
	NewNote(11, 3),
	NewNote(4, 4),
}

// Position is a location on the fretboard. String 0 is the lowest string.
type Position struct {
	String int
	Fret   int
}

// FretRange is an inclusive range of fret numbers.
type FretRange struct {
	Start int
	End   int
}

// Contains reports whether fret lies in the range.
func (r FretRange) Contains(fret int) bool {
	return fret >= r.Start && fret <= r.End
}

// Len returns the number of frets in the range.
func (r FretRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r FretRange) String() string {
	return fmt.Sprintf("%d..=%d", r.Start, r.End)
}

// NoteAt returns the note sounding at a position.
func (t Tuning) NoteAt(p Position) Note {
	return t[p.String].Add(p.Fret)
}

// Positions returns every position within frets where note sounds,
// ordered by string then fret.
func (t Tuning) Positions(note Note, frets FretRange) []Position {
	var out []Position
	for s, open := range t {
		fret := note.SemitoneIndex() - open.SemitoneIndex()
		if frets.Contains(fret) {
			out = append(out, Position{String: s, Fret: fret})
		}
	}
	return out
}
