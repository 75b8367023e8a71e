package music

import "slices"

// Scale identifies one of the built-in scales.
type Scale int

const (
	MajorPentatonic Scale = iota
	MinorPentatonic
	Major
	NaturalMinor
	Blues
	Mixolydian
	Dorian
	Lydian
)

// Scales lists every scale in declaration order.
var Scales = []Scale{
	MajorPentatonic,
	MinorPentatonic,
	Major,
	NaturalMinor,
	Blues,
	Mixolydian,
	Dorian,
	Lydian,
}

var scaleIntervals = map[Scale][]int{
	MajorPentatonic: {0, 2, 4, 7, 9},
	MinorPentatonic: {0, 3, 5, 7, 10},
	Major:           {0, 2, 4, 5, 7, 9, 11},
	NaturalMinor:    {0, 2, 3, 5, 7, 8, 10},
	Blues:           {0, 3, 5, 6, 7, 10},
	Mixolydian:      {0, 2, 4, 5, 7, 9, 10},
	Dorian:          {0, 2, 3, 5, 7, 9, 10},
	Lydian:          {0, 2, 4, 6, 7, 9, 11},
}

var scaleNames = map[Scale]string{
	MajorPentatonic: "Major Pentatonic",
	MinorPentatonic: "Minor Pentatonic",
	Major:           "Major",
	NaturalMinor:    "Natural Minor",
	Blues:           "Blues",
	Mixolydian:      "Mixolydian",
	Dorian:          "Dorian",
	Lydian:          "Lydian",
}

// UI cycling order.
var nextScale = map[Scale]Scale{
	MajorPentatonic: MinorPentatonic,
	MinorPentatonic: Blues,
	Blues:           Mixolydian,
	Mixolydian:      Dorian,
	Dorian:          Lydian,
	Lydian:          Major,
	Major:           NaturalMinor,
	NaturalMinor:    MajorPentatonic,
}

func (s Scale) String() string {
	if name, ok := scaleNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Intervals returns the semitone offsets from the root, sorted ascending.
// The returned slice is a copy.
func (s Scale) Intervals() []int {
	return slices.Clone(scaleIntervals[s])
}

// PitchClasses returns (root + interval) mod 12 for every interval.
func (s Scale) PitchClasses(root Note) []int {
	intervals := scaleIntervals[s]
	out := make([]int, len(intervals))
	for i, interval := range intervals {
		out[i] = (root.PitchClass() + interval) % 12
	}
	return out
}

// Notes returns the scale notes starting at root, keeping the octave progression.
func (s Scale) Notes(root Note) []Note {
	intervals := scaleIntervals[s]
	out := make([]Note, len(intervals))
	for i, interval := range intervals {
		out[i] = root.Add(interval)
	}
	return out
}

// Contains reports whether note belongs to the scale built on root.
func (s Scale) Contains(root, note Note) bool {
	return slices.Contains(s.PitchClasses(root), note.PitchClass())
}

// FretboardNotes returns every position within frets whose note belongs to
// the scale, ordered by string then fret.
func (s Scale) FretboardNotes(root Note, tuning Tuning, frets FretRange) []Position {
	var out []Position
	for str := range tuning {
		for fret := frets.Start; fret <= frets.End; fret++ {
			p := Position{String: str, Fret: fret}
			if s.Contains(root, tuning.NoteAt(p)) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Next returns the following scale in the cycling order.
func (s Scale) Next() Scale {
	if next, ok := nextScale[s]; ok {
		return next
	}
	return MajorPentatonic
}
