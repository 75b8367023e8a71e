package fretboard

import (
	"strings"

	"github.com/0xlemi/fretnote/internal/music"
)

// Song is a sequence of beats. Every note of a beat has to be played before
// the next beat is shown.
type Song struct {
	Name  string
	Beats [][]music.Note
}

// beats builds a beat list from space separated note names, one string per beat.
func beats(chords ...string) [][]music.Note {
	out := make([][]music.Note, 0, len(chords))
	for _, b := range chords {
		var beat []music.Note
		for _, name := range strings.Fields(b) {
			beat = append(beat, music.MustParseNote(name))
		}
		out = append(out, beat)
	}
	return out
}

var (
	SmokeOnTheWater = Song{
		Name: "Smoke on the Water",
		Beats: beats(
			"G3 D3", "A#3 F3", "C4 G3",
			"G3 D3", "A#3 F3", "C#4 G#3", "C4 G3",
			"G3 D3", "A#3 F3", "C4 G3", "A#3 F3", "G3 D3",
		),
	}

	SevenNationArmy = Song{
		Name:  "Seven Nation Army",
		Beats: beats("E3", "E3", "G3", "E3", "D3", "C3", "B2"),
	}

	OdeToJoy = Song{
		Name: "Ode to Joy",
		Beats: beats(
			"E4", "E4", "F4", "G4", "G4", "F4", "E4", "D4",
			"C4", "C4", "D4", "E4", "E4", "D4", "D4",
		),
	}
)

// DefaultSongs is the built-in song table.
var DefaultSongs = []Song{SmokeOnTheWater, SevenNationArmy, OdeToJoy}
