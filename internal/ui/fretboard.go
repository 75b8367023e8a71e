package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/0xlemi/fretnote/internal/fretboard"
	"github.com/0xlemi/fretnote/internal/music"
)

const (
	activeSymbol = "●"
	ghostSymbol  = "✖"
)

var (
	fretNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AA66CC"))
	stringNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#66BB6A"))
	highlightStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#66BB6A"))
	activeStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))
	ghostStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// renderFretboard draws the visible window of the neck, highest string on
// top. Active positions win over ghost positions sharing a cell.
func renderFretboard(v fretboard.View) string {
	if len(v.Tuning) == 0 {
		return ""
	}

	var rows []string
	for s := len(v.Tuning) - 1; s >= 0; s-- {
		var b strings.Builder

		name := fmt.Sprintf("%-3s", v.Tuning[s].String())
		if s < len(v.HighlightedStrings) && v.HighlightedStrings[s] {
			b.WriteString(highlightStyle.Render(name))
		} else {
			b.WriteString(stringNameStyle.Render(name))
		}
		if v.Frets.Start > 0 {
			b.WriteString("│")
		}

		for fret := v.Frets.Start; fret <= v.Frets.End; fret++ {
			sym := cellSymbol(v, music.Position{String: s, Fret: fret})
			if fret == 0 {
				b.WriteString(sym + "║")
				continue
			}
			b.WriteString("─" + sym + "─┼")
		}
		rows = append(rows, b.String())
	}

	rows = append(rows, fretNumberStyle.Render(fretNumbers(v.Frets)))
	return strings.Join(rows, "\n")
}

func cellSymbol(v fretboard.View, p music.Position) string {
	switch {
	case slices.Contains(v.ActivePositions, p):
		return activeStyle.Render(activeSymbol)
	case slices.Contains(v.GhostPositions, p):
		return ghostStyle.Render(ghostSymbol)
	default:
		return "─"
	}
}

// fretNumbers labels each fret under the centre of its cell.
func fretNumbers(frets music.FretRange) string {
	var b strings.Builder
	b.WriteString("   ")
	if frets.Start > 0 {
		b.WriteString(" ")
	}
	for fret := frets.Start; fret <= frets.End; fret++ {
		if fret == 0 {
			b.WriteString("0 ")
			continue
		}
		b.WriteString(fmt.Sprintf("%2d  ", fret))
	}
	return strings.TrimRight(b.String(), " ")
}

// modeStatus summarises the practice mode in one line.
func modeStatus(v fretboard.View) string {
	switch v.Mode {
	case fretboard.ModeScale:
		return fmt.Sprintf("Scale: %s %s", v.Root.Name(), v.Scale)
	case fretboard.ModeRandom:
		s := fmt.Sprintf("Random: score %d", v.Score)
		if v.HasTarget {
			s += fmt.Sprintf(" | string %d fret %d | %.1fs left",
				len(v.Tuning)-v.Target.String, v.Target.Fret, v.Remaining.Seconds())
		}
		return s
	case fretboard.ModeSong:
		if v.Beats == 0 {
			return "Song: none"
		}
		return fmt.Sprintf("Song: %s | beat %d/%d", v.Song, v.Cursor+1, v.Beats)
	default:
		return "Live"
	}
}
