package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/0xlemi/fretnote/internal/music"
)

// Note colors
var noteColors = map[string]string{
	"C": "#E8D6B0", // Beige
	"D": "#A020F0", // Purple
	"E": "#FFFF00", // Yellow
	"F": "#FFA500", // Orange
	"G": "#00FF00", // Green
	"A": "#FF0000", // Red
	"B": "#0000FF", // Blue
}

// Get the next natural note (for sharp note colors)
func nextNatural(letter string) string {
	switch letter {
	case "C":
		return "D"
	case "D":
		return "E"
	case "E":
		return "F"
	case "F":
		return "G"
	case "G":
		return "A"
	case "A":
		return "B"
	default:
		return "C"
	}
}

func noteBlockStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(color)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333"))
}

// renderNote draws the note name as a coloured block. Sharps are split
// between the colours of the two naturals around them.
func renderNote(n music.Note) string {
	name := n.Name()
	text := n.String()

	if !strings.HasSuffix(name, "#") {
		return noteBlockStyle(noteColors[name]).Padding(2, 4).Render(text)
	}

	letter := name[:1]
	left := noteBlockStyle(noteColors[letter]).
		BorderRight(false).
		PaddingLeft(2).
		PaddingRight(1).
		PaddingTop(2).
		PaddingBottom(2)
	right := noteBlockStyle(noteColors[nextNatural(letter)]).
		BorderLeft(false).
		PaddingLeft(1).
		PaddingRight(2).
		PaddingTop(2).
		PaddingBottom(2)

	return lipgloss.JoinHorizontal(lipgloss.Top, left.Render(letter), right.Render(text[1:]))
}

// gaugeRange is the cents deviation shown at either end of the gauge.
const gaugeRange = 50.0

var (
	inTune   = colorful.Color{R: 0.2, G: 0.85, B: 0.3}
	offTune  = colorful.Color{R: 0.95, G: 0.2, B: 0.2}
	gaugeDim = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

// centsColor blends from green at 0 cents to red at the gauge ends.
func centsColor(cents float64) string {
	t := min(math.Abs(cents)/gaugeRange, 1)
	return inTune.BlendLab(offTune, t).Clamped().Hex()
}

// gaugePosition maps cents to a column of a gauge width columns wide.
func gaugePosition(cents float64, width int) int {
	if width < 2 {
		return 0
	}
	c := max(-gaugeRange, min(cents, gaugeRange))
	pos := (c + gaugeRange) / (2 * gaugeRange) * float64(width-1)
	return int(pos + 0.5)
}

// renderGauge draws a horizontal tuning gauge with a marker at cents.
func renderGauge(cents float64, width int) string {
	if width < 3 {
		return ""
	}
	pos := gaugePosition(cents, width)
	centre := (width - 1) / 2

	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == pos:
			b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(centsColor(cents))).Render("▼"))
		case i == centre:
			b.WriteString(gaugeDim.Render("┃"))
		default:
			b.WriteString(gaugeDim.Render("─"))
		}
	}

	label := "in tune"
	switch {
	case cents > 5:
		label = fmt.Sprintf("%+.0f¢ sharp", cents)
	case cents < -5:
		label = fmt.Sprintf("%+.0f¢ flat", cents)
	}
	return fmt.Sprintf("-50 %s +50\n%s", b.String(), lipgloss.NewStyle().Foreground(lipgloss.Color(centsColor(cents))).Render(label))
}
