package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/0xlemi/fretnote/internal/pitch"
)

// plotWaveform draws samples as a scatter of dots, height rows tall. The
// vertical scale follows the loudest sample so quiet signals stay visible.
func plotWaveform(samples []int16, width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	g := newGrid(width, height)
	if len(samples) == 0 {
		return g.String()
	}

	peak := 1.0
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}

	for col := 0; col < width; col++ {
		s := float64(samples[col*len(samples)/width])
		row := int(math.Round((1 - (s/peak+1)/2) * float64(height-1)))
		g[row][col] = '•'
	}
	return g.String()
}

// plotBars draws values in [0, 1] as vertical bars. When there are more
// values than columns each column shows the largest value it covers.
func plotBars(values []float64, width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	g := newGrid(width, height)
	if len(values) == 0 {
		return g.String()
	}

	for col := 0; col < width; col++ {
		lo := col * len(values) / width
		hi := max((col+1)*len(values)/width, lo+1)
		v := 0.0
		for _, x := range values[lo:min(hi, len(values))] {
			v = math.Max(v, x)
		}
		filled := int(math.Round(math.Max(0, math.Min(v, 1)) * float64(height)))
		for row := height - filled; row < height; row++ {
			g[row][col] = '█'
		}
	}
	return g.String()
}

// spectrumBars scales the normalized magnitudes below maxHz to [0, 1].
func spectrumBars(normalized []float64, sampleRate, maxHz float64) []float64 {
	if len(normalized) == 0 || sampleRate <= 0 {
		return nil
	}
	n := len(normalized)
	last := min(int(maxHz/pitch.BinFrequency(1, n, sampleRate)), n-1)

	out := make([]float64, last+1)
	peak := 0.0
	for _, v := range normalized[:last+1] {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return out
	}
	for i, v := range normalized[:last+1] {
		out[i] = v / peak
	}
	return out
}

// dbfsBars maps levels in [floor, 0] dB to [0, 1].
func dbfsBars(points []pitch.SpectrumPoint, floor float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = (p.Level - floor) / -floor
	}
	return out
}

// axisLabel spreads lo and hi under a plot of the given width.
func axisLabel(lo, hi string, width int) string {
	gap := width - len(lo) - len(hi)
	if gap < 1 {
		return lo
	}
	return lo + strings.Repeat(" ", gap) + hi
}

func hz(f float64) string {
	if f >= 1000 {
		return fmt.Sprintf("%.1fkHz", f/1000)
	}
	return fmt.Sprintf("%.0fHz", f)
}

type grid [][]rune

func newGrid(width, height int) grid {
	g := make(grid, height)
	for i := range g {
		g[i] = []rune(strings.Repeat(" ", width))
	}
	return g
}

func (g grid) String() string {
	rows := make([]string, len(g))
	for i, r := range g {
		rows[i] = string(r)
	}
	return strings.Join(rows, "\n")
}
