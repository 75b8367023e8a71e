package ui

import (
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/0xlemi/fretnote/internal/app"
	"github.com/0xlemi/fretnote/internal/music"
	"github.com/0xlemi/fretnote/internal/pitch"
)

var quiet = slog.New(slog.DiscardHandler)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelWaitsForFrame(t *testing.T) {
	m := NewModel(nil)
	if got := ansi.Strip(m.View()); !strings.Contains(got, "Listening for audio...") {
		t.Fatalf("view=%q", got)
	}
}

func TestModelRendersReading(t *testing.T) {
	board := newBoard(t)
	frame := app.Frame{
		Tuner: pitch.Snapshot{
			HasReading: true,
			Reading:    pitch.Reading{Note: music.A4, Frequency: 441, Cents: 3.9},
		},
		Board:   board.View(),
		LevelDB: -12,
	}

	m := update(t, NewModel(nil), FrameMsg(frame))
	got := ansi.Strip(m.View())
	for _, want := range []string{"A4", "441.00 Hz", "in tune", "Live", "-12.0 dB"} {
		if !strings.Contains(got, want) {
			t.Errorf("view lacks %q:\n%s", want, got)
		}
	}
}

func TestModelForwardsKeys(t *testing.T) {
	var cmds []app.Command
	m := NewModel(func(c app.Command) { cmds = append(cmds, c) })

	m = update(t, m, runes("m"))
	m = update(t, m, runes("z"))
	update(t, m, tea.KeyMsg{Type: tea.KeyRight})

	if len(cmds) != 2 {
		t.Fatalf("submitted %d commands, want 2", len(cmds))
	}
	board := newBoard(t)
	for _, c := range cmds {
		c(board)
	}
	if board.Mode().String() != "Scale" || board.State().Frets().Start != 1 {
		t.Fatalf("mode=%s frets=%v", board.Mode(), board.State().Frets())
	}
}

func TestModelTabs(t *testing.T) {
	m := NewModel(nil)
	for _, want := range []Tab{TabWaveform, TabSpectrum, TabDBFS, TabTuner} {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.tab != want {
			t.Fatalf("tab=%s, want %s", m.tab, want)
		}
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != TabDBFS {
		t.Fatalf("tab=%s, want dBFS", m.tab)
	}
}

func TestModelQuits(t *testing.T) {
	_, cmd := NewModel(nil).Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should return tea.Quit")
	}
}
