package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xlemi/fretnote/internal/app"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#888888"))
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4"))
)

// Tab selects the main panel.
type Tab int

const (
	TabTuner Tab = iota
	TabWaveform
	TabSpectrum
	TabDBFS
	tabCount
)

var tabNames = [tabCount]string{"Tuner", "Waveform", "Spectrum", "dBFS"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "Unknown"
	}
	return tabNames[t]
}

// Plot limits
const (
	spectrumMaxHz = 2000.0
	plotHeight    = 12
	defaultWidth  = 80
)

// FrameMsg carries a loop snapshot into the program.
type FrameMsg app.Frame

// Model represents the UI state. It only renders frames; every change to the
// board goes back to the loop through submit.
type Model struct {
	frame    app.Frame
	hasFrame bool
	tab      Tab
	fps      *FPSCounter
	submit   func(app.Command)
	now      func() time.Time
	width    int
	height   int
}

// NewModel creates a new UI model. submit may be nil, which disables the
// board keys.
func NewModel(submit func(app.Command)) Model {
	return Model{
		fps:    NewFPSCounter(time.Now()),
		submit: submit,
		now:    time.Now,
		width:  defaultWidth,
	}
}

// Init initializes the UI model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.tab = (m.tab + tabCount - 1) % tabCount
			return m, nil
		}
		if cmd := keyCommand(key); cmd != nil && m.submit != nil {
			m.submit(cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case FrameMsg:
		m.frame = app.Frame(msg)
		m.hasFrame = true
		m.fps.Tick(m.now())
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FretNote - Guitar Note Detector"))
	b.WriteString("\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	if !m.hasFrame {
		b.WriteString(infoStyle.Render("Listening for audio..."))
	} else {
		switch m.tab {
		case TabWaveform:
			b.WriteString(m.waveformView())
		case TabSpectrum:
			b.WriteString(m.spectrumView())
		case TabDBFS:
			b.WriteString(m.dbfsView())
		default:
			b.WriteString(m.tunerView())
		}
	}

	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render("m/M mode  n/N menu  b both  ←/→ scroll  tab view  q quit"))
	return b.String()
}

func (m Model) tabBar() string {
	tabs := make([]string, tabCount)
	for t := range tabCount {
		if t == m.tab {
			tabs[t] = activeTabStyle.Render(t.String())
		} else {
			tabs[t] = tabStyle.Render(t.String())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) tunerView() string {
	tuner := m.frame.Tuner

	var top string
	if tuner.HasReading {
		r := tuner.Reading
		info := fmt.Sprintf("Frequency: %.2f Hz | Cents: %+.1f", r.Frequency, r.Cents)
		top = lipgloss.JoinVertical(lipgloss.Left,
			renderNote(r.Note),
			renderGauge(r.Cents, 41),
			infoStyle.Render(info),
		)
	} else {
		top = infoStyle.Render("Listening for audio...")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		"",
		renderFretboard(m.frame.Board),
	)
}

func (m Model) plotWidth() int {
	return max(m.width-2, 16)
}

func (m Model) waveformView() string {
	w := m.plotWidth()
	return plotWaveform(m.frame.Tuner.Samples, w, plotHeight)
}

func (m Model) spectrumView() string {
	w := m.plotWidth()
	bars := spectrumBars(m.frame.Tuner.Normalized, m.frame.Tuner.SampleRate, spectrumMaxHz)
	return plotBars(bars, w, plotHeight) + "\n" + axisLabel(hz(0), hz(spectrumMaxHz), w)
}

func (m Model) dbfsView() string {
	w := m.plotWidth()
	return plotBars(dbfsBars(m.frame.Spectrum, app.SpectrumFloor), w, plotHeight) + "\n" +
		axisLabel(hz(app.SpectrumLow), hz(app.SpectrumHigh), w)
}

func (m Model) statusLine() string {
	parts := []string{modeStatus(m.frame.Board)}
	if m.hasFrame {
		parts = append(parts, fmt.Sprintf("Level: %.1f dB", m.frame.LevelDB))
	}
	if s := m.fps.String(); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " | ")
}
