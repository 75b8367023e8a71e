// Package config holds the runtime settings and their command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/0xlemi/fretnote/internal/fretboard"
	"github.com/0xlemi/fretnote/internal/pitch"
)

// Audio sources
const (
	SourcePortAudio = "portaudio"
	SourceSerial    = "serial"
	SourceSine      = "sine"
)

// Transform backends
const (
	BackendGoDSP = "godsp"
	BackendGonum = "gonum"
)

// Config is the complete runtime configuration.
type Config struct {
	// Audio
	Source        string
	Backend       string
	FFTSize       int
	SampleRate    float64
	Channels      int
	Amplification float64

	// Detection
	History    int
	Policy     string
	MinFreq    float64
	MaxFreq    float64
	Reference  float64
	NoiseFloor float64

	// Fretboard
	WindowSize    int
	ControlMax    int
	RandomTimeout time.Duration

	// Display
	FPS   int
	Plain bool

	// Serial ADC
	SerialPort string
	Baud       int

	SineFreq float64

	// MIDI out, disabled when MIDIOut is empty
	MIDIOut     string
	MIDIChannel int

	LogFile  string
	LogLevel string
}

// Default returns the settings used when no flag is given.
func Default() Config {
	return Config{
		Source:        SourcePortAudio,
		Backend:       BackendGoDSP,
		FFTSize:       4096,
		SampleRate:    44100,
		Channels:      1,
		Amplification: 5,

		History:    pitch.DefaultHistoryLength,
		Policy:     pitch.PolicyUnanimous.String(),
		MinFreq:    pitch.DefaultMinFrequency,
		MaxFreq:    pitch.DefaultMaxFrequency,
		Reference:  440,
		NoiseFloor: pitch.DefaultNoiseFloor,

		WindowSize:    fretboard.DefaultWindowSize,
		ControlMax:    fretboard.DefaultControlMax,
		RandomTimeout: fretboard.DefaultRandomTimeout,

		FPS: 30,

		SerialPort: "/dev/ttyUSB0",
		Baud:       921600,

		SineFreq: 440,

		MIDIChannel: 0,

		LogFile:  "fretnote.log",
		LogLevel: "info",
	}
}

// BindFlags registers every setting on fs, using the current values as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Source, "source", c.Source, "audio source: portaudio, serial or sine")
	fs.StringVar(&c.Backend, "backend", c.Backend, "FFT backend: godsp or gonum")
	fs.IntVarP(&c.FFTSize, "fft-size", "n", c.FFTSize, "samples per FFT block")
	fs.Float64Var(&c.SampleRate, "sample-rate", c.SampleRate, "capture sample rate in Hz")
	fs.IntVar(&c.Channels, "channels", c.Channels, "input channels to average")
	fs.Float64Var(&c.Amplification, "amplification", c.Amplification, "input gain")

	fs.IntVar(&c.History, "history", c.History, "readings that must be considered before a note is shown")
	fs.StringVar(&c.Policy, "policy", c.Policy, "stability policy: unanimous or newest")
	fs.Float64Var(&c.MinFreq, "min-freq", c.MinFreq, "lowest accepted fundamental in Hz")
	fs.Float64Var(&c.MaxFreq, "max-freq", c.MaxFreq, "highest accepted fundamental in Hz")
	fs.Float64Var(&c.Reference, "reference", c.Reference, "frequency of A4 in Hz")
	fs.Float64Var(&c.NoiseFloor, "noise-floor", c.NoiseFloor, "RMS below which input counts as silence")

	fs.IntVar(&c.WindowSize, "window-size", c.WindowSize, "visible frets past the start fret")
	fs.IntVar(&c.ControlMax, "control-max", c.ControlMax, "largest scroll control value")
	fs.DurationVar(&c.RandomTimeout, "random-timeout", c.RandomTimeout, "time to hit a random target")

	fs.IntVar(&c.FPS, "fps", c.FPS, "display refresh rate")
	fs.BoolVar(&c.Plain, "plain", c.Plain, "print notes as lines instead of the terminal UI")

	fs.StringVar(&c.SerialPort, "serial-port", c.SerialPort, "serial device of the ADC board")
	fs.IntVar(&c.Baud, "baud", c.Baud, "serial baud rate")
	fs.Float64Var(&c.SineFreq, "sine-freq", c.SineFreq, "frequency of the sine source in Hz")

	fs.StringVar(&c.MIDIOut, "midi-out", c.MIDIOut, "MIDI output port name (substring match), empty disables")
	fs.IntVar(&c.MIDIChannel, "midi-channel", c.MIDIChannel, "MIDI channel 0..15")

	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log destination, '-' for stderr")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Source {
	case SourcePortAudio, SourceSerial, SourceSine:
	default:
		add("unknown source %q", c.Source)
	}
	switch c.Backend {
	case BackendGoDSP, BackendGonum:
	default:
		add("unknown backend %q", c.Backend)
	}
	if c.FFTSize < 8 || c.FFTSize%2 != 0 {
		add("fft-size must be even and at least 8, got %d", c.FFTSize)
	}
	if c.SampleRate <= 0 {
		add("sample-rate must be positive, got %v", c.SampleRate)
	}
	if c.Channels < 1 {
		add("channels must be at least 1, got %d", c.Channels)
	}
	if c.History < 1 {
		add("history must be at least 1, got %d", c.History)
	}
	if _, err := c.StabilityPolicy(); err != nil {
		errs = append(errs, err)
	}
	if c.MinFreq <= 0 || c.MaxFreq <= c.MinFreq {
		add("frequency range %v..%v is empty", c.MinFreq, c.MaxFreq)
	}
	if c.Reference <= 0 {
		add("reference must be positive, got %v", c.Reference)
	}
	if c.WindowSize < 1 || c.WindowSize > 24 {
		add("window-size must be 1..24, got %d", c.WindowSize)
	}
	if c.ControlMax < 1 {
		add("control-max must be positive, got %d", c.ControlMax)
	}
	if c.RandomTimeout <= 0 {
		add("random-timeout must be positive, got %v", c.RandomTimeout)
	}
	if c.FPS < 1 || c.FPS > 240 {
		add("fps must be 1..240, got %d", c.FPS)
	}
	if c.Source == SourceSerial && c.SerialPort == "" {
		add("serial source needs --serial-port")
	}
	if c.MIDIChannel < 0 || c.MIDIChannel > 15 {
		add("midi-channel must be 0..15, got %d", c.MIDIChannel)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// StabilityPolicy parses the policy name.
func (c Config) StabilityPolicy() (pitch.Policy, error) {
	switch strings.ToLower(c.Policy) {
	case pitch.PolicyUnanimous.String():
		return pitch.PolicyUnanimous, nil
	case pitch.PolicyNewestWins.String():
		return pitch.PolicyNewestWins, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", c.Policy)
	}
}

// Level parses the log level name.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log-level: %w", err)
	}
	return l, nil
}

// TickInterval is the duration of one display frame.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(max(c.FPS, 1))
}

// NewLogger builds a text logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, &opts)), nil
}
