package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/0xlemi/fretnote/internal/app"
	"github.com/0xlemi/fretnote/internal/audio"
	"github.com/0xlemi/fretnote/internal/config"
	"github.com/0xlemi/fretnote/internal/fretboard"
	"github.com/0xlemi/fretnote/internal/midiout"
	"github.com/0xlemi/fretnote/internal/pitch"
	"github.com/0xlemi/fretnote/internal/ui"
)

// Amplitude of the built-in test tone
const sineAmplitude = 8000

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:          "fretnote",
		Short:        "Guitar note detector and fretboard practice aid",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cfg.BindFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	plain := cfg.Plain || !isatty.IsTerminal(os.Stdout.Fd())

	logOut, closeLog, err := openLog(cfg, plain)
	if err != nil {
		return err
	}
	defer closeLog()
	logger, err := cfg.NewLogger(logOut)
	if err != nil {
		return err
	}

	transform, err := newTransform(cfg)
	if err != nil {
		return err
	}
	policy, err := cfg.StabilityPolicy()
	if err != nil {
		return err
	}
	tuner := pitch.NewTuner(transform,
		pitch.WithHistoryLength(cfg.History),
		pitch.WithPolicy(policy),
		pitch.WithFrequencyRange(cfg.MinFreq, cfg.MaxFreq),
		pitch.WithReference(cfg.Reference),
		pitch.WithNoiseFloor(cfg.NoiseFloor),
		pitch.WithLogger(logger),
	)

	board, err := fretboard.NewModel(
		fretboard.WithWindowSize(cfg.WindowSize),
		fretboard.WithControlMax(cfg.ControlMax),
		fretboard.WithRandomTimeout(cfg.RandomTimeout),
		fretboard.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var notes app.NotePublisher
	if cfg.MIDIOut != "" {
		pub, closeMIDI, err := openMIDI(cfg, logger)
		if err != nil {
			return err
		}
		defer closeMIDI()
		notes = pub
	}

	capturer, err := newCapturer(cfg, logger)
	if err != nil {
		return err
	}
	if err := capturer.Start(); err != nil {
		return fmt.Errorf("start %s capture: %w", cfg.Source, err)
	}
	defer func() {
		if err := capturer.Stop(); err != nil {
			logger.Warn("stop capture", "err", err)
		}
	}()

	logger.Info("fretnote started",
		"source", cfg.Source,
		"backend", cfg.Backend,
		"fft_size", cfg.FFTSize,
		"policy", policy,
		"plain", plain,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	loop := app.New(capturer, tuner, board, notes, logger)
	if plain {
		return loop.Run(ctx, cfg.TickInterval(), newLinePrinter(os.Stdout).publish)
	}
	return runTUI(ctx, loop, cfg)
}

// runTUI runs the loop and the terminal UI until either ends.
func runTUI(ctx context.Context, loop *app.Loop, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewModel(loop.Submit), tea.WithAltScreen(), tea.WithContext(ctx))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return loop.Run(ctx, cfg.TickInterval(), func(f app.Frame) {
			p.Send(ui.FrameMsg(f))
		})
	})
	return g.Wait()
}

func openLog(cfg config.Config, plain bool) (io.Writer, func() error, error) {
	if plain || cfg.LogFile == "-" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

func newTransform(cfg config.Config) (pitch.Transformer, error) {
	if cfg.Backend == config.BackendGonum {
		return pitch.NewFourierTransform(cfg.FFTSize, pitch.WindowHann)
	}
	return pitch.NewFFTTransform(cfg.FFTSize, pitch.WindowHann)
}

func newCapturer(cfg config.Config, logger *slog.Logger) (audio.Capturer, error) {
	switch cfg.Source {
	case config.SourceSerial:
		return audio.NewSerialCapturer(cfg.SerialPort, cfg.Baud, cfg.FFTSize, logger)
	case config.SourceSine:
		return audio.NewSineSource(cfg.SineFreq, cfg.SampleRate, sineAmplitude, cfg.FFTSize, logger)
	default:
		c, err := audio.NewPortAudioCapturer(cfg.FFTSize, cfg.SampleRate, cfg.Channels, logger)
		if err != nil {
			return nil, fmt.Errorf("create audio capturer: %w", err)
		}
		c.SetAmplification(cfg.Amplification)
		return c, nil
	}
}

// openMIDI connects to the first output whose name contains cfg.MIDIOut.
func openMIDI(cfg config.Config, logger *slog.Logger) (*midiout.Publisher, func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, nil, fmt.Errorf("rtmididrv: %w", err)
	}
	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, nil, fmt.Errorf("list midi outputs: %w", err)
	}

	for _, out := range outs {
		if !strings.Contains(strings.ToLower(out.String()), strings.ToLower(cfg.MIDIOut)) {
			continue
		}
		send, err := midi.SendTo(out)
		if err != nil {
			drv.Close()
			return nil, nil, fmt.Errorf("open midi output %q: %w", out.String(), err)
		}
		pub, err := midiout.NewPublisher(send, cfg.MIDIChannel, midiout.WithLogger(logger))
		if err != nil {
			drv.Close()
			return nil, nil, err
		}
		logger.Info("midi: output connected", "device", out.String())
		return pub, func() {
			if err := pub.Close(); err != nil {
				logger.Warn("midi: release note", "err", err)
			}
			drv.Close()
		}, nil
	}

	drv.Close()
	return nil, nil, fmt.Errorf("no midi output matches %q", cfg.MIDIOut)
}

// linePrinter writes one line per change of the held note.
type linePrinter struct {
	w    io.Writer
	last string
}

func newLinePrinter(w io.Writer) *linePrinter {
	return &linePrinter{w: w}
}

func (lp *linePrinter) publish(f app.Frame) {
	key, line := "-", "-"
	if f.Tuner.HasReading {
		r := f.Tuner.Reading
		key = r.Note.String()
		line = fmt.Sprintf("%-4s %8.2f Hz %+6.1f cents", r.Note, r.Frequency, r.Cents)
	}
	if key == lp.last {
		return
	}
	lp.last = key
	fmt.Fprintln(lp.w, line)
}
