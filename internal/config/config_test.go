package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/0xlemi/fretnote/internal/pitch"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := Default()
	c.Source = "mic"
	c.FFTSize = 511
	c.Policy = "loudest"
	c.MIDIChannel = 16
	c.LogLevel = "chatty"

	err := c.Validate()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{`source "mic"`, "fft-size", `policy "loudest"`, "midi-channel", "log-level"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestBindFlags(t *testing.T) {
	c := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)

	args := []string{
		"--source", "sine",
		"-n", "512",
		"--policy", "newest",
		"--history", "3",
		"--random-timeout", "3s",
		"--plain",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}

	if c.Source != SourceSine || c.FFTSize != 512 || c.History != 3 || !c.Plain {
		t.Fatalf("flags not applied: %+v", c)
	}
	if c.RandomTimeout != 3*time.Second {
		t.Fatalf("random timeout=%v", c.RandomTimeout)
	}
	if p, err := c.StabilityPolicy(); err != nil || p != pitch.PolicyNewestWins {
		t.Fatalf("policy=%v err=%v", p, err)
	}
	if c.Backend != BackendGoDSP {
		t.Fatalf("unset flag changed backend to %q", c.Backend)
	}
}

func TestLogger(t *testing.T) {
	c := Default()
	c.LogLevel = "warn"

	var buf bytes.Buffer
	logger, err := c.NewLogger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "key", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown key=1") {
		t.Fatalf("log output %q", out)
	}

	if l, _ := c.Level(); l != slog.LevelWarn {
		t.Fatalf("level=%v", l)
	}
}

func TestTickInterval(t *testing.T) {
	c := Default()
	c.FPS = 50
	if got := c.TickInterval(); got != 20*time.Millisecond {
		t.Fatalf("interval=%v", got)
	}
}
