package audio

import (
	"log/slog"
	"math"
	"testing"
)

func TestSineIsPhaseContinuous(t *testing.T) {
	const rate, freq = 8000.0, 440.0

	whole, _ := Sine(freq, rate, 10000, 64, 0)
	a, phase := Sine(freq, rate, 10000, 40, 0)
	b, _ := Sine(freq, rate, 10000, 24, phase)

	joined := append(a, b...)
	for i := range whole {
		if d := math.Abs(float64(whole[i]) - float64(joined[i])); d > 1 {
			t.Fatalf("sample %d: %d vs %d", i, whole[i], joined[i])
		}
	}
}

func TestSineSourceNext(t *testing.T) {
	s, err := NewSineSource(440, 44100, 8000, 512, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}

	b := s.Next()
	if len(b.Samples) != 512 || b.SampleRate != 44100 {
		t.Fatalf("block len=%d rate=%v", len(b.Samples), b.SampleRate)
	}
	peak := 0
	for _, v := range b.Samples {
		peak = max(peak, int(math.Abs(float64(v))))
	}
	if peak < 7900 || peak > 8000 {
		t.Fatalf("peak=%d, want close to 8000", peak)
	}

	s.SetFrequency(110)
	if s.Frequency() != 110 {
		t.Fatalf("frequency=%v", s.Frequency())
	}
}

func TestSineSourceStartStop(t *testing.T) {
	s, err := NewSineSource(440, 44100, 8000, 256, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != ErrAlreadyCapturing {
		t.Fatalf("second Start: err=%v", err)
	}

	b := waitBuffer(t, s)
	if len(b.Samples) != 256 {
		t.Fatalf("block len=%d", len(b.Samples))
	}

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if s.IsCapturing() {
		t.Fatal("still capturing")
	}
}
