package pitch

import (
	"math"
	"testing"

	"github.com/0xlemi/fretnote/internal/music"
)

// scriptedTransform reports a fixed sequence of fundamentals.
type scriptedTransform struct {
	freqs []float64
	i     int
}

func (s *scriptedTransform) Process([]int16) { s.i++ }

func (s *scriptedTransform) FindFundamentalFrequency(float64) float64 {
	return s.freqs[s.i-1]
}

func (s *scriptedTransform) FFTData() []float64           { return []float64{0, 1} }
func (s *scriptedTransform) NormalizedFFTData() []float64 { return []float64{0, 0.5} }

// loudBlock passes the default noise floor.
var loudBlock = []int16{1000, -1000, 1000, -1000}

func feed(t *Tuner, n int) {
	for i := 0; i < n; i++ {
		t.ProcessSamples(loudBlock, testSampleRate)
	}
}

func TestTunerDetectsSine(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			tuner := NewTuner(mustTransform(t, b, 512))
			block := sineBlock(440, testSampleRate, 16000, 512)

			tuner.ProcessSamples(block, testSampleRate)
			tuner.ProcessSamples(block, testSampleRate)

			r, ok := tuner.CurrentNote()
			if !ok {
				t.Fatal("no stable note")
			}
			if r.Note.Name() != "A" || r.Note != music.A4 {
				t.Fatalf("note=%s, want A4", r.Note)
			}
			if math.Abs(r.Cents) > 5 {
				t.Fatalf("cents=%.2f, want within 5", r.Cents)
			}
		})
	}
}

func TestTunerUnanimousPolicy(t *testing.T) {
	tests := []struct {
		name  string
		freqs []float64
		want  string // empty means no note
	}{
		{"empty", nil, ""},
		{"single reading", []float64{440}, "A"},
		{"agree", []float64{440, 441}, "A"},
		{"disagree", []float64{440, 466.16}, ""},
		{"settles after change", []float64{440, 466.16, 466.16}, "A#"},
		{"octaves share a class", []float64{220, 440}, "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuner := NewTuner(&scriptedTransform{freqs: tt.freqs})
			feed(tuner, len(tt.freqs))

			r, ok := tuner.CurrentNote()
			if tt.want == "" {
				if ok {
					t.Fatalf("got %s, want no note", r.Note)
				}
				return
			}
			if !ok || r.Note.Name() != tt.want {
				t.Fatalf("got %s ok=%v, want %s", r.Note.Name(), ok, tt.want)
			}
		})
	}
}

func TestTunerNewestWinsPolicy(t *testing.T) {
	tests := []struct {
		name    string
		history int
		freqs   []float64
		want    string
	}{
		{"disagree takes newest", 2, []float64{440, 466.16}, "A#"},
		{"majority beats newest", 3, []float64{440, 466.16, 440.5}, "A"},
		{"majority of three", 3, []float64{440, 440, 466.16}, "A"},
		{"three way tie takes newest", 3, []float64{440, 466.16, 493.88}, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuner := NewTuner(&scriptedTransform{freqs: tt.freqs},
				WithPolicy(PolicyNewestWins), WithHistoryLength(tt.history))
			feed(tuner, len(tt.freqs))

			r, ok := tuner.CurrentNote()
			if !ok || r.Note.Name() != tt.want {
				t.Fatalf("got %s ok=%v, want %s", r.Note.Name(), ok, tt.want)
			}
		})
	}
}

func TestTunerRejectsOutOfRange(t *testing.T) {
	tuner := NewTuner(&scriptedTransform{freqs: []float64{440, 60, 2000, 79.9}})
	feed(tuner, 4)

	if n := len(tuner.History()); n != 1 {
		t.Fatalf("history len=%d, want 1", n)
	}
	if tuner.LastFrequency() != 79.9 {
		t.Fatalf("last frequency=%v, want the raw estimate", tuner.LastFrequency())
	}
	if r, ok := tuner.CurrentNote(); !ok || r.Note.Name() != "A" {
		t.Fatalf("previous note should be kept, got %v %v", r.Note, ok)
	}
}

func TestTunerCustomRange(t *testing.T) {
	tuner := NewTuner(&scriptedTransform{freqs: []float64{60}}, WithFrequencyRange(40, 400))
	feed(tuner, 1)
	if len(tuner.History()) != 1 {
		t.Fatal("60 Hz should be accepted inside 40..400")
	}
}

func TestTunerIgnoresSilence(t *testing.T) {
	tr := mustTransform(t, backends[0], 512)
	tuner := NewTuner(tr)
	tuner.ProcessSamples(make([]int16, 512), testSampleRate)
	tuner.ProcessSamples(make([]int16, 512), testSampleRate)

	if len(tuner.History()) != 0 {
		t.Fatalf("silence produced history %+v", tuner.History())
	}
	if _, ok := tuner.CurrentNote(); ok {
		t.Fatal("silence produced a note")
	}
}

func TestTunerCents(t *testing.T) {
	tuner := NewTuner(&scriptedTransform{freqs: []float64{445, 445}})
	feed(tuner, 2)

	r, ok := tuner.CurrentNote()
	if !ok || r.Note != music.A4 {
		t.Fatalf("note=%v ok=%v", r.Note, ok)
	}
	if math.Abs(r.Cents-19.56) > 0.05 {
		t.Fatalf("cents=%.3f, want about +19.56", r.Cents)
	}
	if r.Frequency != 445 {
		t.Fatalf("frequency=%v", r.Frequency)
	}
}

func TestTunerReference(t *testing.T) {
	tuner := NewTuner(&scriptedTransform{freqs: []float64{432}}, WithReference(432))
	feed(tuner, 1)

	r, ok := tuner.CurrentNote()
	if !ok || r.Note != music.A4 || math.Abs(r.Cents) > 1e-9 {
		t.Fatalf("reading=%+v ok=%v, want A4 at 0 cents", r, ok)
	}
}

func TestTunerResetAndSnapshot(t *testing.T) {
	tuner := NewTuner(&scriptedTransform{freqs: []float64{440, 440}})
	feed(tuner, 2)

	snap := tuner.Snapshot()
	if !snap.HasReading || snap.Reading.Note != music.A4 {
		t.Fatalf("snapshot reading=%+v", snap.Reading)
	}
	if snap.SampleRate != testSampleRate || len(snap.Samples) != len(loudBlock) {
		t.Fatalf("snapshot block: rate=%v len=%d", snap.SampleRate, len(snap.Samples))
	}

	snap.Samples[0] = 7
	if tuner.Samples()[0] != loudBlock[0] {
		t.Fatal("snapshot shares sample storage with the tuner")
	}

	tuner.Reset()
	if _, ok := tuner.CurrentNote(); ok {
		t.Fatal("reset tuner still reports a note")
	}
	if !snap.HasReading {
		t.Fatal("snapshot changed after reset")
	}
}
