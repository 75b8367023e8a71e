package ui

import (
	"fmt"
	"time"
)

// FPSCounter measures the render rate. The value is refreshed at most once a
// second and only after a few frames, so a single slow frame does not show.
type FPSCounter struct {
	frames int
	since  time.Time
	fps    float64
	valid  bool
}

func NewFPSCounter(now time.Time) *FPSCounter {
	return &FPSCounter{since: now}
}

// Tick records one rendered frame.
func (f *FPSCounter) Tick(now time.Time) {
	f.frames++
	elapsed := now.Sub(f.since)
	if elapsed > time.Second && f.frames > 2 {
		f.fps = float64(f.frames) / elapsed.Seconds()
		f.valid = true
		f.frames = 0
		f.since = now
	}
}

// FPS returns the last measured rate, or false before the first measurement.
func (f *FPSCounter) FPS() (float64, bool) { return f.fps, f.valid }

func (f *FPSCounter) String() string {
	if !f.valid {
		return ""
	}
	return fmt.Sprintf("%.1f fps", f.fps)
}
