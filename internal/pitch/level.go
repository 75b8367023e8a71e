package pitch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// fullScale is the magnitude of a full-scale int16 sample.
const fullScale = 32768.0

// Level calculates the RMS (in sample units) and the dBFS level of a block.
func Level(samples []int16) (rms, db float64) {
	if len(samples) == 0 {
		return 0, -100
	}

	sumSquares := 0.0
	for _, s := range samples {
		v := float64(s)
		sumSquares += v * v
	}
	rms = math.Sqrt(sumSquares / float64(len(samples)))

	// Calculate dB (with protection against log(0))
	if rms > 0 {
		db = 20 * math.Log10(rms/fullScale)
	} else {
		db = -100
	}
	return rms, db
}

// SpectrumPoint is one bin of a level spectrum.
type SpectrumPoint struct {
	Frequency float64 // Hz
	Level     float64 // dB relative to the loudest bin in range
}

// DBFSSpectrum converts magnitudes to levels relative to the strongest bin
// between lo and hi Hz, clamped to [floor, 0].
func DBFSSpectrum(mags []float64, sampleRate, lo, hi, floor float64) []SpectrumPoint {
	if len(mags) == 0 || sampleRate <= 0 || hi <= lo {
		return nil
	}

	perBin := BinFrequency(1, len(mags), sampleRate)
	start := int(math.Ceil(lo / perBin))
	end := min(int(math.Floor(hi/perBin)), len(mags)-1)
	if start > end {
		return nil
	}

	slice := mags[start : end+1]
	ref := math.Max(floats.Max(slice), minMagnitude)

	points := make([]SpectrumPoint, len(slice))
	for i, m := range slice {
		db := 20 * math.Log10(math.Max(m/ref, minMagnitude))
		points[i] = SpectrumPoint{
			Frequency: float64(start+i) * perBin,
			Level:     math.Max(floor, math.Min(db, 0)),
		}
	}
	return points
}
