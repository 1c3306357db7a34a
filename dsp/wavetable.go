package dsp

import (
	"math"

	"github.com/mattfeury/sauce"
)

const tableSize = 4096

const (
	sineTable = iota
	squareTable
	sawTable
	triangleTable
	numTables
)

// wavetables hold one cycle of every waveform, with the first sample repeated
// at the end so that interpolation never has to wrap.
var wavetables [numTables][tableSize + 1]float32

func init() {
	for i := 0; i <= tableSize; i++ {
		phase := float64(i%tableSize) / tableSize
		wavetables[sineTable][i] = float32(math.Sin(2 * math.Pi * phase))
		if phase < 0.5 {
			wavetables[squareTable][i] = 1
		} else {
			wavetables[squareTable][i] = -1
		}
		wavetables[sawTable][i] = float32(2*phase - 1)
		switch {
		case phase < 0.25:
			wavetables[triangleTable][i] = float32(4 * phase)
		case phase < 0.75:
			wavetables[triangleTable][i] = float32(2 - 4*phase)
		default:
			wavetables[triangleTable][i] = float32(4*phase - 4)
		}
	}
}

func tableFor(w sauce.Waveform) int {
	switch w {
	case sauce.SquareWave:
		return squareTable
	case sauce.SawWave:
		return sawTable
	case sauce.TriangleWave:
		return triangleTable
	default:
		return sineTable
	}
}

// readTable returns the linearly interpolated value of the table at phase,
// which must be in [0, 1).
func readTable(table int, phase float64) float64 {
	pos := phase * tableSize
	i := int(pos)
	if i >= tableSize {
		i = tableSize - 1
	}
	frac := float32(pos - float64(i))
	t := &wavetables[table]
	return float64(t[i] + frac*(t[i+1]-t[i]))
}
