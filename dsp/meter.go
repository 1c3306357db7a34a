package dsp

import (
	"math"

	"github.com/viterin/vek/vek32"
)

type (
	// Level is the loudness of one rendered block.
	Level struct {
		Peak float32 // largest absolute sample value
		RMS  float32
	}

	// Meter measures the level of rendered blocks. Update is called by the
	// audio goroutine; Level may be called from anywhere.
	Meter struct {
		tmp, tmp2 []float32
		peak      atomicFloat
		rms       atomicFloat
	}
)

func NewMeter(blockSize int) *Meter {
	return &Meter{tmp: make([]float32, blockSize), tmp2: make([]float32, blockSize)}
}

// Update measures the block, which must not be longer than the block size the
// meter was created with.
func (m *Meter) Update(block []float32) {
	n := min(len(block), len(m.tmp))
	if n == 0 {
		return
	}
	sq := vek32.Mul_Into(m.tmp2[:n], block[:n], block[:n])
	m.rms.Store(math.Sqrt(float64(vek32.Mean(sq))))
	a := m.tmp[:n]
	copy(a, block)
	vek32.Abs_Inplace(a)
	m.peak.Store(float64(vek32.Max(a)))
}

func (m *Meter) Level() Level {
	return Level{Peak: float32(m.peak.Load()), RMS: float32(m.rms.Load())}
}
