package dsp

import (
	"math"
	"sync/atomic"
)

type (
	// Filter is a peaking equalizer: a biquad boosting a band around its
	// center frequency. The center frequency and Q are given as normalized
	// values in [0, 1] so that they can be driven directly from a touch.
	Filter struct {
		sampleRate float64
		gain       float64

		frequency atomicFloat
		q         atomicFloat
		coeffs    atomic.Pointer[biquad]

		// owned by the audio goroutine
		z1, z2 float64
	}

	// biquad coefficients, normalized so that a0 = 1. Published as a whole so
	// that the audio goroutine never sees half of an update.
	biquad struct {
		b0, b1, b2, a1, a2 float64
	}
)

const (
	filterMinFreq = 32
	filterMaxFreq = 16000
	filterMinQ    = 0.1
	filterMaxQ    = 10

	// FilterGain is the boost at the center frequency, in dB.
	FilterGain = 12
)

// NewFilter returns a filter centered in the middle of its range.
func NewFilter(sampleRate int) *Filter {
	f := &Filter{sampleRate: float64(sampleRate), gain: FilterGain}
	f.frequency.Store(0.5)
	f.q.Store(0.5)
	f.update()
	return f
}

// SetFrequency sets the normalized center frequency, mapped exponentially
// onto the audible range.
func (f *Filter) SetFrequency(value float64) {
	f.frequency.Store(clamp(value, 0, 1))
	f.update()
}

// SetQ sets the normalized resonance.
func (f *Filter) SetQ(value float64) {
	f.q.Store(clamp(value, 0, 1))
	f.update()
}

func (f *Filter) Frequency() float64 { return f.frequency.Load() }
func (f *Filter) Q() float64         { return f.q.Load() }

// CenterHz returns the center frequency in Hz.
func (f *Filter) CenterHz() float64 {
	hz := filterMinFreq * math.Pow(filterMaxFreq/filterMinFreq, f.frequency.Load())
	if nyquist := f.sampleRate / 2; hz > nyquist*0.95 {
		hz = nyquist * 0.95
	}
	return hz
}

func (f *Filter) update() {
	// RBJ audio EQ cookbook, peaking EQ
	w0 := 2 * math.Pi * f.CenterHz() / f.sampleRate
	q := filterMinQ + f.q.Load()*(filterMaxQ-filterMinQ)
	alpha := math.Sin(w0) / (2 * q)
	A := math.Pow(10, f.gain/40)
	cosw0 := math.Cos(w0)
	a0 := 1 + alpha/A
	f.coeffs.Store(&biquad{
		b0: (1 + alpha*A) / a0,
		b1: -2 * cosw0 / a0,
		b2: (1 - alpha*A) / a0,
		a1: -2 * cosw0 / a0,
		a2: (1 - alpha/A) / a0,
	})
}

// Process filters one sample. Called only by the audio goroutine.
func (f *Filter) Process(x float32) float32 {
	c := f.coeffs.Load()
	in := float64(x)
	out := c.b0*in + f.z1
	f.z1 = c.b1*in - c.a1*out + f.z2
	f.z2 = c.b2*in - c.a2*out
	return float32(out)
}
