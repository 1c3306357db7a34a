package sauce

import (
	"errors"
	"fmt"
)

type (
	// Waveform names the shape of one partial of an instrument.
	Waveform string

	// Partial is one oscillator of an instrument. A voice sums all the
	// partials of its instrument.
	Partial struct {
		Waveform Waveform
		Harmonic float64 `yaml:",omitempty"` // frequency multiplier; 0 is treated as 1
		Gain     float64
		Phase    float64 `yaml:",omitempty"` // initial phase, in cycles
	}

	// Instrument is the template from which voices are cloned. Modulation and
	// delay settings live here so that edits made to a live voice can be
	// written back and inherited by the next voice.
	Instrument struct {
		Name     string    `yaml:",omitempty"`
		Partials []Partial `yaml:",flow"`

		Attack  float64 // seconds from silence to full level
		Release float64 // seconds from full level to silence
		Lag     float64 `yaml:",omitempty"` // frequency glide, 0 = none, <1

		ModRate    float64 `yaml:",omitempty"` // LFO rate in Hz, [0, ModRateMax]
		ModDepth   float64 `yaml:",omitempty"` // LFO depth in Hz, [0, ModDepthMax]
		DelayRate  int     `yaml:",omitempty"` // delay in samples, [0, DelayMax]
		DelayDecay float64 `yaml:",omitempty"` // feedback, [0, 1]
	}

	// Effects are the modulation and delay settings of an instrument; the
	// part of a voice that is written back into the template.
	Effects struct {
		ModRate    float64
		ModDepth   float64
		DelayRate  int
		DelayDecay float64
	}
)

const (
	SineWave     Waveform = "sine"
	SquareWave   Waveform = "square"
	SawWave      Waveform = "saw"
	TriangleWave Waveform = "triangle"
)

// MaxPartials is the largest number of partials an instrument can have.
const MaxPartials = 8

var ErrInvalidInstrument = errors.New("invalid instrument")

// DefaultInstrument returns the built-in sine instrument, used when nothing
// else can be loaded.
func DefaultInstrument() Instrument {
	return Instrument{
		Name:     "Sine",
		Partials: []Partial{{Waveform: SineWave, Harmonic: 1, Gain: 1}},
		Attack:   0.01,
		Release:  0.3,
		Lag:      DefaultLag,
	}
}

// Copy returns a deep copy of the instrument.
func (instr *Instrument) Copy() Instrument {
	partials := make([]Partial, len(instr.Partials))
	copy(partials, instr.Partials)
	ret := *instr
	ret.Partials = partials
	return ret
}

// Effects returns the modulation and delay settings of the instrument.
func (instr *Instrument) Effects() Effects {
	return Effects{
		ModRate:    instr.ModRate,
		ModDepth:   instr.ModDepth,
		DelayRate:  instr.DelayRate,
		DelayDecay: instr.DelayDecay,
	}
}

// SetEffects overwrites the modulation and delay settings of the instrument.
func (instr *Instrument) SetEffects(e Effects) {
	instr.ModRate = e.ModRate
	instr.ModDepth = e.ModDepth
	instr.DelayRate = e.DelayRate
	instr.DelayDecay = e.DelayDecay
}

// Validate checks that every field of the instrument is within range.
func (instr *Instrument) Validate() error {
	if len(instr.Partials) == 0 {
		return fmt.Errorf("%w: no partials", ErrInvalidInstrument)
	}
	if len(instr.Partials) > MaxPartials {
		return fmt.Errorf("%w: %d partials, at most %d allowed", ErrInvalidInstrument, len(instr.Partials), MaxPartials)
	}
	for i, p := range instr.Partials {
		switch p.Waveform {
		case SineWave, SquareWave, SawWave, TriangleWave:
		default:
			return fmt.Errorf("%w: partial %d has unknown waveform %q", ErrInvalidInstrument, i, p.Waveform)
		}
		if p.Harmonic < 0 {
			return fmt.Errorf("%w: partial %d has negative harmonic", ErrInvalidInstrument, i)
		}
	}
	switch {
	case instr.Attack < 0 || instr.Release < 0:
		return fmt.Errorf("%w: negative attack or release", ErrInvalidInstrument)
	case instr.Lag < 0 || instr.Lag >= 1:
		return fmt.Errorf("%w: lag %v not in [0,1)", ErrInvalidInstrument, instr.Lag)
	case instr.ModRate < 0 || instr.ModRate > ModRateMax:
		return fmt.Errorf("%w: mod rate %v not in [0,%v]", ErrInvalidInstrument, instr.ModRate, ModRateMax)
	case instr.ModDepth < 0 || instr.ModDepth > ModDepthMax:
		return fmt.Errorf("%w: mod depth %v not in [0,%v]", ErrInvalidInstrument, instr.ModDepth, ModDepthMax)
	case instr.DelayRate < 0 || instr.DelayRate > DelayMax:
		return fmt.Errorf("%w: delay rate %v not in [0,%v]", ErrInvalidInstrument, instr.DelayRate, DelayMax)
	case instr.DelayDecay < 0 || instr.DelayDecay > 1:
		return fmt.Errorf("%w: delay decay %v not in [0,1]", ErrInvalidInstrument, instr.DelayDecay)
	}
	return nil
}
