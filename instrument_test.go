package sauce_test

import (
	"errors"
	"testing"

	"github.com/mattfeury/sauce"
)

func TestDefaultInstrumentIsValid(t *testing.T) {
	instr := sauce.DefaultInstrument()
	if err := instr.Validate(); err != nil {
		t.Fatalf("default instrument invalid: %v", err)
	}
}

func TestCopyIsDeep(t *testing.T) {
	instr := sauce.DefaultInstrument()
	c := instr.Copy()
	c.Partials[0].Gain = 0.1
	if instr.Partials[0].Gain != 1 {
		t.Fatalf("copy shares partials with the original")
	}
}

func TestValidateRejects(t *testing.T) {
	for name, mutate := range map[string]func(*sauce.Instrument){
		"no partials":       func(i *sauce.Instrument) { i.Partials = nil },
		"too many":          func(i *sauce.Instrument) { i.Partials = make([]sauce.Partial, sauce.MaxPartials+1) },
		"bad waveform":      func(i *sauce.Instrument) { i.Partials[0].Waveform = "noise" },
		"negative harmonic": func(i *sauce.Instrument) { i.Partials[0].Harmonic = -1 },
		"negative attack":   func(i *sauce.Instrument) { i.Attack = -1 },
		"lag of one":        func(i *sauce.Instrument) { i.Lag = 1 },
		"fast lfo":          func(i *sauce.Instrument) { i.ModRate = sauce.ModRateMax + 1 },
		"deep lfo":          func(i *sauce.Instrument) { i.ModDepth = -1 },
		"long delay":        func(i *sauce.Instrument) { i.DelayRate = sauce.DelayMax + 1 },
		"feedback":          func(i *sauce.Instrument) { i.DelayDecay = 1.5 },
	} {
		instr := sauce.DefaultInstrument()
		mutate(&instr)
		if err := instr.Validate(); !errors.Is(err, sauce.ErrInvalidInstrument) {
			t.Errorf("%s: got %v, want ErrInvalidInstrument", name, err)
		}
	}
}

func TestEffectsRoundTrip(t *testing.T) {
	instr := sauce.DefaultInstrument()
	fx := sauce.Effects{ModRate: 3, ModDepth: 40, DelayRate: 100, DelayDecay: 0.5}
	instr.SetEffects(fx)
	if instr.Effects() != fx {
		t.Fatalf("effects %+v, want %+v", instr.Effects(), fx)
	}
}
