package dsp_test

import (
	"math"
	"testing"

	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/dsp"
)

func TestVoiceStartsIdle(t *testing.T) {
	v := dsp.NewVoice(sauce.DefaultInstrument(), sauce.SampleRate)
	if v.State() != dsp.Idle {
		t.Fatalf("new voice state = %v, want idle", v.State())
	}
	for i := 0; i < 10; i++ {
		if s := v.Tick(); s != 0 {
			t.Fatalf("idle voice produced %v", s)
		}
	}
}

func TestVoiceEnvelope(t *testing.T) {
	instr := sauce.DefaultInstrument()
	instr.Attack = 0.01
	instr.Release = 0.3
	v := dsp.NewVoice(instr, 1000)
	v.TogglePlayback()
	if v.State() != dsp.Attack {
		t.Fatalf("state after toggle = %v, want attack", v.State())
	}
	for i := 0; i < 12; i++ {
		v.Tick()
	}
	if v.State() != dsp.Sustain {
		t.Fatalf("state after attack = %v, want sustain", v.State())
	}
	if v.Level() != 1 {
		t.Fatalf("sustain level = %v, want 1", v.Level())
	}
	v.TogglePlayback()
	if !v.IsReleasing() {
		t.Fatalf("state after second toggle = %v, want release", v.State())
	}
	v.TogglePlayback()
	if !v.IsReleasing() {
		t.Fatalf("toggling a releasing voice changed its state to %v", v.State())
	}
	for i := 0; i < 400; i++ {
		v.Tick()
	}
	if v.State() != dsp.Idle || v.IsPlaying() {
		t.Fatalf("state after release = %v, want idle", v.State())
	}
}

func TestStartAttackIsContinuous(t *testing.T) {
	instr := sauce.DefaultInstrument()
	v := dsp.NewVoice(instr, sauce.SampleRate)
	v.TogglePlayback()
	for v.State() != dsp.Sustain {
		v.Tick()
	}
	v.TogglePlayback()
	for i := 0; i < 1000; i++ {
		v.Tick()
	}
	before := v.Level()
	if before <= 0 || before >= 1 {
		t.Fatalf("level in the middle of release = %v", before)
	}
	v.StartAttack()
	if v.State() != dsp.Attack {
		t.Fatalf("state after StartAttack = %v, want attack", v.State())
	}
	v.Tick()
	after := v.Level()
	step := 1 / (instr.Attack * sauce.SampleRate)
	if math.Abs(after-before) > step+1e-9 {
		t.Fatalf("level jumped from %v to %v on re-attack, more than one step %v", before, after, step)
	}
	if after < before {
		t.Fatalf("level decreased from %v to %v on re-attack", before, after)
	}
}

func TestStartAttackIgnoredUnlessReleasing(t *testing.T) {
	v := dsp.NewVoice(sauce.DefaultInstrument(), sauce.SampleRate)
	v.StartAttack()
	if v.State() != dsp.Idle {
		t.Fatalf("StartAttack on an idle voice changed state to %v", v.State())
	}
}

func TestSetFreqByOffsetMonotonic(t *testing.T) {
	for name, scale := range sauce.Scales {
		t.Run(name, func(t *testing.T) {
			v := dsp.NewVoice(sauce.DefaultInstrument(), sauce.SampleRate)
			prev := 0.0
			for k := 0; k < sauce.GridSize; k++ {
				v.SetFreqByOffset(scale, k)
				f := v.Frequency()
				if f < prev {
					t.Fatalf("offset %d gave %v Hz, lower than %v Hz of the previous offset", k, f, prev)
				}
				prev = f
			}
		})
	}
}

func TestSetFreqByOffsetConcertPitch(t *testing.T) {
	v := dsp.NewVoice(sauce.DefaultInstrument(), sauce.SampleRate)
	v.SetBaseFreq(sauce.FrequencyForNote(0, 4))
	v.SetFreqByOffset(sauce.Scales["pentatonic"], 0)
	if f := v.Frequency(); math.Abs(f-440) > 1e-9 {
		t.Fatalf("offset 0 frequency = %v, want 440", f)
	}
	v.SetFreqByOffset(sauce.Scales["pentatonic"], 5)
	if f := v.Frequency(); math.Abs(f-880) > 1e-9 {
		t.Fatalf("offset 5 frequency = %v, want 880", f)
	}
}

func TestVoiceParameterClamping(t *testing.T) {
	v := dsp.NewVoice(sauce.DefaultInstrument(), sauce.SampleRate)
	v.SetAmplitude(2)
	v.SetModRate(-1)
	v.SetModDepth(sauce.ModDepthMax * 2)
	v.SetDelayRate(sauce.DelayMax + 100)
	v.SetDelayDecay(1.5)
	want := sauce.Effects{ModRate: 0, ModDepth: sauce.ModDepthMax, DelayRate: sauce.DelayMax, DelayDecay: 1}
	if got := v.Effects(); got != want {
		t.Fatalf("effects = %+v, want %+v", got, want)
	}
	if v.Amplitude() != 1 {
		t.Fatalf("amplitude = %v, want 1", v.Amplitude())
	}
}

func TestVoiceDelayRepeats(t *testing.T) {
	instr := sauce.DefaultInstrument()
	instr.Attack = 0
	instr.Release = 0
	instr.Lag = 0
	instr.DelayRate = 100
	instr.DelayDecay = 0.5
	v := dsp.NewVoice(instr, sauce.SampleRate)
	v.TogglePlayback()
	for i := 0; i < 50; i++ {
		v.Tick()
	}
	v.SetAmplitude(0)
	var energy float64
	for i := 0; i < 200; i++ {
		s := float64(v.Tick())
		energy += s * s
	}
	if energy == 0 {
		t.Fatalf("delay line produced no echo")
	}
}

func TestTriggerAfterReleaseFinished(t *testing.T) {
	instr := sauce.DefaultInstrument()
	instr.Attack = 0.01
	instr.Release = 0.01
	v := dsp.NewVoice(instr, 1000)
	v.TogglePlayback()
	for v.State() != dsp.Sustain {
		v.Tick()
	}
	v.TogglePlayback()
	if !v.IsReleasing() {
		t.Fatalf("state = %v, want release", v.State())
	}
	// the release ends before the voice is triggered again
	for v.State() != dsp.Idle {
		v.Tick()
	}
	v.Trigger()
	if v.State() != dsp.Attack {
		t.Fatalf("state after Trigger on a finished release = %v, want attack", v.State())
	}
	var energy float64
	for i := 0; i < 50; i++ {
		s := float64(v.Tick())
		energy += s * s
	}
	if energy == 0 {
		t.Fatalf("triggered voice is silent")
	}
}

func TestTrigger(t *testing.T) {
	v := dsp.NewVoice(sauce.DefaultInstrument(), sauce.SampleRate)
	v.Trigger()
	if v.State() != dsp.Attack {
		t.Fatalf("state after Trigger on an idle voice = %v, want attack", v.State())
	}
	for v.State() != dsp.Sustain {
		v.Tick()
	}
	v.Trigger()
	if v.State() != dsp.Sustain {
		t.Fatalf("Trigger on a sustaining voice changed state to %v", v.State())
	}
	v.TogglePlayback()
	for i := 0; i < 100; i++ {
		v.Tick()
	}
	before := v.Level()
	v.Trigger()
	if v.State() != dsp.Attack {
		t.Fatalf("state after Trigger on a releasing voice = %v, want attack", v.State())
	}
	v.Tick()
	if v.Level() < before {
		t.Fatalf("level dropped from %v to %v when a releasing voice was triggered", before, v.Level())
	}
}

func TestRestartClearsDelay(t *testing.T) {
	instr := sauce.DefaultInstrument()
	instr.Attack = 0
	instr.Release = 0
	instr.Lag = 0
	instr.DelayRate = 100
	instr.DelayDecay = 1
	v := dsp.NewVoice(instr, sauce.SampleRate)
	v.TogglePlayback()
	for i := 0; i < 50; i++ {
		v.Tick()
	}
	v.TogglePlayback()
	for v.State() != dsp.Idle {
		v.Tick()
	}
	v.SetAmplitude(0)
	v.TogglePlayback()
	for i := 0; i < 300; i++ {
		if s := v.Tick(); s != 0 {
			t.Fatalf("sample %d after restart = %v, want silence from a muted voice", i, s)
		}
	}
}
