package dsp_test

import (
	"testing"

	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/dsp"
)

func instantInstrument() sauce.Instrument {
	instr := sauce.DefaultInstrument()
	instr.Partials = []sauce.Partial{{Waveform: sauce.SquareWave, Harmonic: 1, Gain: 1}}
	instr.Attack = 0
	instr.Release = 0
	instr.Lag = 0
	return instr
}

func TestNodeConnectDisconnect(t *testing.T) {
	mixer := dsp.NewMixer()
	a := dsp.NewVoiceNode(dsp.NewVoice(sauce.DefaultInstrument(), sauce.SampleRate))
	b := dsp.NewFilterNode(dsp.NewFilter(sauce.SampleRate))
	mixer.Connect(a)
	mixer.Connect(b)
	mixer.Connect(a)
	mixer.Connect(mixer)
	if got := len(mixer.Inputs()); got != 2 {
		t.Fatalf("inputs = %d, want 2", got)
	}
	before := mixer.Inputs()
	mixer.Disconnect(a)
	if got := mixer.Inputs(); len(got) != 1 || got[0] != b {
		t.Fatalf("inputs after disconnect = %v", got)
	}
	if len(before) != 2 {
		t.Fatalf("disconnect modified a published input slice")
	}
	mixer.Disconnect(a)
	mixer.DisconnectAll()
	if len(mixer.Inputs()) != 0 {
		t.Fatalf("inputs after DisconnectAll = %v", mixer.Inputs())
	}
}

func TestNodeMixesVoices(t *testing.T) {
	mixer := dsp.NewMixer()
	for i := 0; i < 2; i++ {
		v := dsp.NewVoice(instantInstrument(), sauce.SampleRate)
		v.SetAmplitude(0.25)
		v.TogglePlayback()
		mixer.Connect(dsp.NewVoiceNode(v))
	}
	if got := mixer.Tick(); got != 0.5 {
		t.Fatalf("mixed output = %v, want 0.5", got)
	}
}

func TestIdleVoiceExcludedFromMix(t *testing.T) {
	v := dsp.NewVoice(instantInstrument(), sauce.SampleRate)
	n := dsp.NewVoiceNode(v)
	mixer := dsp.NewMixer()
	mixer.Connect(n)
	v.TogglePlayback()
	if mixer.Tick() == 0 {
		t.Fatalf("playing voice is silent")
	}
	v.TogglePlayback()
	mixer.Tick()
	if v.State() != dsp.Idle {
		t.Fatalf("state after release = %v, want idle", v.State())
	}
	level := v.Level()
	for i := 0; i < 10; i++ {
		if got := mixer.Tick(); got != 0 {
			t.Fatalf("idle voice contributed %v to the mix", got)
		}
	}
	if v.Level() != level {
		t.Fatalf("idle voice was ticked")
	}
}

func TestFilterChain(t *testing.T) {
	looper := dsp.NewLooperNode(dsp.NewLooper(10, 1))
	filter := dsp.NewFilterNode(dsp.NewFilter(sauce.SampleRate))
	filter.Connect(looper)
	if filter.Kind() != dsp.FilterKind || looper.Kind() != dsp.LooperKind {
		t.Fatalf("kinds = %v, %v", filter.Kind(), looper.Kind())
	}
	if got := filter.Tick(); got != 0 {
		t.Fatalf("silent chain produced %v", got)
	}
}
