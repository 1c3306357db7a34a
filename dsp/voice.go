package dsp

import (
	"math"
	"sync/atomic"

	"github.com/mattfeury/sauce"
)

type (
	// Voice is one sounding oscillator: the partials of an instrument summed
	// together, shaped by an envelope, modulated by an LFO and fed through a
	// feedback delay line.
	//
	// Parameter setters are called by the input goroutine and Tick by the
	// audio goroutine. Every field is written by only one of them, except the
	// envelope state, which both advance with compare-and-swap.
	Voice struct {
		sampleRate float64

		// written by the input goroutine
		baseFreq   atomicFloat
		semitones  atomic.Int32
		amplitude  atomicFloat
		modRate    atomicFloat
		modDepth   atomicFloat
		delayRate  atomic.Int32
		delayDecay atomicFloat
		restart    atomic.Bool

		state     atomic.Int32
		published atomicFloat // envelope level, for observers

		// owned by the audio goroutine
		partials    [sauce.MaxPartials]partial
		numPartials int
		phases      [sauce.MaxPartials]float64
		lfoPhase    float64
		freq        float64
		level       float64
		attackStep  float64
		releaseStep float64
		glide       float64
		delay       []float32
		delayPos    int
	}

	// EnvelopeState is the stage of the amplitude envelope of a voice.
	EnvelopeState int32

	partial struct {
		table    int
		harmonic float64
		gain     float64
		phase    float64
	}
)

const (
	Idle EnvelopeState = iota
	Attack
	Sustain
	Release
)

func (s EnvelopeState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attack:
		return "attack"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	}
	return "unknown"
}

// NewVoice creates a silent voice from the instrument template. The template
// is copied; later changes to it do not affect the voice.
func NewVoice(instr sauce.Instrument, sampleRate int) *Voice {
	v := &Voice{
		sampleRate: float64(sampleRate),
		delay:      make([]float32, sauce.DelayMax+1),
	}
	for i, p := range instr.Partials {
		if i >= sauce.MaxPartials {
			break
		}
		h := p.Harmonic
		if h == 0 {
			h = 1
		}
		v.partials[i] = partial{table: tableFor(p.Waveform), harmonic: h, gain: p.Gain, phase: p.Phase - math.Floor(p.Phase)}
		v.numPartials++
	}
	v.attackStep = envelopeStep(instr.Attack, v.sampleRate)
	v.releaseStep = envelopeStep(instr.Release, v.sampleRate)
	if instr.Lag > 0 {
		// the lag is mapped to a glide time constant of at most 100 ms
		v.glide = 1 - math.Exp(-1/(clamp(instr.Lag, 0, 1)*0.1*v.sampleRate))
	} else {
		v.glide = 1
	}
	v.baseFreq.Store(sauce.FrequencyForNote(sauce.DefaultNote, sauce.DefaultOctave))
	v.amplitude.Store(1)
	v.SetEffects(instr.Effects())
	v.freq = v.Frequency()
	return v
}

func envelopeStep(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1 / (seconds * sampleRate)
}

// TogglePlayback starts a silent voice from the beginning of its attack, or
// releases a voice that is attacking or sustaining. A releasing voice is left
// as it is.
func (v *Voice) TogglePlayback() {
	for {
		s := EnvelopeState(v.state.Load())
		switch s {
		case Idle:
			v.restart.Store(true)
			if v.state.CompareAndSwap(int32(Idle), int32(Attack)) {
				return
			}
		case Attack, Sustain:
			if v.state.CompareAndSwap(int32(s), int32(Release)) {
				return
			}
		default:
			return
		}
	}
}

// StartAttack moves a releasing voice back into its attack, continuing from
// its current level and phase so that the output does not jump.
func (v *Voice) StartAttack() {
	v.state.CompareAndSwap(int32(Release), int32(Attack))
}

// Trigger makes the voice sound: a silent voice starts from the beginning of
// its attack and a releasing one goes back into its attack. A voice that is
// already attacking or sustaining is left as it is.
func (v *Voice) Trigger() {
	for {
		switch EnvelopeState(v.state.Load()) {
		case Idle:
			v.restart.Store(true)
			if v.state.CompareAndSwap(int32(Idle), int32(Attack)) {
				return
			}
		case Release:
			if v.state.CompareAndSwap(int32(Release), int32(Attack)) {
				return
			}
		default:
			return
		}
	}
}

// State returns the current envelope stage.
func (v *Voice) State() EnvelopeState { return EnvelopeState(v.state.Load()) }

// IsPlaying reports whether the voice is producing sound.
func (v *Voice) IsPlaying() bool { return v.State() != Idle }

// IsReleasing reports whether the voice is fading out.
func (v *Voice) IsReleasing() bool { return v.State() == Release }

// Level returns the envelope level reached on the last tick, in [0, 1].
func (v *Voice) Level() float64 { return v.published.Load() }

// SetBaseFreq sets the frequency of grid offset 0.
func (v *Voice) SetBaseFreq(freq float64) { v.baseFreq.Store(freq) }

// BaseFreq returns the frequency of grid offset 0.
func (v *Voice) BaseFreq() float64 { return v.baseFreq.Load() }

// SetFreqByOffset sets the pitch of the voice to the grid offset, mapped
// through the scale on top of the base frequency.
func (v *Voice) SetFreqByOffset(scale sauce.Scale, offset int) {
	v.semitones.Store(int32(scale.Semitones(offset)))
}

// Frequency returns the frequency the voice is gliding towards, in Hz.
func (v *Voice) Frequency() float64 {
	return sauce.Transpose(v.baseFreq.Load(), int(v.semitones.Load()))
}

// SetAmplitude sets the gain of the voice, clamped to [0, 1].
func (v *Voice) SetAmplitude(amp float64) { v.amplitude.Store(clamp(amp, 0, 1)) }

func (v *Voice) Amplitude() float64 { return v.amplitude.Load() }

// SetModRate sets the LFO rate in Hz, clamped to [0, ModRateMax].
func (v *Voice) SetModRate(rate float64) {
	v.modRate.Store(clamp(rate, 0, sauce.ModRateMax))
}

// SetModDepth sets the LFO frequency deviation in Hz, clamped to
// [0, ModDepthMax].
func (v *Voice) SetModDepth(depth float64) {
	v.modDepth.Store(clamp(depth, 0, sauce.ModDepthMax))
}

// SetDelayRate sets the delay length in samples, clamped to [0, DelayMax].
// Zero disables the delay.
func (v *Voice) SetDelayRate(samples int) {
	v.delayRate.Store(int32(min(max(samples, 0), sauce.DelayMax)))
}

// SetDelayDecay sets the delay feedback, clamped to [0, 1].
func (v *Voice) SetDelayDecay(decay float64) {
	v.delayDecay.Store(clamp(decay, 0, 1))
}

func (v *Voice) ModRate() float64    { return v.modRate.Load() }
func (v *Voice) ModDepth() float64   { return v.modDepth.Load() }
func (v *Voice) DelayRate() int      { return int(v.delayRate.Load()) }
func (v *Voice) DelayDecay() float64 { return v.delayDecay.Load() }

// SetEffects sets all modulation and delay parameters at once.
func (v *Voice) SetEffects(e sauce.Effects) {
	v.SetModRate(e.ModRate)
	v.SetModDepth(e.ModDepth)
	v.SetDelayRate(e.DelayRate)
	v.SetDelayDecay(e.DelayDecay)
}

// Effects returns the current modulation and delay parameters.
func (v *Voice) Effects() sauce.Effects {
	return sauce.Effects{
		ModRate:    v.ModRate(),
		ModDepth:   v.ModDepth(),
		DelayRate:  v.DelayRate(),
		DelayDecay: v.DelayDecay(),
	}
}

// Tick renders one sample. It is called only by the audio goroutine and
// neither blocks nor allocates.
func (v *Voice) Tick() float32 {
	state := EnvelopeState(v.state.Load())
	if v.restart.Load() && v.restart.CompareAndSwap(true, false) {
		for i := 0; i < v.numPartials; i++ {
			v.phases[i] = v.partials[i].phase
		}
		v.lfoPhase = 0
		v.level = 0
		v.freq = v.Frequency()
		clear(v.delay)
		v.delayPos = 0
	}
	switch state {
	case Idle:
		v.level = 0
		v.published.Store(0)
		return 0
	case Attack:
		v.level += v.attackStep
		if v.level >= 1 {
			v.level = 1
			v.state.CompareAndSwap(int32(Attack), int32(Sustain))
		}
	case Sustain:
		v.level = 1
	case Release:
		v.level -= v.releaseStep
		if v.level <= 0 {
			v.level = 0
			v.state.CompareAndSwap(int32(Release), int32(Idle))
		}
	}
	v.published.Store(v.level)

	v.freq += (v.Frequency() - v.freq) * v.glide
	freq := v.freq
	if rate, depth := v.modRate.Load(), v.modDepth.Load(); rate > 0 && depth > 0 {
		freq += depth * readTable(sineTable, v.lfoPhase)
		v.lfoPhase += rate / v.sampleRate
		v.lfoPhase -= math.Floor(v.lfoPhase)
		if freq < 0 {
			freq = 0
		}
	}
	inc := freq / v.sampleRate
	var sum float64
	for i := 0; i < v.numPartials; i++ {
		p := &v.partials[i]
		sum += p.gain * readTable(p.table, v.phases[i])
		ph := v.phases[i] + inc*p.harmonic
		v.phases[i] = ph - math.Floor(ph)
	}
	out := sum * v.amplitude.Load() * v.level

	if d := int(v.delayRate.Load()); d > 0 {
		i := v.delayPos - d
		if i < 0 {
			i += len(v.delay)
		}
		out += v.delayDecay.Load() * float64(v.delay[i])
	}
	v.delay[v.delayPos] = float32(out)
	v.delayPos++
	if v.delayPos >= len(v.delay) {
		v.delayPos = 0
	}
	return float32(out)
}
