package engine

import (
	"fmt"

	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/dsp"
	"github.com/mattfeury/sauce/preset"
)

// Voices is a fixed arena of voice slots, one per touch id. A slot is filled
// lazily by cloning the template of the registry, and its voice is connected
// to the output node for as long as the slot is filled.
//
// Voices is owned by the input goroutine.
type Voices struct {
	registry   *preset.Registry
	out        *dsp.Node
	sampleRate int
	baseFreq   float64
	alert      func(Alert)

	slots [sauce.MaxTouches]voiceSlot
}

type voiceSlot struct {
	voice      *dsp.Voice
	node       *dsp.Node
	generation uint64
}

// NewVoices returns an empty arena whose voices are connected to out. alert
// is called when a voice cannot be cloned from the template.
func NewVoices(registry *preset.Registry, out *dsp.Node, sampleRate int, alert func(Alert)) *Voices {
	if alert == nil {
		alert = func(Alert) {}
	}
	return &Voices{
		registry:   registry,
		out:        out,
		sampleRate: sampleRate,
		baseFreq:   sauce.FrequencyForNote(sauce.DefaultNote, sauce.DefaultOctave),
		alert:      alert,
	}
}

// Get returns the voice in the slot, or nil if the slot is empty.
func (v *Voices) Get(slot int) *dsp.Voice {
	return v.slots[slot].voice
}

// GetOrCreate returns the voice in the slot, filling the slot first if it is
// empty. A silent voice cloned from a template that has since been replaced
// is replaced too.
func (v *Voices) GetOrCreate(slot int) *dsp.Voice {
	s := &v.slots[slot]
	if s.voice != nil {
		if s.generation == v.registry.Generation() || s.voice.IsPlaying() {
			return s.voice
		}
		v.clear(slot)
	}
	instr, gen := v.registry.Clone()
	if err := instr.Validate(); err != nil {
		v.alert(Alert{
			Name:     "InstrumentFallback",
			Priority: Warning,
			Message:  fmt.Sprintf("Unable to duplicate instrument %q, using %q: %v", instr.Name, sauce.DefaultInstrument().Name, err),
		})
		instr = sauce.DefaultInstrument()
	}
	voice := dsp.NewVoice(instr, v.sampleRate)
	voice.SetBaseFreq(v.baseFreq)
	*s = voiceSlot{voice: voice, node: dsp.NewVoiceNode(voice), generation: gen}
	v.out.Connect(s.node)
	return voice
}

func (v *Voices) clear(slot int) {
	s := &v.slots[slot]
	if s.node != nil {
		v.out.Disconnect(s.node)
	}
	*s = voiceSlot{}
}

// Reset disconnects and forgets every voice.
func (v *Voices) Reset() {
	for i := range v.slots {
		v.clear(i)
	}
}

// ReleaseAll starts the release of every voice that is attacking or
// sustaining.
func (v *Voices) ReleaseAll() {
	for _, s := range v.slots {
		if s.voice != nil && s.voice.IsPlaying() && !s.voice.IsReleasing() {
			s.voice.TogglePlayback()
		}
	}
}

// SetBaseFreq sets the base frequency of every live voice and of the voices
// created later.
func (v *Voices) SetBaseFreq(freq float64) {
	v.baseFreq = freq
	for _, s := range v.slots {
		if s.voice != nil {
			s.voice.SetBaseFreq(freq)
		}
	}
}

// Count returns the number of filled slots.
func (v *Voices) Count() int {
	n := 0
	for _, s := range v.slots {
		if s.voice != nil {
			n++
		}
	}
	return n
}
