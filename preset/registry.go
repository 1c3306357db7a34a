package preset

import (
	"sync"

	"github.com/mattfeury/sauce"
)

// Registry holds the instrument template from which new voices are cloned.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.Mutex
	current    sauce.Instrument
	generation uint64
}

// NewRegistry returns a registry holding a copy of instr.
func NewRegistry(instr sauce.Instrument) *Registry {
	return &Registry{current: instr.Copy()}
}

// Current returns a copy of the active template.
func (r *Registry) Current() sauce.Instrument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Copy()
}

// Clone returns an independent deep copy of the template for a new voice,
// together with the generation of the template it was cloned from.
func (r *Registry) Clone() (sauce.Instrument, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Copy(), r.generation
}

// Replace swaps in a new template. Voices cloned from the old template keep
// their state, but are from now on of an older generation: later write backs
// go to the new template.
func (r *Registry) Replace(instr sauce.Instrument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = instr.Copy()
	r.generation++
}

// Generation counts the calls to Replace.
func (r *Registry) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// WriteBack stores the modulation and delay settings of a live voice into the
// template, so that the next voice created inherits them.
func (r *Registry) WriteBack(e sauce.Effects) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.SetEffects(e)
}

// Effects returns the modulation and delay settings of the template.
func (r *Registry) Effects() sauce.Effects {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Effects()
}
