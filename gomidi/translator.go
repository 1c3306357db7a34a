// Package gomidi turns MIDI keyboard input into touch events, so that a
// keyboard can play the pad: every held key is a finger.
package gomidi

import (
	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/engine"
	"gitlab.com/gomidi/midi/v2"
)

// MaxKeys is the number of keys held at once that are turned into fingers.
// One less than the touch limit, so that a chord never triggers the five
// finger gesture.
const MaxKeys = sauce.MaxTouches - 1

// Translator maps note on and note off messages to touch events on the pad
// of Layout. The key BaseNote is the bottom row of the pad, each semitone up
// is one row up, and the velocity is the horizontal position.
//
// Translator is not safe for concurrent use.
type Translator struct {
	Layout   engine.Layout
	BaseNote int
	GridSize int

	keys [MaxKeys]heldKey
}

type heldKey struct {
	down     bool
	key      uint8
	velocity uint8
}

func NewTranslator(layout engine.Layout, baseNote, gridSize int) *Translator {
	return &Translator{Layout: layout, BaseNote: baseNote, GridSize: gridSize}
}

// Translate returns the touch event for the message. ok is false for
// messages that are not notes, for keys pressed while MaxKeys are held, and
// for releases of keys that were never pressed.
func (t *Translator) Translate(msg midi.Message) (ev engine.TouchEvent, ok bool) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
		return t.press(key, velocity)
	case msg.GetNoteOn(&channel, &key, &velocity), msg.GetNoteOff(&channel, &key, &velocity):
		return t.release(key)
	}
	return engine.TouchEvent{}, false
}

// Held returns the number of keys currently turned into fingers.
func (t *Translator) Held() int {
	n := 0
	for _, k := range t.keys {
		if k.down {
			n++
		}
	}
	return n
}

// Reset forgets the held keys, returning the event that lifts them, if any.
func (t *Translator) Reset() (ev engine.TouchEvent, ok bool) {
	if t.Held() == 0 {
		return engine.TouchEvent{}, false
	}
	ev = engine.TouchEvent{Action: engine.Up, Pointers: t.pointers()}
	t.keys = [MaxKeys]heldKey{}
	return ev, true
}

func (t *Translator) press(key, velocity uint8) (engine.TouchEvent, bool) {
	if t.slot(key) >= 0 {
		return engine.TouchEvent{}, false
	}
	id := -1
	for i, k := range t.keys {
		if !k.down {
			id = i
			break
		}
	}
	if id < 0 {
		return engine.TouchEvent{}, false
	}
	action := engine.PointerDown
	if t.Held() == 0 {
		action = engine.Down
	}
	t.keys[id] = heldKey{down: true, key: key, velocity: velocity}
	pointers := t.pointers()
	return engine.TouchEvent{Action: action, ActionIndex: indexOf(pointers, id), Pointers: pointers}, true
}

func (t *Translator) release(key uint8) (engine.TouchEvent, bool) {
	id := t.slot(key)
	if id < 0 {
		return engine.TouchEvent{}, false
	}
	action := engine.PointerUp
	if t.Held() == 1 {
		action = engine.Up
	}
	pointers := t.pointers()
	t.keys[id] = heldKey{}
	return engine.TouchEvent{Action: action, ActionIndex: indexOf(pointers, id), Pointers: pointers}, true
}

// slot returns the id of the finger holding key, or -1.
func (t *Translator) slot(key uint8) int {
	for i, k := range t.keys {
		if k.down && k.key == key {
			return i
		}
	}
	return -1
}

func (t *Translator) pointers() []engine.Pointer {
	ret := make([]engine.Pointer, 0, MaxKeys)
	for i, k := range t.keys {
		if !k.down {
			continue
		}
		x, y := t.position(k)
		ret = append(ret, engine.Pointer{ID: i, X: x, Y: y, Pressure: float64(k.velocity) / 127})
	}
	return ret
}

// position returns the pixel position of the key on the pad, in the middle
// of its row.
func (t *Translator) position(k heldKey) (float64, float64) {
	rows := max(t.GridSize, 1)
	row := min(max(int(k.key)-t.BaseNote, 0), rows-1)
	cw := t.Layout.Width * t.Layout.ControllerWidth
	x := cw + float64(k.velocity)/127*(t.Layout.Width-cw)
	y := t.Layout.Height * (1 - (float64(row)+0.5)/float64(rows))
	return x, y
}

func indexOf(pointers []engine.Pointer, id int) int {
	for i, p := range pointers {
		if p.ID == id {
			return i
		}
	}
	return -1
}
