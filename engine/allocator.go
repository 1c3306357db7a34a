package engine

import (
	"fmt"

	"github.com/mattfeury/sauce"
)

type (
	// Mode decides how touches on the pad are routed to voices.
	Mode int

	// ClaimKind tags what a touch has claimed.
	ClaimKind int

	// Claim is what a live touch controls: nothing, a voice slot or a
	// parameter.
	Claim struct {
		Kind  ClaimKind
		Slot  int
		Param *Parameter
	}

	// Looper is the part of the loop recorder driven by the buttons.
	Looper interface {
		ToggleRecording() bool
		Undo()
		Reset()
	}

	// Allocator routes touch events to voices, parameters and the looper
	// buttons, keeping track of what every touch id has claimed. A touch
	// keeps its claim until it lifts, so dragging a parameter across the pad
	// never starts a voice and vice versa.
	//
	// In EditMode all touches share the voice in slot 0, and the parameters
	// can be dragged; at most one touch holds the voice and at most one touch
	// holds each parameter. In PlayMultiMode every touch id plays the voice in
	// its own slot.
	//
	// Allocator is owned by the input goroutine. Touch ids outside
	// [0, MaxTouches) are programming errors and panic.
	Allocator struct {
		Layout   Layout
		GridSize int

		// OnFiveFingers is called, if set, when a fifth finger lands. Events
		// with five fingers are not routed, and record no claims.
		OnFiveFingers func()

		// OnButton is called, if set, after a button has been pressed.
		// recording is the state of the looper after the press.
		OnButton func(b Button, recording bool)

		mode   Mode
		scale  sauce.Scale
		voices *Voices
		looper Looper
		params []*Parameter
		claims [sauce.MaxTouches]Claim
	}
)

const (
	EditMode Mode = iota
	PlayMultiMode
)

const (
	NoClaim ClaimKind = iota
	VoiceClaim
	ParameterClaim
)

func (m Mode) String() string {
	switch m {
	case EditMode:
		return "Edit"
	case PlayMultiMode:
		return "Play Multi"
	}
	return "unknown"
}

func (c Claim) String() string {
	switch c.Kind {
	case VoiceClaim:
		return fmt.Sprintf("voice %d", c.Slot)
	case ParameterClaim:
		return "parameter " + c.Param.Name
	}
	return "none"
}

func NewAllocator(layout Layout, voices *Voices, looper Looper) *Allocator {
	return &Allocator{
		Layout:   layout,
		GridSize: sauce.GridSize,
		scale:    sauce.Scales[sauce.DefaultScale],
		voices:   voices,
		looper:   looper,
	}
}

func (a *Allocator) Mode() Mode { return a.mode }

// SetMode switches the mode, forgetting every voice and claim.
func (a *Allocator) SetMode(m Mode) {
	a.mode = m
	a.voices.Reset()
	a.ResetClaims()
}

func (a *Allocator) Scale() sauce.Scale       { return a.scale }
func (a *Allocator) SetScale(s sauce.Scale)   { a.scale = s }
func (a *Allocator) Parameters() []*Parameter { return a.params }

// SetParameters replaces the draggable parameters. Claims on the old
// parameters are dropped.
func (a *Allocator) SetParameters(params []*Parameter) {
	a.params = params
	for i, c := range a.claims {
		if c.Kind == ParameterClaim {
			a.claims[i] = Claim{}
		}
	}
}

// Claim returns the claim of the touch id.
func (a *Allocator) Claim(id int) Claim {
	checkID(id)
	return a.claims[id]
}

// Claims returns a copy of the claim table.
func (a *Allocator) Claims() [sauce.MaxTouches]Claim { return a.claims }

// ResetClaims forgets every claim.
func (a *Allocator) ResetClaims() {
	a.claims = [sauce.MaxTouches]Claim{}
}

// HandleTouch routes one touch event.
func (a *Allocator) HandleTouch(ev TouchEvent) {
	for _, p := range ev.Pointers {
		checkID(p.ID)
	}
	if ev.Action == Up {
		a.voices.ReleaseAll()
		a.ResetClaims()
		return
	}
	actionID := ev.ActionID()
	if len(ev.Pointers) == sauce.MaxTouches {
		switch {
		case ev.Action == PointerDown && a.OnFiveFingers != nil:
			a.OnFiveFingers()
		case ev.Action == PointerUp && actionID >= 0:
			a.claims[actionID] = Claim{}
		}
		return
	}
	// last pointer first, so that a finger landing while a button is held
	// resolves before the held one
	for i := len(ev.Pointers) - 1; i >= 0; i-- {
		p := ev.Pointers[i]
		if !a.Layout.InPad(p.X, p.Y) {
			if ev.Action == Down || (ev.Action == PointerDown && ev.ActionIndex == i) {
				a.press(a.Layout.Button(p.Y))
			}
			continue
		}
		x, y := a.Layout.PadPosition(p.X, p.Y)
		claimed := a.claims[p.ID]
		switch a.mode {
		case EditMode:
			param := a.optParameter(x, y, claimed)
			if param != nil && (claimed.Kind == NoClaim || claimed.Param == param) {
				a.claims[p.ID] = Claim{Kind: ParameterClaim, Param: param}
				param.Set(x, y)
			} else if claimed.Kind == VoiceClaim || (claimed.Kind == NoClaim && !a.isClaimed(VoiceClaim, 0)) {
				a.claims[p.ID] = Claim{Kind: VoiceClaim, Slot: 0}
				a.touchVoice(0, p.ID, ev, x, y)
			}
		case PlayMultiMode:
			a.claims[p.ID] = Claim{Kind: VoiceClaim, Slot: p.ID}
			a.touchVoice(p.ID, p.ID, ev, x, y)
		}
		if ev.Action == PointerUp && actionID >= 0 {
			a.claims[actionID] = Claim{}
		}
	}
	if ev.Action == PointerUp && actionID >= 0 {
		a.claims[actionID] = Claim{}
	}
	a.check()
}

func (a *Allocator) press(b Button) {
	recording := false
	switch b {
	case RecordButton:
		recording = a.looper.ToggleRecording()
	case UndoButton:
		a.looper.Undo()
	case ResetButton:
		a.looper.Reset()
	}
	if a.OnButton != nil {
		a.OnButton(b, recording)
	}
}

// touchVoice plays the voice in the slot: down and move start or resume it
// at the pitch and amplitude of the position, lifting the touch id releases
// it.
func (a *Allocator) touchVoice(slot, id int, ev TouchEvent, x, y float64) {
	v := a.voices.GetOrCreate(slot)
	switch ev.Action {
	case Down, PointerDown, Move:
		offset := min(int(y*float64(a.GridSize)), a.GridSize-1)
		v.SetFreqByOffset(a.scale, offset)
		v.SetAmplitude(x)
		v.Trigger()
	case PointerUp:
		if ev.ActionID() == id && v.IsPlaying() && !v.IsReleasing() {
			v.TogglePlayback()
		}
	}
}

// optParameter returns the parameter a touch at (x, y) controls: the one it
// has already claimed, or else the nearest unclaimed one within reach.
func (a *Allocator) optParameter(x, y float64, claimed Claim) *Parameter {
	if claimed.Kind == ParameterClaim {
		return claimed.Param
	}
	var best *Parameter
	bestDist := ParameterRadius
	for _, p := range a.params {
		if a.isParamClaimed(p) {
			continue
		}
		if d := p.distance(x, y); d <= bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

func (a *Allocator) isClaimed(kind ClaimKind, slot int) bool {
	for _, c := range a.claims {
		if c.Kind == kind && c.Slot == slot {
			return true
		}
	}
	return false
}

func (a *Allocator) isParamClaimed(p *Parameter) bool {
	for _, c := range a.claims {
		if c.Kind == ParameterClaim && c.Param == p {
			return true
		}
	}
	return false
}

func (a *Allocator) check() {
	for i, c := range a.claims {
		if c.Kind == NoClaim {
			continue
		}
		for j := i + 1; j < len(a.claims); j++ {
			if a.claims[j] == c {
				panic(fmt.Sprintf("engine: touches %d and %d both claim %v", i, j, c))
			}
		}
	}
}

func checkID(id int) {
	if id < 0 || id >= sauce.MaxTouches {
		panic(fmt.Sprintf("engine: touch id %d out of range [0, %d)", id, sauce.MaxTouches))
	}
}
