package engine

type (
	// TouchAction is the kind of change a TouchEvent reports.
	TouchAction int

	// Pointer is one finger on the screen, in pixels.
	Pointer struct {
		ID       int // stable while the finger is down, in [0, MaxTouches)
		X, Y     float64
		Pressure float64
		Size     float64
	}

	// TouchEvent reports the state of every finger on the screen after one
	// change. ActionIndex is the index in Pointers of the finger that went
	// down or up, for PointerDown and PointerUp.
	TouchEvent struct {
		Action      TouchAction
		ActionIndex int
		Pointers    []Pointer
	}

	// Layout is the geometry of the touch surface: a column of three buttons
	// on the left, ControllerWidth wide as a fraction of the width, and the
	// performance pad filling the rest.
	Layout struct {
		Width, Height   float64
		ControllerWidth float64
	}

	Button int
)

const (
	Down        TouchAction = iota // first finger down
	Move                           // any finger moved
	Up                             // last finger up
	PointerDown                    // another finger down
	PointerUp                      // a finger up, others remain
)

const (
	RecordButton Button = iota
	UndoButton
	ResetButton
	NumButtons
)

func (a TouchAction) String() string {
	switch a {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case PointerDown:
		return "pointerdown"
	case PointerUp:
		return "pointerup"
	}
	return "unknown"
}

func (b Button) String() string {
	switch b {
	case RecordButton:
		return "record"
	case UndoButton:
		return "undo"
	case ResetButton:
		return "reset"
	}
	return "unknown"
}

// ActionID returns the id of the finger that went down or up, or -1 if the
// action index is out of range.
func (e TouchEvent) ActionID() int {
	if e.ActionIndex < 0 || e.ActionIndex >= len(e.Pointers) {
		return -1
	}
	return e.Pointers[e.ActionIndex].ID
}

func (l Layout) controllerPx() float64 { return l.Width * l.ControllerWidth }

// InPad reports whether the point is on the performance pad.
func (l Layout) InPad(x, y float64) bool {
	return x >= l.controllerPx()
}

// PadPosition converts a point on the pad to normalized coordinates: x grows
// to the right from the edge of the buttons, y grows upwards from the bottom.
// Both are clamped to [0, 1].
func (l Layout) PadPosition(x, y float64) (float64, float64) {
	cw := l.controllerPx()
	var px, py float64
	if w := l.Width - cw; w > 0 {
		px = (x - cw) / w
	}
	if l.Height > 0 {
		py = (l.Height - y) / l.Height
	}
	return clamp01(px), clamp01(py)
}

// Button returns the button at the height y, the buttons dividing the height
// into equal bands from the top.
func (l Layout) Button(y float64) Button {
	h := l.Height / float64(NumButtons)
	switch {
	case y <= h:
		return RecordButton
	case y <= 2*h:
		return UndoButton
	default:
		return ResetButton
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
