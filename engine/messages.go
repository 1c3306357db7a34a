package engine

// Messages accepted by Engine.HandleMessage, besides TouchEvent.
type (
	ToggleRecordingMsg    struct{}
	UndoMsg               struct{}
	ResetMsg              struct{}
	ToggleModeMsg         struct{}
	ToggleWavRecordingMsg struct{}

	// StatusMsg and ListInstrumentsMsg are answered with an Info alert.
	StatusMsg          struct{}
	ListInstrumentsMsg struct{}

	SelectInstrumentMsg struct {
		Name string
	}

	SelectScaleMsg struct {
		Name string
	}

	SetNoteMsg struct {
		Note int
	}

	SetOctaveMsg struct {
		Octave int
	}

	SaveInstrumentMsg struct {
		Name string
	}

	// SetLayoutMsg tells the size of the touch surface in pixels.
	SetLayoutMsg struct {
		Width, Height float64
	}
)
