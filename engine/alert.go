package engine

import "fmt"

type (
	// Alert is a message for the user, e.g. a warning that an instrument
	// could not be loaded. Name identifies the kind of alert so that a
	// front-end can replace an earlier alert of the same name.
	Alert struct {
		Name     string
		Priority AlertPriority
		Message  string
	}

	AlertPriority int
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

func (p AlertPriority) String() string {
	switch p {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("AlertPriority(%d)", int(p))
}

func (a Alert) String() string {
	return fmt.Sprintf("%v: %v", a.Priority, a.Message)
}
