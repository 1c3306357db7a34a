//go:build cgo

package cmd

import (
	"io"

	"github.com/mattfeury/sauce/engine"
	"github.com/mattfeury/sauce/gomidi"
)

// OpenMIDI connects the MIDI input whose name starts with prefix to the
// engine: its notes are sent to the engine as touch events.
func OpenMIDI(prefix string, tr *gomidi.Translator, e *engine.Engine) (io.Closer, string, error) {
	broker := e.Broker()
	in, err := gomidi.Open(prefix, tr, func(ev engine.TouchEvent) {
		// if the channel is full, just drop the event
		engine.TrySend(broker.ToEngine, any(ev))
	}, func(err error) {
		engine.TrySend(broker.Alerts, engine.Alert{Name: "MIDI", Priority: engine.Warning, Message: err.Error()})
	})
	if err != nil {
		return nil, "", err
	}
	return in, in.Name(), nil
}
