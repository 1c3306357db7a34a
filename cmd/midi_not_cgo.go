//go:build !cgo

package cmd

import (
	"errors"
	"io"

	"github.com/mattfeury/sauce/engine"
	"github.com/mattfeury/sauce/gomidi"
)

// OpenMIDI fails: with no cgo, there is no MIDI driver.
func OpenMIDI(prefix string, tr *gomidi.Translator, e *engine.Engine) (io.Closer, string, error) {
	return nil, "", errors.New("MIDI input needs a build with cgo")
}
