//go:build cgo

package gomidi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattfeury/sauce/engine"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Input is an open MIDI input port whose notes are sent as touch events.
type Input struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
}

var ErrNoDevice = errors.New("no MIDI input found")

// InputNames lists the names of the MIDI inputs.
func InputNames() ([]string, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("could not open MIDI driver: %w", err)
	}
	defer driver.Close()
	ins, err := driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("could not list MIDI inputs: %w", err)
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret, nil
}

// Open listens to the first MIDI input whose name starts with prefix, or to
// the first input when prefix is empty. Touch events are handed to send from
// the listener goroutine; send must not block.
func Open(prefix string, tr *Translator, send func(engine.TouchEvent), onError func(error)) (*Input, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("could not open MIDI driver: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("could not list MIDI inputs: %w", err)
	}
	var found drivers.In
	for _, in := range ins {
		if strings.HasPrefix(in.String(), prefix) {
			found = in
			break
		}
	}
	if found == nil {
		driver.Close()
		return nil, fmt.Errorf("%w: no input name starts with %q", ErrNoDevice, prefix)
	}
	if err := found.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(found, func(msg midi.Message, timestampms int32) {
		if ev, ok := tr.Translate(msg); ok {
			send(ev)
		}
	}, midi.HandleError(func(err error) {
		if onError != nil {
			onError(fmt.Errorf("MIDI input %v: %w", found, err))
		}
	}))
	if err != nil {
		found.Close()
		driver.Close()
		return nil, fmt.Errorf("could not listen to MIDI input: %w", err)
	}
	return &Input{driver: driver, in: found, stop: stop}, nil
}

// Name returns the name of the input port.
func (i *Input) Name() string { return i.in.String() }

func (i *Input) Close() error {
	i.stop()
	err := i.in.Close()
	if derr := i.driver.Close(); err == nil {
		err = derr
	}
	return err
}
