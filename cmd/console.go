package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/engine"
)

// Console parses the text commands typed to the command line tool into
// engine messages. Touches are given in normalized pad coordinates and are
// turned into pixel events on Layout, tracking the fingers that are down.
//
// Commands:
//
//	down ID X Y     put finger ID on the pad
//	move ID X Y     move finger ID
//	up ID           lift finger ID
//	rec, undo, reset, mode, wav
//	instrument NAME, instruments, save NAME
//	scale NAME, note NOTE, octave N
//	status
type Console struct {
	Layout  engine.Layout
	fingers map[int]engine.Pointer
}

var (
	ErrQuit           = errors.New("quit")
	ErrUnknownCommand = errors.New("unknown command")
)

func NewConsole(layout engine.Layout) *Console {
	return &Console{Layout: layout, fingers: map[int]engine.Pointer{}}
}

// Parse returns the message for one line. Empty lines and comments return a
// nil message. "quit" returns ErrQuit.
func (c *Console) Parse(line string) (any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.Join(args, " ")
	switch cmd {
	case "down", "move":
		if len(args) != 3 {
			return nil, fmt.Errorf("usage: %s ID X Y", cmd)
		}
		id, err := c.parseID(args[0])
		if err != nil {
			return nil, err
		}
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if err := errors.Join(errX, errY); err != nil {
			return nil, fmt.Errorf("bad position: %w", err)
		}
		if cmd == "down" {
			return c.down(id, x, y)
		}
		return c.move(id, x, y)
	case "up":
		if len(args) != 1 {
			return nil, errors.New("usage: up ID")
		}
		id, err := c.parseID(args[0])
		if err != nil {
			return nil, err
		}
		return c.up(id)
	case "rec":
		return engine.ToggleRecordingMsg{}, nil
	case "undo":
		return engine.UndoMsg{}, nil
	case "reset":
		return engine.ResetMsg{}, nil
	case "mode":
		return engine.ToggleModeMsg{}, nil
	case "wav":
		return engine.ToggleWavRecordingMsg{}, nil
	case "status":
		return engine.StatusMsg{}, nil
	case "instruments":
		return engine.ListInstrumentsMsg{}, nil
	case "instrument":
		if rest == "" {
			return nil, errors.New("usage: instrument NAME")
		}
		return engine.SelectInstrumentMsg{Name: rest}, nil
	case "save":
		if rest == "" {
			return nil, errors.New("usage: save NAME")
		}
		return engine.SaveInstrumentMsg{Name: rest}, nil
	case "scale":
		if _, err := sauce.ScaleByName(rest); err != nil {
			return nil, fmt.Errorf("%w, have %v", err, sauce.ScaleNames())
		}
		return engine.SelectScaleMsg{Name: rest}, nil
	case "note":
		note, err := parseNote(rest)
		if err != nil {
			return nil, err
		}
		return engine.SetNoteMsg{Note: note}, nil
	case "octave":
		o, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("bad octave: %w", err)
		}
		return engine.SetOctaveMsg{Octave: o}, nil
	case "quit", "exit":
		return nil, ErrQuit
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
}

func (c *Console) parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 || id >= sauce.MaxTouches {
		return 0, fmt.Errorf("finger id %q not in [0, %d)", s, sauce.MaxTouches)
	}
	return id, nil
}

func (c *Console) down(id int, x, y float64) (any, error) {
	if _, ok := c.fingers[id]; ok {
		return nil, fmt.Errorf("finger %d is already down", id)
	}
	action := engine.PointerDown
	if len(c.fingers) == 0 {
		action = engine.Down
	}
	c.fingers[id] = c.pointer(id, x, y)
	return c.event(action, id), nil
}

func (c *Console) move(id int, x, y float64) (any, error) {
	if _, ok := c.fingers[id]; !ok {
		return nil, fmt.Errorf("finger %d is not down", id)
	}
	c.fingers[id] = c.pointer(id, x, y)
	return c.event(engine.Move, id), nil
}

func (c *Console) up(id int) (any, error) {
	if _, ok := c.fingers[id]; !ok {
		return nil, fmt.Errorf("finger %d is not down", id)
	}
	action := engine.PointerUp
	if len(c.fingers) == 1 {
		action = engine.Up
	}
	ev := c.event(action, id)
	delete(c.fingers, id)
	return ev, nil
}

// pointer converts normalized pad coordinates, y growing upwards, to pixels.
func (c *Console) pointer(id int, x, y float64) engine.Pointer {
	l := c.Layout
	cw := l.Width * l.ControllerWidth
	return engine.Pointer{
		ID: id,
		X:  cw + min(max(x, 0), 1)*(l.Width-cw),
		Y:  l.Height * (1 - min(max(y, 0), 1)),
	}
}

func (c *Console) event(action engine.TouchAction, id int) engine.TouchEvent {
	ids := make([]int, 0, len(c.fingers))
	for k := range c.fingers {
		ids = append(ids, k)
	}
	slices.Sort(ids)
	ev := engine.TouchEvent{Action: action}
	for i, k := range ids {
		if k == id {
			ev.ActionIndex = i
		}
		ev.Pointers = append(ev.Pointers, c.fingers[k])
	}
	return ev
}

// parseNote accepts a note number 0..11 or a note name such as "C#".
func parseNote(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	for i, name := range sauce.NoteNames {
		if strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("bad note %q, have %v", s, sauce.NoteNames)
}
