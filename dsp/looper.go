package dsp

import (
	"sync/atomic"
)

type (
	// Looper records its input into layers and plays them back, summed with
	// the live input. The first committed layer fixes the loop length; later
	// layers are overdubbed in sync with it.
	//
	// ToggleRecording, Undo and Reset are called by the input goroutine. They
	// never touch the layers directly: they queue commands that the audio
	// goroutine applies at the start of the next Process call. Layer buffers
	// are allocated by the input goroutine and recycled through a channel, so
	// Process never allocates.
	Looper struct {
		maxSamples int
		commands   chan looperCommand
		spent      chan []float32

		state  atomic.Int32
		layerN atomic.Int32

		// owned by the input goroutine
		recording bool

		// owned by the audio goroutine
		layers  [][]float32
		current []float32
		length  int
		pos     int
	}

	// LooperState is the published state of a Looper.
	LooperState int32

	looperCommand struct {
		op     looperOp
		buffer []float32
	}

	looperOp int
)

const (
	LooperIdle LooperState = iota
	LooperRecording
	LooperPlaying
)

const (
	startLayer looperOp = iota
	commitLayer
	undoLayer
	resetLayers
)

const looperQueueLength = 64

func (s LooperState) String() string {
	switch s {
	case LooperIdle:
		return "idle"
	case LooperRecording:
		return "recording"
	case LooperPlaying:
		return "playing"
	}
	return "unknown"
}

// NewLooper returns an empty looper whose layers are at most maxSamples long
// and which keeps at most maxLayers layers.
func NewLooper(maxSamples, maxLayers int) *Looper {
	if maxLayers < 1 {
		maxLayers = 1
	}
	return &Looper{
		maxSamples: maxSamples,
		commands:   make(chan looperCommand, looperQueueLength),
		spent:      make(chan []float32, maxLayers+2),
		layers:     make([][]float32, 0, maxLayers),
	}
}

// ToggleRecording starts recording a new layer, or commits the layer being
// recorded. It returns whether the looper is now recording. A first layer
// committed before any sample reached it is discarded and the looper stays
// idle.
func (l *Looper) ToggleRecording() bool {
	if l.recording {
		if l.send(looperCommand{op: commitLayer}) {
			l.recording = false
		}
		return l.recording
	}
	if l.send(looperCommand{op: startLayer, buffer: l.acquire()}) {
		l.recording = true
	}
	return l.recording
}

// Recording reports whether a layer is being recorded, as seen by the input
// goroutine.
func (l *Looper) Recording() bool { return l.recording }

// Undo removes the most recently committed layer. A layer being recorded is
// kept.
func (l *Looper) Undo() { l.send(looperCommand{op: undoLayer}) }

// Reset removes every layer and stops recording.
func (l *Looper) Reset() {
	if l.send(looperCommand{op: resetLayers}) {
		l.recording = false
	}
}

// State returns the state as last published by the audio goroutine.
func (l *Looper) State() LooperState { return LooperState(l.state.Load()) }

// Layers returns the number of committed layers, as last published by the
// audio goroutine.
func (l *Looper) Layers() int { return int(l.layerN.Load()) }

func (l *Looper) send(c looperCommand) bool {
	select {
	case l.commands <- c:
		return true
	default:
		return false
	}
}

func (l *Looper) acquire() []float32 {
	var buf []float32
	select {
	case buf = <-l.spent:
	default:
		buf = make([]float32, l.maxSamples)
	}
	buf = buf[:cap(buf)]
	clear(buf)
	return buf[:0]
}

func (l *Looper) release(buf []float32) {
	if buf == nil {
		return
	}
	select {
	case l.spent <- buf:
	default:
	}
}

// Process mixes the committed layers into the input sample and records the
// input into the layer in progress. Called only by the audio goroutine.
func (l *Looper) Process(in float32) float32 {
	for len(l.commands) > 0 {
		l.apply(<-l.commands)
	}
	out := in
	if l.length > 0 {
		for _, layer := range l.layers {
			out += layer[l.pos]
		}
	}
	if l.current != nil {
		if l.length == 0 {
			if len(l.current) < cap(l.current) {
				l.current = append(l.current, in)
			}
		} else {
			l.current[l.pos] = in
		}
	}
	if l.length > 0 {
		l.pos++
		if l.pos >= l.length {
			l.pos = 0
		}
	}
	return out
}

func (l *Looper) apply(c looperCommand) {
	switch c.op {
	case startLayer:
		l.release(l.current)
		if l.length > 0 {
			l.current = c.buffer[:l.length]
		} else {
			l.current = c.buffer
		}
	case commitLayer:
		if l.current == nil {
			break
		}
		if l.length == 0 {
			if len(l.current) == 0 {
				l.release(l.current)
				l.current = nil
				break
			}
			l.length = len(l.current)
			l.pos = 0
		}
		if len(l.layers) == cap(l.layers) {
			l.release(l.layers[0])
			copy(l.layers, l.layers[1:])
			l.layers = l.layers[:len(l.layers)-1]
		}
		l.layers = append(l.layers, l.current)
		l.current = nil
	case undoLayer:
		if len(l.layers) == 0 {
			break
		}
		last := len(l.layers) - 1
		l.release(l.layers[last])
		l.layers[last] = nil
		l.layers = l.layers[:last]
		if len(l.layers) == 0 && l.current == nil {
			l.length = 0
			l.pos = 0
		}
	case resetLayers:
		for i, layer := range l.layers {
			l.release(layer)
			l.layers[i] = nil
		}
		l.layers = l.layers[:0]
		l.release(l.current)
		l.current = nil
		l.length = 0
		l.pos = 0
	}
	l.publish()
}

func (l *Looper) publish() {
	state := LooperIdle
	switch {
	case l.current != nil:
		state = LooperRecording
	case len(l.layers) > 0:
		state = LooperPlaying
	}
	l.state.Store(int32(state))
	l.layerN.Store(int32(len(l.layers)))
}
