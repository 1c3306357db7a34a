package dsp

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/mattfeury/sauce"
)

type (
	// Sink is the root of the audio graph. It pulls one sample from every
	// connected node per frame, clips the sum and hands whole blocks to the
	// output device and, when one is attached, to a recorder.
	Sink struct {
		root     *Node
		recorder atomic.Pointer[recorderRef]
		meter    *Meter
		mono     []float32
	}

	recorderRef struct {
		rec sauce.AudioRecorder
	}
)

// NewSink returns an empty sink rendering blocks of at most blockSize frames.
func NewSink(blockSize int) *Sink {
	return &Sink{
		root:  NewMixer(),
		meter: NewMeter(blockSize),
		mono:  make([]float32, blockSize),
	}
}

func (s *Sink) Connect(n *Node)    { s.root.Connect(n) }
func (s *Sink) Disconnect(n *Node) { s.root.Disconnect(n) }
func (s *Sink) Inputs() []*Node    { return s.root.Inputs() }

// BlockSize returns the number of frames rendered per block.
func (s *Sink) BlockSize() int { return len(s.mono) }

// Level returns the level of the last rendered block.
func (s *Sink) Level() Level { return s.meter.Level() }

// SetRecorder attaches a recorder that receives a mirror of every rendered
// block, or detaches the current one when rec is nil. It returns the
// previously attached recorder.
func (s *Sink) SetRecorder(rec sauce.AudioRecorder) sauce.AudioRecorder {
	var next *recorderRef
	if rec != nil {
		next = &recorderRef{rec: rec}
	}
	if prev := s.recorder.Swap(next); prev != nil {
		return prev.rec
	}
	return nil
}

// Tick renders one mono frame.
func (s *Sink) Tick() float32 {
	v := s.root.Tick()
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Render fills the buffer with rendered frames, updates the meter and mirrors
// the buffer to the recorder. It does not block or allocate.
func (s *Sink) Render(buffer sauce.AudioBuffer) {
	for i := range buffer {
		v := s.Tick()
		buffer[i] = [2]float32{v, v}
		if i < len(s.mono) {
			s.mono[i] = v
		}
	}
	s.meter.Update(s.mono[:min(len(buffer), len(s.mono))])
	if r := s.recorder.Load(); r != nil {
		r.rec.Mirror(buffer)
	}
}

// Play renders blocks and writes them to out until the context is cancelled
// or out fails. Writing to out is the only place where the loop may wait.
func (s *Sink) Play(ctx context.Context, out sauce.AudioSink) error {
	buffer := make(sauce.AudioBuffer, len(s.mono))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Render(buffer)
		if err := out.WriteAudio(buffer); err != nil {
			return fmt.Errorf("writing audio failed: %w", err)
		}
	}
}
