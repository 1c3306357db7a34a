//go:build portaudio

// Package portaudio plays the rendered audio through the PortAudio blocking
// stream API. It needs cgo and the PortAudio library, so it is only built
// with the portaudio build tag.
package portaudio

import (
	"errors"
	"fmt"

	pa "github.com/gordonklaus/portaudio"
	"github.com/mattfeury/sauce"
)

type (
	Context struct {
		sampleRate int
		frames     int
		device     *pa.DeviceInfo
	}

	Output struct {
		stream *pa.Stream
		out    []float32
	}
)

// NewContext initializes PortAudio and picks the default output device.
// Buffers written to outputs must be frames long.
func NewContext(sampleRate, frames int) (*Context, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("unable to setup portaudio: %w", err)
	}
	d, err := pa.DefaultOutputDevice()
	if err != nil {
		pa.Terminate()
		return nil, fmt.Errorf("no default portaudio output: %w", err)
	}
	return &Context{sampleRate: sampleRate, frames: frames, device: d}, nil
}

// Device returns the name of the output device.
func (c *Context) Device() string { return c.device.Name }

func (c *Context) Output() (sauce.AudioSink, error) {
	o := &Output{out: make([]float32, 2*c.frames)}
	stream, err := pa.OpenDefaultStream(0, 2, float64(c.sampleRate), c.frames, &o.out)
	if err != nil {
		return nil, fmt.Errorf("could not open portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("could not start portaudio stream: %w", err)
	}
	o.stream = stream
	return o, nil
}

func (c *Context) Close() error {
	if err := pa.Terminate(); err != nil {
		return fmt.Errorf("portaudio termination error: %w", err)
	}
	return nil
}

// WriteAudio writes the buffer in stream sized chunks, padding the last one
// with silence.
func (o *Output) WriteAudio(buffer sauce.AudioBuffer) error {
	frames := len(o.out) / 2
	for len(buffer) > 0 {
		chunk := buffer[:min(frames, len(buffer))]
		buffer = buffer[len(chunk):]
		n := len(interleave(o.out[:0], chunk))
		clear(o.out[n:])
		if err := o.stream.Write(); err != nil && !errors.Is(err, pa.OutputUnderflowed) {
			return fmt.Errorf("portaudio write error: %w", err)
		}
	}
	return nil
}

func (o *Output) Close() error {
	err := o.stream.Stop()
	if cerr := o.stream.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("could not close portaudio stream: %w", err)
	}
	return nil
}

func interleave(dst []float32, buffer sauce.AudioBuffer) []float32 {
	for _, frame := range buffer {
		dst = append(dst, frame[0], frame[1])
	}
	return dst
}
