// Package oto plays the rendered audio with the oto library.
package oto

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
	"github.com/mattfeury/sauce"
)

type (
	OtoContext struct {
		context *oto.Context
	}

	// OtoOutput feeds a player through a pipe, so WriteAudio blocks until the
	// player has taken the previous buffer.
	OtoOutput struct {
		player    *oto.Player
		writer    *io.PipeWriter
		tmpBuffer []byte
	}
)

// NewContext opens the default output device. Only one context can be opened
// per process.
func NewContext(sampleRate, bufferFrames int) (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferDuration(sampleRate, bufferFrames),
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

func (c *OtoContext) Output() (sauce.AudioSink, error) {
	if err := c.context.Err(); err != nil {
		return nil, fmt.Errorf("oto context failed: %w", err)
	}
	reader, writer := io.Pipe()
	player := c.context.NewPlayer(reader)
	player.Play()
	return &OtoOutput{player: player, writer: writer}, nil
}

// Close suspends the device. oto cannot release a context once created.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *OtoOutput) WriteAudio(buffer sauce.AudioBuffer) error {
	// reuse the capacity of tmpBuffer from the previous call
	o.tmpBuffer = AppendFloat32LE(o.tmpBuffer[:0], buffer)
	if _, err := o.writer.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	if err := o.player.Err(); err != nil {
		return fmt.Errorf("oto player failed: %w", err)
	}
	return nil
}

func (o *OtoOutput) Close() error {
	o.writer.Close()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
