package oto

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/mattfeury/sauce"
)

// AppendFloat32LE appends the frames of buffer to dst as interleaved
// little-endian float32 samples, left channel first.
func AppendFloat32LE(dst []byte, buffer sauce.AudioBuffer) []byte {
	for _, frame := range buffer {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(frame[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(frame[1]))
	}
	return dst
}

// bufferDuration returns how long the given number of frames plays. Zero
// lets oto pick its default.
func bufferDuration(sampleRate, frames int) time.Duration {
	if sampleRate <= 0 || frames <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
