package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/oto"
)

func TestAppendFloat32LE(t *testing.T) {
	buffer := sauce.AudioBuffer{{0.5, -0.25}, {1, -1}}
	prefix := []byte{0xAA}
	out := oto.AppendFloat32LE(prefix, buffer)
	if len(out) != 1+len(buffer)*2*4 {
		t.Fatalf("got %d bytes, want %d", len(out), 1+len(buffer)*2*4)
	}
	if out[0] != 0xAA {
		t.Fatalf("prefix was overwritten")
	}
	want := []float32{0.5, -0.25, 1, -1}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[1+4*i:]))
		if got != w {
			t.Errorf("sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestAppendFloat32LEReusesCapacity(t *testing.T) {
	buffer := make(sauce.AudioBuffer, 64)
	tmp := make([]byte, 0, 64*8)
	out := oto.AppendFloat32LE(tmp, buffer)
	if &out[0] != &tmp[:1][0] {
		t.Fatalf("buffer with enough capacity was reallocated")
	}
}
