package dsp_test

import (
	"testing"

	"github.com/mattfeury/sauce/dsp"
)

func feed(l *dsp.Looper, value float32, n int) (last float32) {
	for i := 0; i < n; i++ {
		last = l.Process(value)
	}
	return last
}

func recordLayer(t *testing.T, l *dsp.Looper, value float32, n int) {
	t.Helper()
	if !l.ToggleRecording() {
		t.Fatalf("ToggleRecording did not start recording")
	}
	feed(l, value, n)
	if l.State() != dsp.LooperRecording {
		t.Fatalf("state while recording = %v", l.State())
	}
	if l.ToggleRecording() {
		t.Fatalf("ToggleRecording did not stop recording")
	}
}

func TestLooperPassesInputWhenIdle(t *testing.T) {
	l := dsp.NewLooper(100, 4)
	if out := l.Process(0.25); out != 0.25 {
		t.Fatalf("output = %v, want 0.25", out)
	}
	if l.State() != dsp.LooperIdle {
		t.Fatalf("state = %v, want idle", l.State())
	}
}

func TestLooperRecordsAndPlays(t *testing.T) {
	l := dsp.NewLooper(100, 4)
	l.ToggleRecording()
	for i := 0; i < 10; i++ {
		if out := l.Process(float32(i + 1)); out != float32(i+1) {
			t.Fatalf("monitoring output %v, want %v", out, i+1)
		}
	}
	l.ToggleRecording()
	for round := 0; round < 2; round++ {
		for i := 0; i < 10; i++ {
			if out := l.Process(0); out != float32(i+1) {
				t.Fatalf("round %d sample %d: output %v, want %v", round, i, out, i+1)
			}
		}
	}
	if l.State() != dsp.LooperPlaying || l.Layers() != 1 {
		t.Fatalf("state = %v with %d layers, want playing with 1", l.State(), l.Layers())
	}
	if out := l.Process(0.5); out != 1.5 {
		t.Fatalf("live input is not mixed with the loop: %v", out)
	}
}

func TestLooperOverdub(t *testing.T) {
	l := dsp.NewLooper(100, 4)
	recordLayer(t, l, 1, 4)
	recordLayer(t, l, 2, 4)
	if out := feed(l, 0, 3); out != 3 {
		t.Fatalf("overdubbed output = %v, want 3", out)
	}
	if l.Layers() != 2 {
		t.Fatalf("layers = %d, want 2", l.Layers())
	}
}

func TestLooperUndoAll(t *testing.T) {
	const n = 3
	l := dsp.NewLooper(100, n)
	for i := 0; i < n; i++ {
		recordLayer(t, l, 1, 8)
	}
	feed(l, 0, 1)
	if l.Layers() != n {
		t.Fatalf("layers = %d, want %d", l.Layers(), n)
	}
	for i := 0; i < n; i++ {
		l.Undo()
	}
	if out := feed(l, 0.5, 1); out != 0.5 {
		t.Fatalf("output after undoing everything = %v, want 0.5", out)
	}
	if l.State() != dsp.LooperIdle || l.Layers() != 0 {
		t.Fatalf("state = %v with %d layers, want idle with 0", l.State(), l.Layers())
	}
	l.Undo()
	feed(l, 0, 1)
	if l.State() != dsp.LooperIdle || l.Layers() != 0 {
		t.Fatalf("undo on an empty looper changed it to %v with %d layers", l.State(), l.Layers())
	}
}

func TestLooperDropsOldestLayer(t *testing.T) {
	l := dsp.NewLooper(100, 2)
	recordLayer(t, l, 1, 5)
	recordLayer(t, l, 2, 5)
	recordLayer(t, l, 4, 5)
	if out := feed(l, 0, 1); out != 6 {
		t.Fatalf("output = %v, want 6 from the two newest layers", out)
	}
	if l.Layers() != 2 {
		t.Fatalf("layers = %d, want 2", l.Layers())
	}
}

func TestLooperFirstLayerIsCapped(t *testing.T) {
	l := dsp.NewLooper(5, 2)
	l.ToggleRecording()
	for i := 0; i < 10; i++ {
		l.Process(float32(i))
	}
	l.ToggleRecording()
	for i := 0; i < 10; i++ {
		if out := l.Process(0); out != float32(i%5) {
			t.Fatalf("sample %d: output %v, want %v", i, out, i%5)
		}
	}
}

func TestLooperReset(t *testing.T) {
	l := dsp.NewLooper(100, 4)
	recordLayer(t, l, 1, 5)
	l.ToggleRecording()
	l.Reset()
	if l.Recording() {
		t.Fatalf("still recording after reset")
	}
	if out := feed(l, 0, 1); out != 0 {
		t.Fatalf("output after reset = %v, want 0", out)
	}
	if l.State() != dsp.LooperIdle || l.Layers() != 0 {
		t.Fatalf("state = %v with %d layers, want idle with 0", l.State(), l.Layers())
	}
	l.Reset()
	feed(l, 0, 1)
	if l.State() != dsp.LooperIdle {
		t.Fatalf("reset of an empty looper changed state to %v", l.State())
	}
}

func TestLooperDiscardsEmptyFirstLayer(t *testing.T) {
	l := dsp.NewLooper(100, 4)
	if !l.ToggleRecording() {
		t.Fatalf("ToggleRecording did not start recording")
	}
	if l.ToggleRecording() {
		t.Fatalf("ToggleRecording did not stop recording")
	}
	// start and commit are applied in the same block: nothing was recorded
	if out := l.Process(0.5); out != 0.5 {
		t.Fatalf("output = %v, want the input 0.5", out)
	}
	if l.State() != dsp.LooperIdle || l.Layers() != 0 {
		t.Fatalf("state %v with %d layers, want idle with none", l.State(), l.Layers())
	}
	recordLayer(t, l, 0.25, 10)
	l.Process(0)
	if l.State() != dsp.LooperPlaying || l.Layers() != 1 {
		t.Fatalf("state %v with %d layers after a real take, want playing with one", l.State(), l.Layers())
	}
}
