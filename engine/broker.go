package engine

import (
	"time"
)

type (
	// Broker holds the channels between the engine and the goroutines around
	// it. ToEngine carries input messages (TouchEvent, SelectScaleMsg etc.)
	// from any number of producers, e.g. MIDI and a command line, to the
	// input goroutine of the engine. Alerts carries alerts out of the engine;
	// alerts are dropped if nobody reads them.
	//
	// FinishedAudio is never sent to, only closed, when the audio loop has
	// released the device and the recorder. You can wait for it with a
	// timeout:
	//    TimeoutReceive(b.FinishedAudio, 3*time.Second)
	Broker struct {
		ToEngine chan any
		Alerts   chan Alert

		FinishedAudio chan struct{}
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToEngine:      make(chan any, 1024),
		Alerts:        make(chan Alert, 64),
		FinishedAudio: make(chan struct{}),
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
