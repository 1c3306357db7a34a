package sauce

type (
	// AudioBuffer is a buffer of stereo audio frames, the unit in which the
	// audio loop hands rendered sound to the output device and the recorder.
	AudioBuffer [][2]float32

	// AudioSink receives rendered audio. WriteAudio may block until the
	// device has consumed the previous buffer; it is the only point where the
	// audio loop is allowed to wait.
	AudioSink interface {
		WriteAudio(buffer AudioBuffer) error
		Close() error
	}

	// AudioContext is an opened output device, from which outputs can be
	// created.
	AudioContext interface {
		Output() (AudioSink, error)
		Close() error
	}

	// AudioRecorder receives a mirror of the rendered audio. Mirror is called
	// on the audio goroutine and must never block or allocate; implementations
	// are expected to hand the buffer over to a goroutine of their own.
	AudioRecorder interface {
		Mirror(buffer AudioBuffer)
		Close() error
	}

	// NullContext is an AudioContext that discards everything, paced by
	// nothing. Useful for headless runs and tests.
	NullContext struct{}

	// NullSink is the AudioSink returned by NullContext.
	NullSink struct{}
)

func (NullContext) Output() (AudioSink, error) { return NullSink{}, nil }
func (NullContext) Close() error               { return nil }

func (NullSink) WriteAudio(buffer AudioBuffer) error { return nil }
func (NullSink) Close() error                        { return nil }

// Fill sets every frame of the buffer to the same mono value on both
// channels.
func (b AudioBuffer) Fill(value float32) {
	for i := range b {
		b[i] = [2]float32{value, value}
	}
}
