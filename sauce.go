// Package sauce contains the data shared by the synthesizer packages: scale
// tables, instrument templates and the audio device interfaces.
package sauce

const (
	// SampleRate is the default output rate, in Hz.
	SampleRate = 44100

	// DelayMax is the longest feedback delay of a voice, in samples.
	DelayMax = SampleRate
	// ModRateMax is the fastest LFO rate, in Hz.
	ModRateMax = 20
	// ModDepthMax is the deepest LFO frequency deviation, in Hz.
	ModDepthMax = 1000

	// DefaultLag is the frequency glide of the built-in instrument.
	DefaultLag = 0.5

	// GridSize is the number of pitch rows on the performance pad.
	GridSize = 12

	// MaxTouches is the number of simultaneous touches the pad tracks. Touch
	// ids are in [0, MaxTouches).
	MaxTouches = 5

	// DefaultNote and DefaultOctave together give A4 = 440 Hz.
	DefaultNote   = 0
	DefaultOctave = 4
)
