package sauce

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Scale is an ordered sequence of semitone offsets within one octave,
// starting from the root. Entries must be ascending and below 12.
type Scale []int

var ErrUnknownScale = errors.New("unknown scale")

// Scales lists the built-in scales by name.
var Scales = map[string]Scale{
	"pentatonic": {0, 2, 4, 7, 9},
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"blues":      {0, 3, 5, 6, 7, 10},
	"chromatic":  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// DefaultScale is the scale used until the user picks another.
const DefaultScale = "pentatonic"

// NoteNames are the names of the notes the base note can be set to. Note 0 is
// A, so that note 0 in octave 4 is concert pitch.
var NoteNames = [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// ScaleByName returns the built-in scale with the given name, ignoring case.
func ScaleByName(name string) (Scale, error) {
	if s, ok := Scales[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScale, name)
}

// ScaleNames returns the names of the built-in scales in alphabetical order.
func ScaleNames() []string {
	ret := make([]string, 0, len(Scales))
	for k := range Scales {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Semitones returns the distance in semitones of the grid offset from the
// root of the scale. Offsets past the end of the table wrap into the next
// octave, so the result is non-decreasing in offset.
func (s Scale) Semitones(offset int) int {
	if len(s) == 0 {
		return offset
	}
	if offset < 0 {
		offset = 0
	}
	return s[offset%len(s)] + 12*(offset/len(s))
}

// FrequencyForNote returns the equal-tempered frequency of the note (0 = A,
// see NoteNames) in the given octave, with A4 = 440 Hz.
func FrequencyForNote(note, octave int) float64 {
	return 440 * math.Exp2(float64(note)/12+float64(octave-4))
}

// Transpose returns base shifted by the given number of semitones.
func Transpose(base float64, semitones int) float64 {
	return base * math.Exp2(float64(semitones)/12)
}
