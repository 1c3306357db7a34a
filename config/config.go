// Package config holds the runtime configuration of the synthesizer. Values
// come from a YAML file, then from SAUCE_* environment variables, then from
// command line flags applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattfeury/sauce"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration.
type Config struct {
	// Audio output
	SampleRate int    `yaml:"samplerate"`
	BlockSize  int    `yaml:"blocksize"` // frames rendered per device write
	Backend    string `yaml:"backend"`   // oto, portaudio or null

	// Pitch
	Note       int    `yaml:"note"` // 0 = A ... 11 = G#
	Octave     int    `yaml:"octave"`
	Scale      string `yaml:"scale"`
	Instrument string `yaml:"instrument"`

	// Performance pad
	GridSize        int     `yaml:"gridsize"`
	ControllerWidth float64 `yaml:"controllerwidth"` // fraction of the width taken by the buttons

	// Looper
	MaxLoopSeconds float64 `yaml:"maxloopseconds"`
	MaxLayers      int     `yaml:"maxlayers"`

	// Recording of the master output
	RecordDir     string `yaml:"recorddir"`
	RecordPrefix  string `yaml:"recordprefix"`
	RecordPattern string `yaml:"recordpattern"` // file name template

	// User preset directory; empty means the user config directory
	PresetDir string `yaml:"presetdir"`

	// MIDI input
	MIDIInput    string `yaml:"midiinput"` // device name prefix; empty disables MIDI
	MIDIBaseNote int    `yaml:"midibasenote"`
}

var ErrInvalid = errors.New("invalid configuration")

const (
	OtoBackend       = "oto"
	PortAudioBackend = "portaudio"
	NullBackend      = "null"
)

// DefaultRecordPattern names recordings after the prefix and the time the
// recording started.
const DefaultRecordPattern = `{{ .Prefix }}-{{ now | date "20060102-150405" }}.wav`

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		SampleRate:      sauce.SampleRate,
		BlockSize:       512,
		Backend:         OtoBackend,
		Note:            sauce.DefaultNote,
		Octave:          sauce.DefaultOctave,
		Scale:           sauce.DefaultScale,
		Instrument:      "Sine",
		GridSize:        sauce.GridSize,
		ControllerWidth: 0.18,
		MaxLoopSeconds:  30,
		MaxLayers:       16,
		RecordDir:       ".",
		RecordPrefix:    "sauce",
		RecordPattern:   DefaultRecordPattern,
		MIDIBaseNote:    57, // A3
	}
}

// Load returns the defaults overridden by the YAML file at path, if it
// exists, and then by the environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("could not read config: %w", err)
		default:
			dec := yaml.NewDecoder(bytes.NewReader(data))
			dec.KnownFields(true)
			if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
				return cfg, fmt.Errorf("could not parse config %v: %w", path, err)
			}
		}
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// ApplyEnv overrides the configuration with the SAUCE_* environment
// variables that are set.
func (c *Config) ApplyEnv() {
	c.SampleRate = envInt("SAUCE_SAMPLE_RATE", c.SampleRate)
	c.BlockSize = envInt("SAUCE_BLOCK_SIZE", c.BlockSize)
	c.Backend = envStr("SAUCE_BACKEND", c.Backend)
	c.Note = envInt("SAUCE_NOTE", c.Note)
	c.Octave = envInt("SAUCE_OCTAVE", c.Octave)
	c.Scale = envStr("SAUCE_SCALE", c.Scale)
	c.Instrument = envStr("SAUCE_INSTRUMENT", c.Instrument)
	c.GridSize = envInt("SAUCE_GRID_SIZE", c.GridSize)
	c.ControllerWidth = envFloat("SAUCE_CONTROLLER_WIDTH", c.ControllerWidth)
	c.MaxLoopSeconds = envFloat("SAUCE_MAX_LOOP_SECONDS", c.MaxLoopSeconds)
	c.MaxLayers = envInt("SAUCE_MAX_LAYERS", c.MaxLayers)
	c.RecordDir = envStr("SAUCE_RECORD_DIR", c.RecordDir)
	c.RecordPrefix = envStr("SAUCE_RECORD_PREFIX", c.RecordPrefix)
	c.RecordPattern = envStr("SAUCE_RECORD_PATTERN", c.RecordPattern)
	c.PresetDir = envStr("SAUCE_PRESET_DIR", c.PresetDir)
	c.MIDIInput = envStr("SAUCE_MIDI_INPUT", c.MIDIInput)
	c.MIDIBaseNote = envInt("SAUCE_MIDI_BASE_NOTE", c.MIDIBaseNote)
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, c.SampleRate)
	case c.BlockSize < 16 || c.BlockSize > 16384:
		return fmt.Errorf("%w: block size %d", ErrInvalid, c.BlockSize)
	case c.Note < 0 || c.Note >= len(sauce.NoteNames):
		return fmt.Errorf("%w: note %d", ErrInvalid, c.Note)
	case c.Octave < 0 || c.Octave > 8:
		return fmt.Errorf("%w: octave %d", ErrInvalid, c.Octave)
	case c.GridSize < 1:
		return fmt.Errorf("%w: grid size %d", ErrInvalid, c.GridSize)
	case c.ControllerWidth < 0 || c.ControllerWidth >= 1:
		return fmt.Errorf("%w: controller width %v", ErrInvalid, c.ControllerWidth)
	case c.MaxLoopSeconds <= 0:
		return fmt.Errorf("%w: max loop seconds %v", ErrInvalid, c.MaxLoopSeconds)
	case c.MaxLayers < 1:
		return fmt.Errorf("%w: max layers %d", ErrInvalid, c.MaxLayers)
	case c.MIDIBaseNote < 0 || c.MIDIBaseNote > 127:
		return fmt.Errorf("%w: MIDI base note %d", ErrInvalid, c.MIDIBaseNote)
	}
	switch c.Backend {
	case OtoBackend, PortAudioBackend, NullBackend:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if _, err := sauce.ScaleByName(c.Scale); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// MaxLoopSamples returns the length of the longest loop in samples.
func (c *Config) MaxLoopSamples() int {
	return int(c.MaxLoopSeconds * float64(c.SampleRate))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
