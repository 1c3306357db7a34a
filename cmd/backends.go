// Package cmd holds the parts of the command line tools that depend on build
// tags: the audio backends and the MIDI driver.
package cmd

import (
	"fmt"
	"sort"

	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/config"
	"github.com/mattfeury/sauce/oto"
)

// Backends opens an audio context by backend name. Backends that need build
// tags register themselves in init.
var Backends = map[string]func(cfg config.Config) (sauce.AudioContext, error){
	config.OtoBackend: func(cfg config.Config) (sauce.AudioContext, error) {
		c, err := oto.NewContext(cfg.SampleRate, cfg.BlockSize)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
	config.NullBackend: func(config.Config) (sauce.AudioContext, error) {
		return sauce.NullContext{}, nil
	},
}

// OpenAudio opens the backend named in the config.
func OpenAudio(cfg config.Config) (sauce.AudioContext, error) {
	open, ok := Backends[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("audio backend %q not available in this build, have %v", cfg.Backend, BackendNames())
	}
	return open(cfg)
}

func BackendNames() []string {
	ret := make([]string, 0, len(Backends))
	for k := range Backends {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
