//go:build portaudio

package cmd

import (
	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/config"
	"github.com/mattfeury/sauce/portaudio"
)

func init() {
	Backends[config.PortAudioBackend] = func(cfg config.Config) (sauce.AudioContext, error) {
		c, err := portaudio.NewContext(cfg.SampleRate, cfg.BlockSize)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
