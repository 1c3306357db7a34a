package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mattfeury/sauce/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != config.Default() {
		t.Fatalf("config from a missing file differs from the defaults")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sauce.yml")
	data := "scale: blues\noctave: 3\nbackend: \"null\"\nmaxlayers: 4\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SAUCE_OCTAVE", "5")
	t.Setenv("SAUCE_CONTROLLER_WIDTH", "0.25")
	t.Setenv("SAUCE_MAX_LAYERS", "not a number")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scale != "blues" || cfg.Backend != config.NullBackend {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Octave != 5 || cfg.ControllerWidth != 0.25 {
		t.Errorf("environment not applied: octave %d, controller width %v", cfg.Octave, cfg.ControllerWidth)
	}
	if cfg.MaxLayers != 4 {
		t.Errorf("unparseable environment value replaced the file value: %d", cfg.MaxLayers)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sauce.yml")
	if err := os.WriteFile(path, []byte("sampelrate: 48000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatalf("misspelled field was accepted")
	}
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*config.Config){
		"backend":    func(c *config.Config) { c.Backend = "alsa" },
		"scale":      func(c *config.Config) { c.Scale = "lydian" },
		"note":       func(c *config.Config) { c.Note = 12 },
		"block size": func(c *config.Config) { c.BlockSize = 0 },
		"controller": func(c *config.Config) { c.ControllerWidth = 1 },
		"layers":     func(c *config.Config) { c.MaxLayers = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}
