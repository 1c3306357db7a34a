package preset_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/preset"
)

func TestBuiltinPresetsAreValid(t *testing.T) {
	l := preset.NewLoader("")
	names := l.Names()
	if !slices.Contains(names, "Sine") {
		t.Fatalf("built-in presets %v do not include Sine", names)
	}
	if !slices.IsSorted(names) {
		t.Fatalf("names are not sorted: %v", names)
	}
	for _, name := range names {
		instr, err := l.Load(name)
		if err != nil {
			t.Errorf("cannot load built-in preset %q: %v", name, err)
			continue
		}
		if instr.Name != name {
			t.Errorf("preset %q has name %q", name, instr.Name)
		}
	}
}

func TestLoadIgnoresCase(t *testing.T) {
	l := preset.NewLoader("")
	instr, err := l.Load("  wArm pAD ")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if instr.Name != "Warm Pad" {
		t.Fatalf("name = %q, want Warm Pad", instr.Name)
	}
	if len(instr.Partials) != 3 {
		t.Fatalf("partials = %d, want 3", len(instr.Partials))
	}
}

func TestLoadMissing(t *testing.T) {
	l := preset.NewLoader("")
	if _, err := l.Load("no such thing"); !errors.Is(err, preset.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestUserPresets(t *testing.T) {
	dir := t.TempDir()
	presets := filepath.Join(dir, "presets")
	if err := os.MkdirAll(presets, 0755); err != nil {
		t.Fatal(err)
	}
	write := func(name, data string) {
		if err := os.WriteFile(filepath.Join(presets, name), []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("sine.yml", "partials: [{waveform: square, gain: 0.2}]\nattack: 0.1\nrelease: 0.1\n")
	write("broken.yml", "partials: [{waveform: sine, gain: 1}]\nunknownfield: 3\n")
	write("out_of_range.yml", "partials: [{waveform: sine, gain: 1}]\nmodrate: 1000\n")
	l := preset.NewLoader(dir)
	instr, err := l.Load("Sine")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if instr.Partials[0].Waveform != sauce.SquareWave {
		t.Fatalf("user preset did not override the built-in one")
	}
	for _, name := range []string{"broken", "out of range"} {
		if _, err := l.Load(name); !errors.Is(err, preset.ErrInvalid) {
			t.Errorf("Load(%q) error = %v, want ErrInvalid", name, err)
		}
	}
	if slices.Contains(l.Names(), "Broken") {
		t.Fatalf("invalid preset listed in names")
	}
}

func TestSave(t *testing.T) {
	l := preset.NewLoader(t.TempDir())
	instr := sauce.DefaultInstrument()
	instr.Name = "My Sound!"
	instr.ModRate = 4
	instr.DelayRate = 1234
	path, err := l.Save(instr)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "My_Sound.yml" {
		t.Fatalf("saved to %q", path)
	}
	loaded, err := l.Load("my sound")
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if loaded.ModRate != 4 || loaded.DelayRate != 1234 {
		t.Fatalf("loaded preset %+v lost its effects", loaded)
	}
}

func TestSaveWithoutDir(t *testing.T) {
	l := preset.NewLoader("")
	if _, err := l.Save(sauce.DefaultInstrument()); err == nil {
		t.Fatalf("Save without a directory succeeded")
	}
}
