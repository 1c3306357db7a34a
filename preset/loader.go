package preset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/mattfeury/sauce"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
	yaml3 "gopkg.in/yaml.v3"
)

//go:embed presets/*
var builtinFS embed.FS

var (
	ErrNotFound = errors.New("preset not found")
	ErrInvalid  = errors.New("invalid preset")
)

type (
	// Preset is one instrument file, either built in or saved by the user.
	// Presets that fail to parse are kept with Err set, so that loading them
	// reports why.
	Preset struct {
		Instr sauce.Instrument
		User  bool
		File  string
		Err   error
	}

	// Loader finds instrument presets by name. Built-in presets are embedded
	// in the binary; user presets live in the presets subdirectory of Dir and
	// take precedence over built-in presets of the same name.
	Loader struct {
		Dir     string
		presets map[string]Preset
	}
)

// DefaultDir returns the directory user presets are stored under when no
// other directory is configured.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot find user config directory: %w", err)
	}
	return filepath.Join(configDir, "sauce"), nil
}

// NewLoader returns a loader with the presets of dir already read. An empty
// dir means built-in presets only.
func NewLoader(dir string) *Loader {
	l := &Loader{Dir: dir}
	l.Reload()
	return l
}

// Reload reads the presets again, picking up files changed on disk.
func (l *Loader) Reload() {
	l.presets = make(map[string]Preset)
	l.loadFS(builtinFS, false)
	if l.Dir != "" {
		l.loadFS(os.DirFS(l.Dir), true)
	}
}

func (l *Loader) loadFS(fsys fs.FS, user bool) {
	fs.WalkDir(fsys, "presets", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".yml" {
			return nil
		}
		name := filenameToInstrumentName(strings.TrimSuffix(d.Name(), ".yml"))
		p := Preset{User: user, File: path}
		data, err := fs.ReadFile(fsys, path)
		if err == nil {
			err = yaml.UnmarshalStrict(data, &p.Instr)
		}
		if err == nil {
			err = p.Instr.Validate()
		}
		p.Instr.Name = name
		p.Err = err
		l.presets[fold(name)] = p
		return nil
	})
}

// Names returns the names of the presets that can be loaded, sorted.
func (l *Loader) Names() []string {
	ret := make([]string, 0, len(l.presets))
	for _, p := range l.presets {
		if p.Err == nil {
			ret = append(ret, p.Instr.Name)
		}
	}
	sort.Strings(ret)
	return ret
}

// Load returns a copy of the preset with the given name, ignoring case.
func (l *Loader) Load(name string) (sauce.Instrument, error) {
	p, ok := l.presets[fold(name)]
	if !ok {
		return sauce.Instrument{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if p.Err != nil {
		return sauce.Instrument{}, fmt.Errorf("%w: %s: %v", ErrInvalid, p.File, p.Err)
	}
	return p.Instr.Copy(), nil
}

// Save writes the instrument as a user preset named after instr.Name and
// returns the path of the written file.
func (l *Loader) Save(instr sauce.Instrument) (string, error) {
	if l.Dir == "" {
		return "", errors.New("no user preset directory configured")
	}
	if err := instr.Validate(); err != nil {
		return "", err
	}
	filename := instrumentNameToFilename(instr.Name)
	if filename == "" {
		return "", fmt.Errorf("%w: instrument name %q", ErrInvalid, instr.Name)
	}
	dir := filepath.Join(l.Dir, "presets")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create preset directory: %w", err)
	}
	instr = instr.Copy()
	instr.Name = ""
	data, err := yaml3.Marshal(&instr)
	if err != nil {
		return "", fmt.Errorf("could not marshal preset: %w", err)
	}
	path := filepath.Join(dir, filename+".yml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("could not write preset: %w", err)
	}
	l.Reload()
	return path, nil
}

func fold(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func filenameToInstrumentName(filename string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.ReplaceAll(filename, "_", " "))
}

var specialChars = regexp.MustCompile("[^a-zA-Z0-9 _]+")

func instrumentNameToFilename(name string) string {
	name = specialChars.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.ReplaceAll(name, " ", "_")
}
