// Package recorder writes the master output of the synthesizer into WAV
// files.
package recorder

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mattfeury/sauce"
)

type (
	// Options tell where a recording is written and in which format.
	Options struct {
		Dir        string
		Prefix     string
		Pattern    string // text/template with sprig functions; see FileName
		SampleRate int
		BlockSize  int // frames per mirrored block
		Queue      int // blocks that can wait for the writer before blocks are dropped
	}

	// Recorder is one WAV file being written. Mirror hands blocks over to a
	// writer goroutine without blocking; when the writer falls behind, blocks
	// are dropped and counted.
	Recorder struct {
		path    string
		file    *os.File
		enc     *wav.Encoder
		intBuf  *audio.IntBuffer
		data    []int
		blocks  chan *block
		free    chan *block
		stop    chan struct{}
		done    chan struct{}
		dropped atomic.Int64
		once    sync.Once
		err     error
	}

	block struct {
		frames sauce.AudioBuffer
	}
)

const bitDepth = 16

var ErrNotRecording = errors.New("not recording")

// Start creates a new file named by the options and starts the writer.
func Start(opts Options) (*Recorder, error) {
	if opts.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid block size %d", opts.BlockSize)
	}
	if opts.Queue <= 0 {
		opts.Queue = 64
	}
	name, err := FileName(opts.Pattern, opts.Prefix)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create recording directory: %w", err)
	}
	f, path, err := create(opts.Dir, name)
	if err != nil {
		return nil, err
	}
	r := &Recorder{
		path:   path,
		file:   f,
		enc:    wav.NewEncoder(f, opts.SampleRate, bitDepth, 2, 1),
		data:   make([]int, opts.BlockSize*2),
		blocks: make(chan *block, opts.Queue),
		free:   make(chan *block, opts.Queue),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	r.intBuf = &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: opts.SampleRate},
		SourceBitDepth: bitDepth,
	}
	for i := 0; i < opts.Queue; i++ {
		r.free <- &block{frames: make(sauce.AudioBuffer, 0, opts.BlockSize)}
	}
	go r.run()
	return r, nil
}

// create opens a new file, adding a counter to the name if a file with the
// same name already exists.
func create(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; i < 100; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("could not create recording: %w", err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("could not create recording: too many files named %v", name)
}

// FileName executes the pattern to name a new recording. The pattern sees
// .Prefix and every sprig function, e.g. `{{ now | date "20060102" }}`. The
// result always ends in .wav and never contains a directory.
func FileName(pattern, prefix string) (string, error) {
	if pattern == "" {
		pattern = "{{ .Prefix }}.wav"
	}
	tmpl, err := template.New("filename").Funcs(sprig.TxtFuncMap()).Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid recording file name pattern: %w", err)
	}
	var b bytes.Buffer
	if err := tmpl.Execute(&b, struct{ Prefix string }{prefix}); err != nil {
		return "", fmt.Errorf("invalid recording file name pattern: %w", err)
	}
	name := filepath.Base(strings.TrimSpace(b.String()))
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("recording file name pattern %q gives an empty name", pattern)
	}
	if !strings.EqualFold(filepath.Ext(name), ".wav") {
		name += ".wav"
	}
	return name, nil
}

// Path returns the path of the file being written.
func (r *Recorder) Path() string { return r.path }

// Dropped returns the number of blocks lost because the writer was behind.
// Once the writer has finished, blocks mirrored too late to be written are
// counted as well.
func (r *Recorder) Dropped() int64 {
	n := r.dropped.Load()
	select {
	case <-r.done:
		n += int64(len(r.blocks))
	default:
	}
	return n
}

// Mirror copies the buffer for the writer. It never blocks or allocates.
func (r *Recorder) Mirror(buffer sauce.AudioBuffer) {
	var b *block
	select {
	case b = <-r.free:
	default:
		r.dropped.Add(1)
		return
	}
	n := min(len(buffer), cap(b.frames))
	b.frames = append(b.frames[:0], buffer[:n]...)
	select {
	case r.blocks <- b:
	default:
		r.dropped.Add(1)
		r.free <- b
	}
}

// Close writes the blocks still queued, finalizes the WAV header and closes
// the file. Calling Close more than once returns the same result. Blocks
// mirrored after Close are not written and show up in Dropped.
func (r *Recorder) Close() error {
	r.once.Do(func() { close(r.stop) })
	<-r.done
	return r.err
}

func (r *Recorder) run() {
	defer close(r.done)
	var err error
	write := func(b *block) {
		if err == nil {
			err = r.write(b.frames)
		}
		b.frames = b.frames[:0]
		r.free <- b
	}
loop:
	for {
		select {
		case b := <-r.blocks:
			write(b)
		case <-r.stop:
			break loop
		}
	}
	for len(r.blocks) > 0 {
		write(<-r.blocks)
	}
	if cerr := r.enc.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("could not finalize recording: %w", cerr)
	}
	if cerr := r.file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("could not close recording: %w", cerr)
	}
	r.err = err
}

func (r *Recorder) write(frames sauce.AudioBuffer) error {
	data := r.data[:len(frames)*2]
	for i, f := range frames {
		data[2*i] = toInt16(f[0])
		data[2*i+1] = toInt16(f[1])
	}
	r.intBuf.Data = data
	if err := r.enc.Write(r.intBuf); err != nil {
		return fmt.Errorf("could not write recording: %w", err)
	}
	return nil
}

func toInt16(v float32) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * 32767)
}
