// Package engine connects touch input to the audio graph: it routes touches
// to voices and parameters, and runs the audio loop that renders the graph to
// the output device.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattfeury/sauce"
	"github.com/mattfeury/sauce/config"
	"github.com/mattfeury/sauce/dsp"
	"github.com/mattfeury/sauce/preset"
	"github.com/mattfeury/sauce/recorder"
)

// Engine is the synthesizer: an audio graph of voices feeding a looper, a
// filter and the output, and the allocator that maps touches onto it.
//
// Run is the audio goroutine. Every other method, except Level, Alerts and
// LastRecording, belongs to the input goroutine and must not be called
// concurrently; RunInput runs such a goroutine over the ToEngine channel of
// the broker.
type Engine struct {
	cfg      config.Config
	audio    sauce.AudioContext
	loader   *preset.Loader
	registry *preset.Registry
	broker   *Broker

	sink      *dsp.Sink
	looper    *dsp.Looper
	filter    *dsp.Filter
	voices    *Voices
	allocator *Allocator

	note, octave int
	scaleName    string

	recMu         sync.Mutex
	rec           *recorder.Recorder
	lastRecording string

	running atomic.Bool
	closed  atomic.Bool
}

var ErrClosed = errors.New("engine closed")

// New builds the engine and its audio graph. The audio context is owned by
// the engine from now on and is closed when Run returns. If the configured
// instrument cannot be loaded, the default instrument is used and a warning
// is posted.
func New(cfg config.Config, audio sauce.AudioContext, loader *preset.Loader) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scale, err := sauce.ScaleByName(cfg.Scale)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		audio:     audio,
		loader:    loader,
		broker:    NewBroker(),
		note:      cfg.Note,
		octave:    cfg.Octave,
		scaleName: cfg.Scale,
	}
	e.registry = preset.NewRegistry(e.loadInstrument(cfg.Instrument))

	e.looper = dsp.NewLooper(cfg.MaxLoopSamples(), cfg.MaxLayers)
	e.filter = dsp.NewFilter(cfg.SampleRate)
	looperNode := dsp.NewLooperNode(e.looper)
	filterNode := dsp.NewFilterNode(e.filter)
	filterNode.Connect(looperNode)
	e.sink = dsp.NewSink(cfg.BlockSize)
	e.sink.Connect(filterNode)

	e.voices = NewVoices(e.registry, looperNode, cfg.SampleRate, e.alert)
	e.voices.SetBaseFreq(sauce.FrequencyForNote(e.note, e.octave))

	layout := Layout{Width: 1, Height: 1, ControllerWidth: cfg.ControllerWidth}
	e.allocator = NewAllocator(layout, e.voices, e.looper)
	e.allocator.GridSize = cfg.GridSize
	e.allocator.SetScale(scale)
	e.allocator.OnButton = e.buttonPressed
	e.allocator.SetParameters(e.newParameters())
	return e, nil
}

func (e *Engine) loadInstrument(name string) sauce.Instrument {
	if e.loader != nil {
		instr, err := e.loader.Load(name)
		if err == nil {
			return instr
		}
		e.alert(Alert{Name: "InstrumentFallback", Priority: Warning, Message: fmt.Sprintf("Bad instrument %q, using the default: %v", name, err)})
	}
	return sauce.DefaultInstrument()
}

// newParameters creates the filter, LFO and delay handles, placed at the
// current values. LFO and delay changes go to the shared voice and are
// written back into the template.
func (e *Engine) newParameters() []*Parameter {
	fx := e.voices.GetOrCreate(0).Effects()
	eq := NewParameter("filter", math.Sqrt(e.filter.Frequency()), math.Sqrt(e.filter.Q()), func(x, y float64) {
		e.filter.SetFrequency(x * x)
		e.filter.SetQ(y * y)
	})
	lfo := NewParameter("lfo", fx.ModRate/sauce.ModRateMax, fx.ModDepth/sauce.ModDepthMax, func(x, y float64) {
		v := e.voices.GetOrCreate(0)
		v.SetModRate(x * sauce.ModRateMax)
		v.SetModDepth(y * sauce.ModDepthMax)
		t := e.registry.Effects()
		t.ModRate, t.ModDepth = v.ModRate(), v.ModDepth()
		e.registry.WriteBack(t)
	})
	delay := NewParameter("delay", float64(fx.DelayRate)/sauce.DelayMax, fx.DelayDecay, func(x, y float64) {
		v := e.voices.GetOrCreate(0)
		v.SetDelayRate(int(x * sauce.DelayMax))
		v.SetDelayDecay(y)
		t := e.registry.Effects()
		t.DelayRate, t.DelayDecay = v.DelayRate(), v.DelayDecay()
		e.registry.WriteBack(t)
	})
	return []*Parameter{eq, lfo, delay}
}

func (e *Engine) alert(a Alert) {
	TrySend(e.broker.Alerts, a)
}

func (e *Engine) buttonPressed(b Button, recording bool) {
	switch {
	case b == RecordButton && recording:
		e.alert(Alert{Name: "Looper", Priority: Info, Message: "Recording loop"})
	case b == RecordButton:
		e.alert(Alert{Name: "Looper", Priority: Info, Message: "Playing loop"})
	}
}

func (e *Engine) Broker() *Broker            { return e.broker }
func (e *Engine) Alerts() <-chan Alert       { return e.broker.Alerts }
func (e *Engine) Allocator() *Allocator      { return e.allocator }
func (e *Engine) Voices() *Voices            { return e.voices }
func (e *Engine) Registry() *preset.Registry { return e.registry }
func (e *Engine) Looper() *dsp.Looper        { return e.looper }
func (e *Engine) Filter() *dsp.Filter        { return e.filter }
func (e *Engine) Sink() *dsp.Sink            { return e.sink }

// Level returns the level of the last rendered block.
func (e *Engine) Level() dsp.Level { return e.sink.Level() }

// Run renders audio to the output until the context is cancelled or the
// device fails. On every path out it closes the recorder, the output and the
// audio context. A cancelled context is a normal exit and returns nil.
func (e *Engine) Run(ctx context.Context) (err error) {
	if !e.running.CompareAndSwap(false, true) {
		return ErrClosed
	}
	defer close(e.broker.FinishedAudio)
	defer func() {
		// no new recording may start once the current one is finalized
		e.closed.Store(true)
		if rerr := e.stopWavRecording(); err == nil && rerr != nil && !errors.Is(rerr, recorder.ErrNotRecording) {
			err = rerr
		}
		if cerr := e.audio.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not close audio context: %w", cerr)
		}
		if err != nil {
			e.alert(Alert{Name: "AudioFailure", Priority: Error, Message: err.Error()})
		}
	}()
	out, err := e.audio.Output()
	if err != nil {
		return fmt.Errorf("could not open audio output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not close audio output: %w", cerr)
		}
	}()
	err = e.sink.Play(ctx, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Wait blocks until Run has returned, at most for the timeout. It reports
// whether Run returned.
func (e *Engine) Wait(timeout time.Duration) bool {
	_, ok := TimeoutReceive(e.broker.FinishedAudio, timeout)
	return !ok && e.closed.Load()
}

// RunInput handles messages until the context is cancelled or msgs is
// closed. Errors from messages are posted as warnings.
func (e *Engine) RunInput(ctx context.Context, msgs <-chan any) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := e.HandleMessage(msg); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				e.alert(Alert{Name: "Input", Priority: Warning, Message: err.Error()})
			}
		}
	}
}

// HandleMessage applies one input message.
func (e *Engine) HandleMessage(msg any) error {
	if e.closed.Load() {
		return ErrClosed
	}
	switch m := msg.(type) {
	case TouchEvent:
		e.HandleTouch(m)
	case *TouchEvent:
		e.HandleTouch(*m)
	case ToggleRecordingMsg:
		e.ToggleRecording()
	case UndoMsg:
		e.Undo()
	case ResetMsg:
		e.Reset()
	case ToggleModeMsg:
		e.ToggleMode()
	case SelectInstrumentMsg:
		e.SelectInstrument(m.Name)
	case SelectScaleMsg:
		return e.SelectScale(m.Name)
	case SetNoteMsg:
		return e.SetNote(m.Note)
	case SetOctaveMsg:
		return e.SetOctave(m.Octave)
	case ToggleWavRecordingMsg:
		_, err := e.ToggleWavRecording()
		return err
	case SaveInstrumentMsg:
		path, err := e.SaveInstrument(m.Name)
		if err != nil {
			return err
		}
		e.alert(Alert{Name: "Preset", Priority: Info, Message: "Saved " + path})
	case SetLayoutMsg:
		e.allocator.Layout.Width, e.allocator.Layout.Height = m.Width, m.Height
	case StatusMsg:
		e.alert(Alert{Name: "Status", Priority: Info, Message: e.Status().String()})
	case ListInstrumentsMsg:
		e.alert(Alert{Name: "Instruments", Priority: Info, Message: strings.Join(e.Instruments(), ", ")})
	default:
		return fmt.Errorf("unknown message %T", msg)
	}
	return nil
}

// HandleTouch routes a touch event through the allocator.
func (e *Engine) HandleTouch(ev TouchEvent) { e.allocator.HandleTouch(ev) }

// ToggleRecording starts or commits a loop layer and returns whether the
// looper is now recording.
func (e *Engine) ToggleRecording() bool {
	rec := e.looper.ToggleRecording()
	e.buttonPressed(RecordButton, rec)
	return rec
}

func (e *Engine) Undo()  { e.looper.Undo() }
func (e *Engine) Reset() { e.looper.Reset() }

func (e *Engine) Mode() Mode { return e.allocator.Mode() }

// ToggleMode switches between Edit and Play Multi mode. All voices are
// disconnected.
func (e *Engine) ToggleMode() Mode {
	m := EditMode
	if e.allocator.Mode() == EditMode {
		m = PlayMultiMode
	}
	e.allocator.SetMode(m)
	e.allocator.SetParameters(e.newParameters())
	e.alert(Alert{Name: "Mode", Priority: Info, Message: fmt.Sprintf("Switched to %v mode", m)})
	return m
}

// SelectInstrument makes the named preset the template of new voices and
// disconnects the current voices. If the preset cannot be loaded, the
// default instrument is used and a warning is posted.
func (e *Engine) SelectInstrument(name string) {
	e.registry.Replace(e.loadInstrument(name))
	e.voices.Reset()
	e.allocator.ResetClaims()
	e.allocator.SetParameters(e.newParameters())
}

// Instrument returns the name of the current template.
func (e *Engine) Instrument() string { return e.registry.Current().Name }

// Instruments returns the names of the presets that can be selected.
func (e *Engine) Instruments() []string {
	if e.loader == nil {
		return []string{sauce.DefaultInstrument().Name}
	}
	return e.loader.Names()
}

// SaveInstrument stores the current template, including the modulation and
// delay edits written back into it, as a user preset.
func (e *Engine) SaveInstrument(name string) (string, error) {
	if e.loader == nil {
		return "", errors.New("no preset loader")
	}
	instr := e.registry.Current()
	instr.Name = name
	return e.loader.Save(instr)
}

func (e *Engine) SelectScale(name string) error {
	s, err := sauce.ScaleByName(name)
	if err != nil {
		return err
	}
	e.scaleName = name
	e.allocator.SetScale(s)
	return nil
}

func (e *Engine) ScaleName() string { return e.scaleName }

// SetNote sets the base note, 0 = A ... 11 = G#, of all voices.
func (e *Engine) SetNote(note int) error {
	if note < 0 || note >= len(sauce.NoteNames) {
		return fmt.Errorf("note %d out of range [0, %d)", note, len(sauce.NoteNames))
	}
	e.note = note
	e.voices.SetBaseFreq(sauce.FrequencyForNote(e.note, e.octave))
	return nil
}

// SetOctave sets the octave of the base note of all voices.
func (e *Engine) SetOctave(octave int) error {
	if octave < 0 || octave > 8 {
		return fmt.Errorf("octave %d out of range [0, 8]", octave)
	}
	e.octave = octave
	e.voices.SetBaseFreq(sauce.FrequencyForNote(e.note, e.octave))
	return nil
}

// ToggleWavRecording starts recording the output into a new WAV file, or
// finishes the current one. It returns whether a recording is now running.
func (e *Engine) ToggleWavRecording() (bool, error) {
	e.recMu.Lock()
	active := e.rec != nil
	e.recMu.Unlock()
	if active {
		return false, e.stopWavRecording()
	}
	if e.closed.Load() {
		return false, ErrClosed
	}
	rec, err := recorder.Start(recorder.Options{
		Dir:        e.cfg.RecordDir,
		Prefix:     e.cfg.RecordPrefix,
		Pattern:    e.cfg.RecordPattern,
		SampleRate: e.cfg.SampleRate,
		BlockSize:  e.cfg.BlockSize,
	})
	if err != nil {
		return false, err
	}
	e.recMu.Lock()
	if e.closed.Load() {
		e.recMu.Unlock()
		if cerr := rec.Close(); cerr != nil {
			return false, cerr
		}
		os.Remove(rec.Path())
		return false, ErrClosed
	}
	e.rec = rec
	e.sink.SetRecorder(rec)
	e.recMu.Unlock()
	e.alert(Alert{Name: "Recording", Priority: Info, Message: "Recording to " + rec.Path()})
	return true, nil
}

func (e *Engine) stopWavRecording() error {
	e.recMu.Lock()
	defer e.recMu.Unlock()
	if e.rec == nil {
		return recorder.ErrNotRecording
	}
	e.sink.SetRecorder(nil)
	err := e.rec.Close()
	if n := e.rec.Dropped(); n > 0 {
		e.alert(Alert{Name: "RecordingDropped", Priority: Warning, Message: fmt.Sprintf("Recording lost %d blocks", n)})
	}
	if err == nil {
		e.lastRecording = e.rec.Path()
		e.alert(Alert{Name: "Recording", Priority: Info, Message: "Saved " + e.lastRecording})
	}
	e.rec = nil
	return err
}

// Status is a snapshot of the engine state.
type Status struct {
	Mode       Mode
	Instrument string
	Scale      string
	Note       int
	Octave     int
	Looper     dsp.LooperState
	Layers     int
	Voices     int
	Recording  string // path of the running WAV recording, or ""
	Level      dsp.Level
}

func (s Status) String() string {
	ret := fmt.Sprintf("mode %v, instrument %q, scale %s, note %s%d, looper %v with %d layers, %d voices, peak %.2f",
		s.Mode, s.Instrument, s.Scale, sauce.NoteNames[s.Note], s.Octave, s.Looper, s.Layers, s.Voices, s.Level.Peak)
	if s.Recording != "" {
		ret += ", recording to " + s.Recording
	}
	return ret
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	s := Status{
		Mode:       e.allocator.Mode(),
		Instrument: e.Instrument(),
		Scale:      e.scaleName,
		Note:       e.note,
		Octave:     e.octave,
		Looper:     e.looper.State(),
		Layers:     e.looper.Layers(),
		Voices:     e.voices.Count(),
		Level:      e.sink.Level(),
	}
	e.recMu.Lock()
	if e.rec != nil {
		s.Recording = e.rec.Path()
	}
	e.recMu.Unlock()
	return s
}

// LastRecording returns the path of the last finished WAV recording, or ""
// if there is none.
func (e *Engine) LastRecording() string {
	e.recMu.Lock()
	defer e.recMu.Unlock()
	return e.lastRecording
}
