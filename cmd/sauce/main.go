package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/mattfeury/sauce/cmd"
	"github.com/mattfeury/sauce/config"
	"github.com/mattfeury/sauce/engine"
	"github.com/mattfeury/sauce/gomidi"
	"github.com/mattfeury/sauce/preset"
	"github.com/mattfeury/sauce/version"
)

var (
	configFile = flag.String("config", "", "read the configuration from YAML `file`")
	backend    = flag.String("backend", "", "audio backend: oto, portaudio or null")
	instrument = flag.String("instrument", "", "start with the named instrument")
	scale      = flag.String("scale", "", "start with the named scale")
	midiInput  = flag.String("midi-input", "", "play the pad from the MIDI input with matching device name prefix")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	quiet      = flag.Bool("q", false, "do not print info alerts")
	versionFlg = flag.Bool("v", false, "print version")
)

func main() {
	flag.Parse()
	if *versionFlg {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
		}()
	}
	if err := run(); err != nil {
		log.Printf("sauce: %v", err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.PresetDir == "" {
		if cfg.PresetDir, err = preset.DefaultDir(); err != nil {
			log.Printf("no user preset directory, saving presets is disabled: %v", err)
		}
	}
	audioContext, err := cmd.OpenAudio(cfg)
	if err != nil {
		return fmt.Errorf("could not acquire audio context: %w", err)
	}
	e, err := engine.New(cfg, audioContext, preset.NewLoader(cfg.PresetDir))
	if err != nil {
		audioContext.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go printAlerts(e.Alerts(), *quiet)

	if cfg.MIDIInput != "" {
		tr := gomidi.NewTranslator(e.Allocator().Layout, cfg.MIDIBaseNote, cfg.GridSize)
		in, name, err := cmd.OpenMIDI(cfg.MIDIInput, tr, e)
		if err != nil {
			log.Printf("MIDI input disabled: %v", err)
		} else {
			log.Printf("playing from MIDI input %s", name)
			defer in.Close()
		}
	}

	console := cmd.NewConsole(e.Allocator().Layout)
	go readConsole(ctx, os.Stdin, console, e.Broker(), stop)

	inputDone := make(chan error, 1)
	go func() { inputDone <- e.RunInput(ctx, e.Broker().ToEngine) }()

	log.Printf("%s: %s backend, %d Hz, instrument %q; type commands, or quit", version.String(), cfg.Backend, cfg.SampleRate, e.Instrument())
	runErr := e.Run(ctx)
	stop()
	if ierr := <-inputDone; runErr == nil && ierr != nil && !errors.Is(ierr, context.Canceled) && !errors.Is(ierr, engine.ErrClosed) {
		runErr = ierr
	}
	if !e.Wait(time.Second) {
		log.Printf("audio did not stop in time")
	}
	if p := e.LastRecording(); p != "" {
		log.Printf("last recording: %s", p)
	}
	return runErr
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return cfg, err
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *instrument != "" {
		cfg.Instrument = *instrument
	}
	if *scale != "" {
		cfg.Scale = *scale
	}
	if *midiInput != "" {
		cfg.MIDIInput = *midiInput
	}
	return cfg, cfg.Validate()
}

// readConsole parses lines from r and sends them to the engine. End of input
// or quit cancels the context.
func readConsole(ctx context.Context, r io.Reader, console *cmd.Console, broker *engine.Broker, quit func()) {
	defer quit()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		msg, err := console.Parse(scanner.Text())
		switch {
		case errors.Is(err, cmd.ErrQuit):
			return
		case err != nil:
			log.Print(err)
			continue
		case msg == nil:
			continue
		}
		select {
		case broker.ToEngine <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func printAlerts(alerts <-chan engine.Alert, quiet bool) {
	for a := range alerts {
		if quiet && a.Priority == engine.Info {
			continue
		}
		log.Printf("%v: %s", a.Priority, a.Message)
	}
}
