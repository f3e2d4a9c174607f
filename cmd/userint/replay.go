package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/odvcencio/userint/pkg/errors"
	"github.com/odvcencio/userint/pkg/logging"
	"github.com/odvcencio/userint/pkg/scene"
	"github.com/odvcencio/userint/pkg/userint"
)

// sample is one recorded input step.
type sample struct {
	X       int  `yaml:"x"`
	Y       int  `yaml:"y"`
	Pressed bool `yaml:"pressed"`
	// Leave moves the pointer off every widget before the step.
	Leave bool `yaml:"leave"`
	// Clear drops the choice instead of propagating a signal.
	Clear bool `yaml:"clear"`
	// Update runs an update pass after the step.
	Update bool `yaml:"update"`
}

type recording struct {
	Samples []sample `yaml:"samples"`
}

func loadRecording(r io.Reader) (*recording, error) {
	var rec recording
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rec); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "parsing samples")
	}
	return &rec, nil
}

func runReplayCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	scenePath := fs.String("scene", "", "scene file to build")
	level := fs.String("level", "info", "minimum journal level (debug includes tick summaries)")
	session := fs.String("session", "replay", "session id stamped on every line")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitConfig)
	}
	if *scenePath == "" || fs.NArg() != 1 {
		return withExitCode(errors.New("usage: userint replay --scene <file> <samples.yaml|->"), exitConfig)
	}
	minLevel, ok := logging.ParseLevel(*level)
	if !ok {
		return withExitCode(fmt.Errorf("unknown level %q", *level), exitConfig)
	}

	spec, err := scene.LoadFile(*scenePath)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if name := fs.Arg(0); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "opening samples")
		}
		defer f.Close()
		in = f
	}
	rec, err := loadRecording(in)
	if err != nil {
		return err
	}

	logger := logging.NewWriterLogger(out, *session)
	logger.SetMinLevel(minLevel)
	logger.SetScene(spec.Name)
	journal := logging.NewJournal(logger, nil)

	sc, err := scene.New(spec, nil, nil, userint.WithObserver(journal))
	if err != nil {
		return err
	}
	defer sc.Close()

	for i, s := range rec.Samples {
		if err := replaySample(sc, s); err != nil {
			return apperrors.Wrap(err, apperrors.GetCode(err), "replaying samples").WithContext("sample", i)
		}
	}

	return logger.Info(logging.CategoryHost, "replay.done", "replay finished", map[string]any{
		"samples": len(rec.Samples),
		"ticks":   journal.Ticks(),
	})
}

func replaySample(sc *scene.Scene, s sample) error {
	state := sc.State()
	if s.Clear {
		if err := state.ClearInput(); err != nil {
			return err
		}
	} else {
		if s.Leave {
			sc.ClearPointer()
		} else {
			sc.SetPointer(s.X, s.Y)
		}
		if err := state.PropagateSignal(s.Pressed); err != nil {
			return err
		}
	}
	if s.Update {
		return state.Update()
	}
	return nil
}

// runCheckCommand validates and builds each scene file.
func runCheckCommand(args []string, out io.Writer) error {
	if len(args) == 0 {
		return withExitCode(errors.New("usage: userint check <scene.yaml>..."), exitConfig)
	}
	var failed error
	for _, path := range args {
		spec, err := scene.LoadFile(path)
		if err == nil {
			var sc *scene.Scene
			if sc, err = scene.New(spec, nil, nil); err == nil {
				_ = sc.Close()
			}
		}
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			if failed == nil {
				failed = err
			}
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d widgets)\n", path, len(spec.Widgets))
	}
	return failed
}
