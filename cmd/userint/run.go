package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/userint/pkg/config"
	apperrors "github.com/odvcencio/userint/pkg/errors"
	"github.com/odvcencio/userint/pkg/host"
	"github.com/odvcencio/userint/pkg/logging"
	"github.com/odvcencio/userint/pkg/scene"
	"github.com/odvcencio/userint/pkg/telemetry"
	tcellbackend "github.com/odvcencio/userint/pkg/ui/backend/tcell"
	"github.com/odvcencio/userint/pkg/userint"
)

const shutdownTimeout = 2 * time.Second

var runLoadConfigFn = config.Load

// runLoadConfig loads configuration and applies the run flags on top of it.
func runLoadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "load configuration from this file only")
	scenePath := fs.String("scene", "", "scene file to host")
	metricsAddr := fs.String("metrics", "", "serve /metrics and /events on this address")
	noWatch := fs.Bool("no-watch", false, "do not reload the scene when the file changes")
	trace := fs.Bool("trace", false, "export interaction spans")
	if err := fs.Parse(args); err != nil {
		return nil, withExitCode(err, exitConfig)
	}
	if fs.NArg() > 0 && *scenePath == "" {
		*scenePath = fs.Arg(0)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = runLoadConfigFn()
	}
	if err != nil {
		return nil, err
	}

	if *scenePath != "" {
		cfg.Scene.Path = *scenePath
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = *metricsAddr
	}
	if *noWatch {
		cfg.Scene.Watch = false
	}
	if *trace {
		cfg.Tracing.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if config.ResolveScenePath(cfg) == "" {
		return nil, withExitCode(errors.New("usage: userint run --scene <file> (or set scene.path)"), exitConfig)
	}
	return cfg, nil
}

func runRunCommand(args []string) error {
	cfg, err := runLoadConfig(args)
	if err != nil {
		return err
	}
	for _, w := range cfg.ValidationWarnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if !isInteractiveTerminalFn() {
		return withExitCode(errors.New("userint run needs an interactive terminal (try userint replay)"), exitNoTerminal)
	}

	scenePath := config.ResolveScenePath(cfg)
	spec, err := scene.LoadFile(scenePath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(config.ResolveLogDir(cfg), "")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "opening session log")
	}
	defer logger.Close()
	if level, ok := logging.ParseLevel(cfg.Logging.Level); ok {
		logger.SetMinLevel(level)
	}

	var transcript *logging.Transcript
	if cfg.Logging.Transcript {
		transcript, err = logging.NewTranscript(config.ResolveLogDir(cfg))
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "opening transcript")
		}
		defer transcript.Close()
	}
	journal := logging.NewJournal(logger, transcript)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	observers := []userint.Observer{journal}
	hub := telemetry.NewHub(logger.SessionID())
	defer hub.Close()
	observers = append(observers, hub)

	var (
		registry *prometheus.Registry
		metrics  *telemetry.Metrics
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		metrics = telemetry.NewMetrics(registry)
		observers = append(observers, metrics)
	}

	if cfg.Tracing.Enabled {
		out, closer, err := openTraceOutput(cfg.Tracing.Output)
		if err != nil {
			return err
		}
		defer closer.Close()
		tp, err := telemetry.NewTracerProvider(cfg.Tracing.ServiceName, version, out)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "starting tracer")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
		observers = append(observers, telemetry.NewSpanObserver(ctx, tp.Tracer(), journal.Name))
	}

	b, err := tcellbackend.New()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBackend, "opening terminal")
	}
	if !cfg.Host.Mouse {
		b.DisableMouse()
	}

	opts := host.Options{
		TickInterval: cfg.Host.TickInterval,
		ShowStatus:   cfg.Host.ShowStatus,
		Logger:       logger,
		Observers:    observers,
		OnReload: func(spec *scene.Spec) {
			hub.SceneReloaded(spec.Name, len(spec.Widgets))
		},
	}
	if metrics != nil {
		opts.OnFrame = metrics.ObserveState
	}
	h, err := host.New(b, spec, opts)
	if err != nil {
		return err
	}
	defer h.Scene().Close()

	if cfg.Scene.Watch {
		updates, err := scene.Watch(ctx, scenePath, scene.DefaultDebounce)
		if err != nil {
			_ = logger.Warn(logging.CategoryScene, "scene.watch_failed", err.Error(), map[string]any{"path": scenePath})
		} else {
			h.Watch(updates)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           newRouter(registry, hub, cfg.Metrics.Events),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return apperrors.Wrap(err, apperrors.ErrCodeInternal, "serving metrics")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			// Streams block until their subscription closes.
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		_ = logger.Info(logging.CategoryHost, "metrics.listen", "serving metrics", map[string]any{
			"addr":   cfg.Metrics.Addr,
			"events": cfg.Metrics.Events,
		})
	}

	g.Go(func() error {
		defer cancel()
		return h.Run(gctx)
	})
	return g.Wait()
}

// openTraceOutput resolves tracing.output to a writer: "stderr", "stdout", or a file that is
// appended to.
func openTraceOutput(output string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr":
		return os.Stderr, io.NopCloser(nil), nil
	case "stdout":
		return os.Stdout, io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "opening trace output")
	}
	return f, f, nil
}
