// Package host drives a scene from a terminal backend: pointer samples become signal
// propagations, and each frame runs an update pass that draws the widgets.
package host

import (
	"context"
	"time"

	apperrors "github.com/odvcencio/userint/pkg/errors"
	"github.com/odvcencio/userint/pkg/logging"
	"github.com/odvcencio/userint/pkg/scene"
	"github.com/odvcencio/userint/pkg/ui/backend"
	"github.com/odvcencio/userint/pkg/ui/terminal"
	"github.com/odvcencio/userint/pkg/userint"
)

const (
	defaultTickInterval = 50 * time.Millisecond
	recentEvents        = 6
)

// Options configures a Host.
type Options struct {
	// TickInterval is the redraw period. Zero uses 50ms.
	TickInterval time.Duration
	// ShowStatus draws a status line with the choice and the latest events on the last row.
	ShowStatus bool
	// Logger receives host lifecycle events. May be nil.
	Logger *logging.Logger
	// Observers watch the protocol alongside the host.
	Observers []userint.Observer
	// OnFrame runs after each redraw on the goroutine that owns the state.
	OnFrame func(s *userint.State)
	// OnReload runs after a watcher update replaces the scene.
	OnReload func(spec *scene.Spec)
}

// Host owns a scene, its state, and the backend it renders to. All protocol calls happen on
// the goroutine running Run (or the caller of HandleEvent and Tick in tests).
type Host struct {
	backend backend.Backend
	scene   *scene.Scene
	opts    Options

	recent  []string
	status  string
	dirty   bool
	updates <-chan scene.Update
}

// New builds spec into a fresh state wired to b.
func New(b backend.Backend, spec *scene.Spec, opts Options) (*Host, error) {
	if b == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "host needs a backend")
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}

	h := &Host{backend: b, opts: opts, dirty: true}
	stateOpts := make([]userint.Option, 0, len(opts.Observers))
	for _, o := range opts.Observers {
		stateOpts = append(stateOpts, userint.WithObserver(o))
	}

	sc, err := scene.New(spec, h.onEvent, h.draw, stateOpts...)
	if err != nil {
		return nil, err
	}
	h.scene = sc
	if opts.Logger != nil && spec.Name != "" {
		opts.Logger.SetScene(spec.Name)
	}
	return h, nil
}

// Scene returns the hosted scene.
func (h *Host) Scene() *scene.Scene { return h.scene }

// State returns the hosted state.
func (h *Host) State() *userint.State { return h.scene.State() }

// Recent returns the latest widget events, oldest first, as "tag:event".
func (h *Host) Recent() []string {
	return append([]string(nil), h.recent...)
}

// Watch makes Run apply scene updates from ch.
func (h *Host) Watch(ch <-chan scene.Update) {
	h.updates = ch
}

// HandleEvent applies one input event. It reports whether the host should exit.
func (h *Host) HandleEvent(ev terminal.Event) (quit bool, err error) {
	switch e := ev.(type) {
	case terminal.MouseEvent:
		if e.Button == terminal.MouseWheelUp || e.Button == terminal.MouseWheelDown {
			return false, nil
		}
		h.scene.SetPointer(e.X, e.Y)
		h.dirty = true
		return false, h.State().PropagateSignal(e.Pressed())
	case terminal.KeyEvent:
		if e.IsQuit() {
			return true, nil
		}
		switch {
		case e.Key == terminal.KeyCtrlL:
			h.backend.Sync()
		case e.Key == terminal.KeyRune && e.Rune == 'c':
			h.dirty = true
			return false, h.State().ClearInput()
		}
	case terminal.ResizeEvent:
		h.dirty = true
		h.backend.Sync()
	}
	return false, nil
}

// Apply rebuilds the scene from a watcher update. Updates that fail to load or build keep the
// current scene and set the status line.
func (h *Host) Apply(u scene.Update) error {
	if u.Err != nil {
		h.status = "scene error: " + u.Err.Error()
		h.dirty = true
		h.logWarn("scene.reload_failed", u.Err)
		return u.Err
	}
	if err := h.scene.Reload(u.Spec); err != nil {
		h.status = "scene error: " + err.Error()
		h.dirty = true
		h.logWarn("scene.reload_failed", err)
		return err
	}
	h.status = ""
	h.recent = nil
	h.dirty = true
	if h.opts.Logger != nil {
		if u.Spec.Name != "" {
			h.opts.Logger.SetScene(u.Spec.Name)
		}
		_ = h.opts.Logger.Info(logging.CategoryScene, "scene.reloaded", "scene reloaded", map[string]any{
			"widgets": len(u.Spec.Widgets),
		})
	}
	if h.opts.OnReload != nil {
		h.opts.OnReload(u.Spec)
	}
	return nil
}

// Tick redraws the screen if anything changed since the last tick.
func (h *Host) Tick() error {
	if !h.dirty {
		return nil
	}
	h.backend.Clear()
	if err := h.State().Update(); err != nil {
		return err
	}
	if h.opts.ShowStatus {
		h.drawStatus()
	}
	h.backend.Show()
	h.dirty = false
	if h.opts.OnFrame != nil {
		h.opts.OnFrame(h.State())
	}
	return nil
}

// Run initializes the backend and processes events until ctx is done or a quit key is
// pressed.
func (h *Host) Run(ctx context.Context) error {
	if err := h.backend.Init(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBackend, "initializing terminal")
	}
	defer h.backend.Fini()
	h.backend.HideCursor()

	if h.opts.Logger != nil {
		w, ht := h.backend.Size()
		_ = h.opts.Logger.Info(logging.CategoryHost, "host.start", "host started", map[string]any{
			"width":   w,
			"height":  ht,
			"widgets": h.State().WidgetCount(),
		})
	}

	events := make(chan terminal.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := h.backend.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(h.opts.TickInterval)
	defer ticker.Stop()

	if err := h.Tick(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return h.stop("context done")
		case ev := <-events:
			quit, err := h.HandleEvent(ev)
			if err != nil {
				h.logWarn("host.event_failed", err)
			}
			if quit {
				return h.stop("quit key")
			}
		case u, ok := <-h.updates:
			if !ok {
				h.updates = nil
				continue
			}
			_ = h.Apply(u)
		case <-ticker.C:
			if err := h.Tick(); err != nil {
				return err
			}
		}
	}
}

func (h *Host) stop(reason string) error {
	if h.opts.Logger != nil {
		_ = h.opts.Logger.Info(logging.CategoryHost, "host.stop", "host stopped", map[string]any{
			"reason": reason,
		})
	}
	return nil
}

func (h *Host) onEvent(w *userint.Widget, ev userint.Event) {
	tag, ok := w.Tag()
	if !ok {
		tag = w.Kind().String()
	}
	h.recent = append(h.recent, tag+":"+ev.String())
	if len(h.recent) > recentEvents {
		h.recent = h.recent[len(h.recent)-recentEvents:]
	}
	h.dirty = true
}

func (h *Host) logWarn(eventType string, err error) {
	if h.opts.Logger == nil {
		return
	}
	_ = h.opts.Logger.Warn(logging.CategoryHost, eventType, err.Error(), map[string]any{
		"code": string(apperrors.GetCode(err)),
	})
}
