package scene

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	apperrors "github.com/odvcencio/userint/pkg/errors"
)

// Update is one result of re-reading a watched scene file. Exactly one of Spec and Err is set.
type Update struct {
	Spec *Spec
	Err  error
}

// DefaultDebounce coalesces editor save bursts into one reload.
const DefaultDebounce = 100 * time.Millisecond

// Watch streams a fresh Update each time the scene file at path changes, until ctx is
// cancelled. The parent directory is watched so editors that replace the file on save are
// followed. Callers should drain the returned channel; updates are dropped while it is full
// and the next change delivers the current contents anyway. The channel is closed once ctx is
// done or the watcher fails.
func Watch(ctx context.Context, path string, debounce time.Duration) (<-chan Update, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSceneInvalid, "resolving scene path")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "creating scene watcher")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSceneInvalid, "watching scene directory").
			WithContext("path", abs)
	}

	updates := make(chan Update, 4)
	go func() {
		defer close(updates)
		defer watcher.Close()

		send := func(u Update) {
			select {
			case updates <- u:
			default:
			}
		}

		var (
			timer   *time.Timer
			pending <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-pending:
				pending = nil
				spec, err := LoadFile(abs)
				send(Update{Spec: spec, Err: err})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				send(Update{Err: apperrors.Wrap(err, apperrors.ErrCodeInternal, "scene watcher")})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != abs {
					continue
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
					continue
				}
				if pending == nil {
					timer = time.NewTimer(debounce)
					pending = timer.C
				}
			}
		}
	}()

	return updates, nil
}
