// Package watch provides a debounced file-change watcher. Raw filesystem
// events reset a timer; the handler only fires after the file has been quiet
// for the configured window, so a half-written line is never observed.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Default quiet windows: logs settle fast, config and markdown files are
// written by editors and need a longer stability window.
const (
	LogQuiet    = 500 * time.Millisecond
	ConfigQuiet = time.Second
)

// File watches path and calls fn after each debounced change, until ctx is
// cancelled. The parent directory is watched rather than the file itself so
// rotations and atomic replaces (rename-over) are still observed. Setup
// errors are returned; errors after setup are logged and the watcher keeps
// running.
func File(ctx context.Context, path string, quiet time.Duration, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()

		timer := newStoppedTimer()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				resetTimer(timer, quiet)

			case <-timer.C:
				fn()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watch: %s: %v", path, err)
			}
		}
	}()

	return nil
}

// newStoppedTimer returns a timer that will not fire until reset.
func newStoppedTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

// resetTimer restarts the debounce window, draining a pending fire first.
func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}
