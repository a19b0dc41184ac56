package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/xjoin/compiler/load"
)

// debounce is the quiet period after the last change before regenerating.
const debounce = 300 * time.Millisecond

// Watch regenerates whenever an input schema is written, created, renamed
// or removed, until ctx is done. Failed runs are logged and do not stop it.
func (g *generator) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories so editors that replace files on save keep working.
	dirs := make(map[string]bool)
	for _, in := range g.opts.inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		dir := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			dir = filepath.Dir(abs)
		}
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	g.logger.Info("watching for schema changes", "dirs", len(dirs))

	// Regeneration runs on this goroutine only; the timer just signals it.
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			g.logger.Debug("schema file changed", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if err := g.Run(ctx); err != nil {
				g.logger.Error("regeneration failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("watcher error", "error", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	_, err := load.FormatOf(event.Name)
	return err == nil
}
