package puzzle

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the catalog whenever the file at path changes and delivers
// each successfully parsed catalog to onReload. Parse failures are logged
// and the previous catalog stays in effect. Watch blocks until ctx is done.
//
// Editors typically replace files via rename, so the watch is placed on the
// parent directory and filtered by name.
func Watch(ctx context.Context, path string, onReload func(*Catalog)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	var debounce *time.Timer
	defer func() {
		// A pending debounce must not fire after shutdown.
		if debounce != nil {
			debounce.Stop()
		}
	}()
	reload := func() {
		cat, err := Load(path)
		if err != nil {
			log.Printf("catalog: reload of %s failed: %v", path, err)
			return
		}
		log.Printf("catalog: reloaded %s (%d puzzles)", path, cat.Len())
		onReload(cat)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Coalesce bursts of events from a single save.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("catalog: watcher error: %v", err)
		}
	}
}
