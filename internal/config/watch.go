package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/orizon-lang/netmux/internal/xlog"
)

// Watch reloads path into fresh Config values and invokes onChange whenever
// the file is written or replaced (editors commonly rename-and-replace).
// Watch blocks until stop is closed or an unrecoverable watcher error
// occurs; callers typically run it in its own goroutine. This is an
// enrichment of section 4.12's static, init-time-only config contract: a
// long-running multiplexer benefits from re-reading tunables without a
// restart.
func Watch(path string, stop <-chan struct{}, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the parent directory: a watch on the file itself is dropped when
	// an editor renames a new file over it.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Parse(path)
			if err != nil {
				xlog.Default.Warnf("config: reload of %q failed: %v", path, err)
				continue
			}
			onChange(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			xlog.Default.Warnf("config: watcher error on %q: %v", path, err)
		}
	}
}
