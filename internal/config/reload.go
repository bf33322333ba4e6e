package config

import (
	"github.com/fsnotify/fsnotify"
)

// Watcher supplements the keystroke-triggered hot-reload spec §4.9
// requires with an fsnotify-driven one: editing the config file on disk
// also triggers the same load-then-reapply sequence.
type Watcher struct {
	fsw *fsnotify.Watcher
	ch  chan struct{}
}

// NewWatcher starts watching the directory containing the config file
// (fsnotify watches directories, not bare files, so edits that replace the
// file via rename are still observed). Callers read from Reloaded() and
// call config.Load() themselves.
func NewWatcher(configDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(configDir); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{fsw: fsw, ch: make(chan struct{}, 1)}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Rename|fsnotify.Create) != 0 {
				select {
				case w.ch <- struct{}{}:
				default:
				}
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Reloaded signals (non-blocking, coalesced) whenever the watched
// directory changed in a way that might mean the config file was edited.
func (w *Watcher) Reloaded() <-chan struct{} { return w.ch }

// Close stops the watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
