// Package hotkey watches the global keyboard for the cancel key.
package hotkey

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	hook "github.com/robotn/gohook"
)

// Virtual-key codes reported as Rawcode on Windows.
var rawcodes = map[string]uint16{
	"esc": 27,
	"f9":  120,
	"f10": 121,
	"f12": 123,
}

// stopWait bounds how long Stop waits for the event goroutine to drain.
const stopWait = time.Second

// Watcher latches once the configured key is pressed.
type Watcher struct {
	key     string
	code    uint16
	raw     uint16
	logger  *slog.Logger
	fired   atomic.Bool
	mu      sync.Mutex
	started bool
	done    chan struct{}

	end      func()
	stopWait time.Duration
}

// New returns a watcher for key, a gohook key name such as "esc" or "f10".
func New(key string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	key = strings.ToLower(strings.TrimSpace(key))
	code, ok := hook.Keycode[key]
	if !ok {
		return nil, fmt.Errorf("hotkey: unknown key %q", key)
	}
	return &Watcher{key: key, code: code, raw: rawcodes[key], logger: logger, end: hook.End, stopWait: stopWait}, nil
}

// Start begins listening on the global hook. It is a no-op when already started.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.listen(hook.Start())
	w.logger.Info("hotkey listening", "key", w.key)
}

// listen consumes events until the channel is closed. Callers hold mu.
func (w *Watcher) listen(events chan hook.Event) {
	w.started = true
	w.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("hotkey goroutine panic", "error", r)
			}
		}()
		for ev := range events {
			w.handle(ev)
		}
	}(w.done)
}

// Stop ends the global hook and waits, up to a bound, for the event goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	done := w.done
	w.end()
	w.mu.Unlock()

	t := time.NewTimer(w.stopWait)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		w.logger.Warn("hotkey listener did not exit", "timeout", w.stopWait)
	}
}

// Cancelled reports whether the key has been pressed since construction.
func (w *Watcher) Cancelled() bool { return w.fired.Load() }

func (w *Watcher) handle(ev hook.Event) {
	if !w.matches(ev) {
		return
	}
	if w.fired.CompareAndSwap(false, true) {
		w.logger.Info("cancel key pressed", "key", w.key)
	}
}

func (w *Watcher) matches(ev hook.Event) bool {
	if ev.Kind != hook.KeyDown && ev.Kind != hook.KeyHold {
		return false
	}
	if w.raw != 0 && ev.Rawcode == w.raw {
		return true
	}
	return ev.Keycode == w.code
}
