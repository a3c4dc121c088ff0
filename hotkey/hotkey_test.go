package hotkey

import (
	"testing"
	"time"

	hook "github.com/robotn/gohook"
)

func TestUnknownKey(t *testing.T) {
	if _, err := New("not-a-key", nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEscLatches(t *testing.T) {
	w, err := New(" ESC ", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.handle(hook.Event{Kind: hook.KeyUp, Rawcode: 27})
	if w.Cancelled() {
		t.Fatalf("key up must not cancel")
	}
	w.handle(hook.Event{Kind: hook.KeyDown, Keycode: hook.Keycode["a"]})
	if w.Cancelled() {
		t.Fatalf("other key cancelled")
	}
	w.handle(hook.Event{Kind: hook.KeyDown, Rawcode: 27})
	if !w.Cancelled() {
		t.Fatalf("esc did not cancel")
	}
	w.handle(hook.Event{Kind: hook.KeyUp, Rawcode: 27})
	if !w.Cancelled() {
		t.Fatalf("cancel must latch")
	}
}

func TestMatchesByKeycode(t *testing.T) {
	w, err := New("f10", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !w.matches(hook.Event{Kind: hook.KeyHold, Keycode: hook.Keycode["f10"]}) {
		t.Fatalf("keycode not matched")
	}
}

func TestStopWaitsForListener(t *testing.T) {
	w, err := New("esc", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := make(chan hook.Event, 1)
	w.end = func() { close(events) }
	w.mu.Lock()
	w.listen(events)
	w.mu.Unlock()

	events <- hook.Event{Kind: hook.KeyDown, Rawcode: 27}
	w.Stop()

	select {
	case <-w.done:
	default:
		t.Fatalf("Stop returned before the listener exited")
	}
	if !w.Cancelled() {
		t.Fatalf("queued key press lost")
	}
	w.Stop()
}

func TestStopBoundedWhenHookHangs(t *testing.T) {
	w, err := New("esc", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.end = func() {}
	w.stopWait = 20 * time.Millisecond
	w.mu.Lock()
	w.listen(make(chan hook.Event))
	w.mu.Unlock()

	start := time.Now()
	w.Stop()
	if time.Since(start) > time.Second {
		t.Fatalf("Stop blocked for %v", time.Since(start))
	}
}
