package presenter

import (
	"errors"
	"testing"

	"github.com/soocke/pixel-recorder-go/domain/recording"
)

type mockRecorder struct {
	startErr error
	stopErr  error
	starts   int
	pauses   int
	stops    int
}

func (r *mockRecorder) StartOrResume() error { r.starts++; return r.startErr }
func (r *mockRecorder) Pause()               { r.pauses++ }
func (r *mockRecorder) Stop() error          { r.stops++; return r.stopErr }

type mockExporter struct{ calls int }

func (e *mockExporter) ExportAndExit() { e.calls++ }

type mockNotifier struct {
	titles []string
	errors int
}

func (n *mockNotifier) Info(title, _ string)  { n.titles = append(n.titles, title) }
func (n *mockNotifier) Error(title, _ string) { n.titles = append(n.titles, title); n.errors++ }

func TestControlPresenter_NotReadyNotice(t *testing.T) {
	rec := &mockRecorder{startErr: recording.ErrNotReady}
	n := &mockNotifier{}
	c := NewControlPresenter(rec, nil, n, nil)
	c.Start()
	if rec.starts != 1 || len(n.titles) != 1 || n.titles[0] != "Please wait" || n.errors != 0 {
		t.Fatalf("starts=%d notices=%v errors=%d", rec.starts, n.titles, n.errors)
	}
}

func TestControlPresenter_StartFailureReported(t *testing.T) {
	rec := &mockRecorder{startErr: errors.New("disk full")}
	n := &mockNotifier{}
	NewControlPresenter(rec, nil, n, nil).Start()
	if n.errors != 1 {
		t.Fatalf("expected an error notice, got %v", n.titles)
	}
}

func TestControlPresenter_Delegates(t *testing.T) {
	rec := &mockRecorder{}
	exp := &mockExporter{}
	n := &mockNotifier{}
	c := NewControlPresenter(rec, exp, n, nil)
	c.Start()
	c.Pause()
	c.Stop()
	c.ExportAndExit()
	if rec.starts != 1 || rec.pauses != 1 || rec.stops != 1 || exp.calls != 1 {
		t.Fatalf("calls: %+v export=%d", rec, exp.calls)
	}
	if len(n.titles) != 0 {
		t.Fatalf("unexpected notices %v", n.titles)
	}
}

func TestControlPresenter_NilSafe(t *testing.T) {
	var c *ControlPresenter
	c.Start()
	c.Pause()
	c.Stop()
	c.ExportAndExit()
}
