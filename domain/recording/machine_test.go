package recording

import (
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type fakeRate struct {
	ready bool
	fps   float64
}

func (r *fakeRate) Ready() bool          { return r.ready }
func (r *fakeRate) MeasuredFPS() float64 { return r.fps }

// fakeEncoder counts frames; failAt makes the n-th write (1-based) fail.
type fakeEncoder struct {
	mu       sync.Mutex
	path     string
	fps      float64
	frames   int
	failAt   int
	panicAt  int
	closed   int
	block    chan struct{}
	entered  chan struct{}
	closeErr error
}

func (e *fakeEncoder) WriteFrame(img *image.RGBA) error {
	if e.entered != nil {
		close(e.entered)
		e.entered = nil
	}
	if e.block != nil {
		<-e.block
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed > 0 {
		return errors.New("write after close")
	}
	e.frames++
	if e.panicAt > 0 && e.frames == e.panicAt {
		panic("boom")
	}
	if e.failAt > 0 && e.frames == e.failAt {
		return errors.New("disk stalled")
	}
	return nil
}

func (e *fakeEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed++
	return e.closeErr
}

func (e *fakeEncoder) closeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// encoderLog records every encoder opened by the factory and creates its file.
type encoderLog struct {
	mu     sync.Mutex
	opened []*fakeEncoder
	tune   func(*fakeEncoder)
}

func (l *encoderLog) factory(path string, fps float64, width, height int) (Encoder, error) {
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		return nil, err
	}
	enc := &fakeEncoder{path: path, fps: fps}
	if l.tune != nil {
		l.tune(enc)
	}
	l.mu.Lock()
	l.opened = append(l.opened, enc)
	l.mu.Unlock()
	return enc, nil
}

func (l *encoderLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.opened)
}

func (l *encoderLog) last() *fakeEncoder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opened[len(l.opened)-1]
}

func newTestMachine(t *testing.T, rate RateSource, log *encoderLog) *Machine {
	t.Helper()
	m := NewMachine(discardLogger, rate, log.factory, Options{
		OutputDir:   t.TempDir(),
		Width:       8,
		Height:      8,
		StopTimeout: 50 * time.Millisecond,
	})
	m.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return m
}

func frame() *image.RGBA { return image.NewRGBA(image.Rect(0, 0, 8, 8)) }

func TestStartRefusedUntilRateReady(t *testing.T) {
	rate := &fakeRate{}
	log := &encoderLog{}
	m := newTestMachine(t, rate, log)
	if err := m.StartOrResume(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if m.Status() != StatusStopped || m.WriteEnabled() || log.count() != 0 {
		t.Fatalf("state changed on refused start: %+v", m.Snapshot())
	}
}

func TestStartOpensSessionWithMeasuredRate(t *testing.T) {
	log := &encoderLog{}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 17.5}, log)
	if err := m.StartOrResume(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s := m.Snapshot()
	if s.Status != StatusRecording || !s.WriteEnabled || !s.EncoderOpen {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if s.EncoderFPS != 17.5 || log.last().fps != 17.5 {
		t.Fatalf("encoder fps = %v, want 17.5", s.EncoderFPS)
	}
	if got := filepath.Base(s.SessionFile); got != "temp_record_20240309_140507.avi" {
		t.Fatalf("session file = %q", got)
	}
	if _, err := os.Stat(s.SessionFile); err != nil {
		t.Fatalf("session file not created: %v", err)
	}
}

func TestPauseResumeKeepsSingleSession(t *testing.T) {
	log := &encoderLog{}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	if err := m.StartOrResume(); err != nil {
		t.Fatalf("start: %v", err)
	}
	file := m.SessionFile()
	for i := 0; i < 5; i++ {
		m.Pause()
		if m.Status() != StatusPaused || m.WriteEnabled() {
			t.Fatalf("pause %d: %+v", i, m.Snapshot())
		}
		if m.WriteFrame(frame()) {
			t.Fatalf("frame written while paused")
		}
		if err := m.StartOrResume(); err != nil {
			t.Fatalf("resume %d: %v", i, err)
		}
		if m.Status() != StatusRecording || !m.WriteEnabled() {
			t.Fatalf("resume %d: %+v", i, m.Snapshot())
		}
		if m.SessionFile() != file {
			t.Fatalf("session file changed: %q -> %q", file, m.SessionFile())
		}
		if !m.WriteFrame(frame()) {
			t.Fatalf("frame not written after resume")
		}
	}
	if log.count() != 1 {
		t.Fatalf("expected one encoder, opened %d", log.count())
	}
	// Starting while recording is a no-op.
	if err := m.StartOrResume(); err != nil || log.count() != 1 {
		t.Fatalf("start while recording: err=%v opened=%d", err, log.count())
	}
	if got := log.last().frames; got != 5 {
		t.Fatalf("frames = %d, want 5", got)
	}
}

func TestPauseIgnoredUnlessRecording(t *testing.T) {
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, &encoderLog{})
	m.Pause()
	if m.Status() != StatusStopped {
		t.Fatalf("pause from stopped changed status to %v", m.Status())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	log := &encoderLog{}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	if err := m.Stop(); err != nil {
		t.Fatalf("stop from stopped: %v", err)
	}
	if err := m.StartOrResume(); err != nil {
		t.Fatalf("start: %v", err)
	}
	file := m.SessionFile()
	for i := 0; i < 3; i++ {
		if err := m.Stop(); err != nil {
			t.Fatalf("stop %d: %v", i, err)
		}
	}
	s := m.Snapshot()
	if s.Status != StatusStopped || s.WriteEnabled || s.EncoderOpen {
		t.Fatalf("unexpected snapshot after stop: %+v", s)
	}
	if s.SessionFile != file {
		t.Fatalf("session file lost on stop")
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("stop removed the file: %v", err)
	}
	if n := log.last().closeCount(); n != 1 {
		t.Fatalf("encoder closed %d times", n)
	}
	if m.WriteFrame(frame()) {
		t.Fatalf("frame written after stop")
	}
}

func TestStopFromPaused(t *testing.T) {
	log := &encoderLog{}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	_ = m.StartOrResume()
	m.Pause()
	if err := m.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if m.Status() != StatusStopped || log.last().closeCount() != 1 {
		t.Fatalf("stop from paused did not close: %+v", m.Snapshot())
	}
}

func TestWriteFailureClosesGateOnly(t *testing.T) {
	log := &encoderLog{tune: func(e *fakeEncoder) { e.failAt = 2 }}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	_ = m.StartOrResume()
	if !m.WriteFrame(frame()) {
		t.Fatalf("first write failed")
	}
	if m.WriteFrame(frame()) {
		t.Fatalf("second write should fail")
	}
	s := m.Snapshot()
	if s.WriteEnabled {
		t.Fatalf("gate still open after failure")
	}
	if s.Status != StatusRecording || !s.EncoderOpen {
		t.Fatalf("failure changed status or session: %+v", s)
	}
	if m.WriteFailures() != 1 {
		t.Fatalf("failures = %d", m.WriteFailures())
	}
	for i := 0; i < 3; i++ {
		if m.WriteFrame(frame()) {
			t.Fatalf("write went through a closed gate")
		}
	}
	if log.last().closeCount() != 0 {
		t.Fatalf("failure closed the encoder")
	}
	// Only start_or_resume reopens the gate; it reuses the session.
	if err := m.StartOrResume(); err != nil {
		t.Fatalf("start while recording: %v", err)
	}
	if m.WriteEnabled() {
		t.Fatalf("start while recording must not reopen the gate")
	}
	m.Pause()
	_ = m.StartOrResume()
	if !m.WriteEnabled() || !m.WriteFrame(frame()) {
		t.Fatalf("gate not reopened by resume")
	}
	if log.count() != 1 {
		t.Fatalf("opened %d encoders", log.count())
	}
}

func TestEncoderPanicIsContained(t *testing.T) {
	log := &encoderLog{tune: func(e *fakeEncoder) { e.panicAt = 1 }}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	_ = m.StartOrResume()
	if m.WriteFrame(frame()) {
		t.Fatalf("panicking write reported success")
	}
	if m.WriteEnabled() || m.Status() != StatusRecording {
		t.Fatalf("unexpected state after panic: %+v", m.Snapshot())
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("stop after panic: %v", err)
	}
}

func TestStopWaitsForInFlightWrite(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	log := &encoderLog{tune: func(e *fakeEncoder) {
		e.block = release
		e.entered = entered
	}}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	m.opts.StopTimeout = time.Second
	_ = m.StartOrResume()
	enc := log.last()

	done := make(chan bool)
	go func() { done <- m.WriteFrame(frame()) }()
	<-entered

	stopped := make(chan error)
	go func() { stopped <- m.Stop() }()
	time.Sleep(20 * time.Millisecond)
	if enc.closeCount() != 0 {
		t.Fatalf("encoder closed while a write was in flight")
	}
	close(release)
	if !<-done {
		t.Fatalf("in-flight write failed")
	}
	if err := <-stopped; err != nil {
		t.Fatalf("stop: %v", err)
	}
	if enc.closeCount() != 1 {
		t.Fatalf("encoder closed %d times", enc.closeCount())
	}
}

func TestPauseWaitsForInFlightWrite(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	log := &encoderLog{tune: func(e *fakeEncoder) {
		e.block = release
		e.entered = entered
	}}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	m.opts.StopTimeout = time.Second
	_ = m.StartOrResume()

	done := make(chan bool)
	go func() { done <- m.WriteFrame(frame()) }()
	<-entered

	paused := make(chan struct{})
	go func() {
		m.Pause()
		close(paused)
	}()
	time.Sleep(20 * time.Millisecond)
	select {
	case <-paused:
		t.Fatalf("pause returned while a write was in flight")
	default:
	}
	if m.WriteEnabled() {
		t.Fatalf("gate still open during pause")
	}
	if m.Status() != StatusRecording {
		t.Fatalf("status = %v before the write finished", m.Status())
	}

	close(release)
	if !<-done {
		t.Fatalf("in-flight write failed")
	}
	<-paused
	if m.Status() != StatusPaused {
		t.Fatalf("status = %v after pause", m.Status())
	}
	if m.WriteFrame(frame()) {
		t.Fatalf("frame written while paused")
	}
	if n := m.Snapshot().FramesWritten; n != 1 {
		t.Fatalf("frames written = %d", n)
	}
}

func TestStopTimeoutDefersClose(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	log := &encoderLog{tune: func(e *fakeEncoder) {
		e.block = release
		e.entered = entered
	}}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	_ = m.StartOrResume()
	enc := log.last()

	done := make(chan bool)
	go func() { done <- m.WriteFrame(frame()) }()
	<-entered

	if err := m.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if m.Status() != StatusStopped {
		t.Fatalf("status = %v after timed out stop", m.Status())
	}
	if enc.closeCount() != 0 {
		t.Fatalf("encoder closed under an in-flight write")
	}
	if m.AwaitClosed(10 * time.Millisecond) {
		t.Fatalf("deferred close reported done early")
	}
	if err := m.StartOrResume(); !errors.Is(err, ErrClosing) {
		t.Fatalf("expected ErrClosing, got %v", err)
	}

	close(release)
	<-done
	if !m.AwaitClosed(time.Second) {
		t.Fatalf("deferred close never finished")
	}
	if enc.closeCount() != 1 {
		t.Fatalf("encoder closed %d times", enc.closeCount())
	}
	if err := m.StartOrResume(); err != nil {
		t.Fatalf("start after deferred close: %v", err)
	}
	if log.count() != 2 {
		t.Fatalf("opened %d encoders", log.count())
	}
}

func TestNewStartWarnsButKeepsStaleFile(t *testing.T) {
	log := &encoderLog{}
	m := newTestMachine(t, &fakeRate{ready: true, fps: 20}, log)
	_ = m.StartOrResume()
	first := m.SessionFile()
	_ = m.Stop()
	m.now = func() time.Time { return time.Date(2024, 3, 9, 14, 6, 0, 0, time.UTC) }
	_ = m.StartOrResume()
	if m.SessionFile() == first {
		t.Fatalf("new session reused the old file")
	}
	if _, err := os.Stat(first); err != nil {
		t.Fatalf("stale file removed: %v", err)
	}
}

func TestExportName(t *testing.T) {
	got := ExportName(filepath.Join("rec", "temp_record_20240309_140507.avi"))
	if got != "record_20240309_140507.avi" {
		t.Fatalf("ExportName = %q", got)
	}
	if !strings.HasPrefix(TempFileName(time.Now(), Extension), "temp_record_") {
		t.Fatalf("temp name prefix missing")
	}
}
