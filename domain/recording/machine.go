package recording

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosing is returned by StartOrResume while a previous encoder is still being torn down.
var ErrClosing = errors.New("recording: previous session still closing")

const defaultStopTimeout = 500 * time.Millisecond

// Options configures the output of a Machine.
type Options struct {
	OutputDir   string
	Extension   string
	Width       int
	Height      int
	StopTimeout time.Duration // bound on waiting for an in-flight write during Stop
}

// session is one open encoder destination.
type session struct {
	enc    Encoder
	path   string
	fps    float64
	width  int
	height int
	frames atomic.Uint64
}

// Machine holds the recording status, the write gate, the encoder session and
// the session file. Transitions are meant for a single foreground actor and are
// serialized; the capture loop only calls WriteFrame and the read accessors.
type Machine struct {
	logger *slog.Logger
	rate   RateSource
	open   EncoderFactory
	opts   Options
	now    func() time.Time

	cmdMu sync.Mutex // serializes transitions

	mu      sync.Mutex // guards the shared record below
	status  Status
	gate    bool
	session *session
	file    string

	// writeSlot is held by the capture loop for the duration of a write and by
	// Stop while the encoder is closed.
	writeSlot chan struct{}
	closed    chan struct{} // non-nil while a deferred close is pending; guarded by mu

	written  atomic.Uint64
	failures atomic.Uint64
}

// NewMachine returns a stopped machine.
func NewMachine(logger *slog.Logger, rate RateSource, open EncoderFactory, opts Options) *Machine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Extension == "" {
		opts.Extension = Extension
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	return &Machine{
		logger:    logger,
		rate:      rate,
		open:      open,
		opts:      opts,
		now:       time.Now,
		status:    StatusStopped,
		writeSlot: make(chan struct{}, 1),
	}
}

// StartOrResume opens a new session when stopped, or reopens the write gate when paused.
// It returns ErrNotReady when no rate measurement exists yet. Calling it while
// recording is a no-op.
func (m *Machine) StartOrResume() error {
	m.cmdMu.Lock()
	defer m.cmdMu.Unlock()

	m.mu.Lock()
	prev := m.status
	if prev == StatusPaused {
		m.gate = true
		m.status = StatusRecording
		file := m.file
		m.mu.Unlock()
		m.logger.Info("recording resumed", "file", file)
		m.logTransition(prev, StatusRecording)
		return nil
	}
	m.mu.Unlock()
	if prev != StatusStopped {
		return nil
	}

	if m.rate == nil || !m.rate.Ready() {
		return ErrNotReady
	}
	if !m.AwaitClosed(m.opts.StopTimeout) {
		return ErrClosing
	}
	if m.open == nil {
		return errors.New("recording: no encoder configured")
	}
	fps := m.rate.MeasuredFPS()
	if err := os.MkdirAll(m.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(m.opts.OutputDir, TempFileName(m.now(), m.opts.Extension))
	enc, err := m.open(path, fps, m.opts.Width, m.opts.Height)
	if err != nil {
		return fmt.Errorf("open encoder %s: %w", path, err)
	}
	sess := &session{enc: enc, path: path, fps: fps, width: m.opts.Width, height: m.opts.Height}

	m.mu.Lock()
	stale := m.file
	m.session = sess
	m.file = path
	m.gate = true
	m.status = StatusRecording
	m.mu.Unlock()

	if stale != "" && stale != path {
		m.logger.Warn("previous recording was not exported", "file", stale)
	}
	m.logger.Info("recording started", "file", path, "fps", fps, "width", sess.width, "height", sess.height)
	m.logTransition(prev, StatusRecording)
	return nil
}

// Pause closes the write gate, waits for an in-flight write to finish and then
// marks the machine paused. Only valid while recording.
func (m *Machine) Pause() {
	m.cmdMu.Lock()
	defer m.cmdMu.Unlock()

	m.mu.Lock()
	if m.status != StatusRecording {
		m.mu.Unlock()
		return
	}
	m.gate = false
	m.mu.Unlock()

	if m.acquireWriteSlot(m.opts.StopTimeout) {
		m.releaseWriteSlot()
	} else {
		m.logger.Warn("frame write did not complete before pause", "timeout", m.opts.StopTimeout)
	}

	m.mu.Lock()
	m.status = StatusPaused
	m.mu.Unlock()
	m.logTransition(StatusRecording, StatusPaused)
}

// Stop closes the write gate, waits for an in-flight write to acknowledge, closes
// the encoder and marks the machine stopped. The session file stays on disk.
// Stop is a no-op when already stopped.
func (m *Machine) Stop() error {
	m.cmdMu.Lock()
	defer m.cmdMu.Unlock()

	m.mu.Lock()
	m.gate = false
	prev := m.status
	sess := m.session
	m.mu.Unlock()
	if prev == StatusStopped {
		return nil
	}

	var closeErr error
	if m.acquireWriteSlot(m.opts.StopTimeout) {
		if sess != nil {
			closeErr = sess.enc.Close()
		}
		m.releaseWriteSlot()
	} else if sess != nil {
		m.logger.Warn("frame write did not complete in time; deferring encoder close",
			"file", sess.path, "timeout", m.opts.StopTimeout)
		m.deferClose(sess)
	}

	m.mu.Lock()
	m.session = nil
	m.status = StatusStopped
	m.mu.Unlock()

	if sess != nil {
		m.logger.Info("recording stopped", "file", sess.path, "frames", sess.frames.Load())
	}
	m.logTransition(prev, StatusStopped)
	if closeErr != nil {
		return fmt.Errorf("close encoder: %w", closeErr)
	}
	return nil
}

// deferClose closes sess once the in-flight write releases the slot.
func (m *Machine) deferClose(sess *session) {
	done := make(chan struct{})
	m.mu.Lock()
	m.closed = done
	m.mu.Unlock()
	go func() {
		defer close(done)
		m.writeSlot <- struct{}{}
		defer m.releaseWriteSlot()
		if err := sess.enc.Close(); err != nil {
			m.logger.Error("deferred encoder close failed", "file", sess.path, "error", err)
		}
	}()
}

// Status returns the current status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// WriteEnabled reports the write gate.
func (m *Machine) WriteEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gate
}

// SessionFile returns the path being written or pending export, if any.
func (m *Machine) SessionFile() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file
}

// ClearSessionFile forgets the session file without touching the disk.
func (m *Machine) ClearSessionFile() {
	m.mu.Lock()
	m.file = ""
	m.mu.Unlock()
}

// Snapshot returns a consistent copy of the shared record.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{Status: m.status, WriteEnabled: m.gate, SessionFile: m.file}
	if m.session != nil {
		s.EncoderOpen = true
		s.EncoderFPS = m.session.fps
		s.FramesWritten = m.session.frames.Load()
	}
	return s
}

// Written returns the number of frames handed to encoders since construction.
func (m *Machine) Written() uint64 { return m.written.Load() }

// WriteFailures returns the number of failed writes since construction.
func (m *Machine) WriteFailures() uint64 { return m.failures.Load() }

func (m *Machine) logTransition(prev, next Status) {
	m.logger.Debug("recording state transition", "from", prev.String(), "to", next.String())
}
