package capture

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

const captureStatsLogInterval = 5 * time.Second

// ErrRunning is returned when Run is called on a loop that is already running.
var ErrRunning = errors.New("capture: loop already running")

// Service is the capture/record loop. Each iteration grabs a frame, feeds the
// rate monitor, offers the frame to the writer, shows it on the preview with
// the status label, checks the cancel signal and waits for the next deadline.
type Service struct {
	logger *slog.Logger
	deps   Deps

	running      atomic.Bool
	latest       atomic.Pointer[FrameSnapshot]
	captures     atomic.Uint64
	skipped      atomic.Uint64
	written      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	lastStats    time.Time
}

// NewService constructs a loop over deps. Grabber, Writer, Pacer and Rate are required.
func NewService(logger *slog.Logger, deps Deps) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{logger: logger, deps: deps}
}

// Run executes the loop until ctx is done or the cancel signal fires. On cancel
// OnCancel is invoked once before Run returns.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.running.Store(false)

	s.deps.Rate.Reset()
	s.lastStats = time.Now()
	s.logger.Info("capture loop started")
	defer s.logger.Info("capture loop stopped", "captures", s.captures.Load(), "written", s.written.Load())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if !s.step() {
			return nil
		}
	}
}

// step runs one iteration and reports whether the loop continues.
func (s *Service) step() bool {
	start := time.Now()
	img, err := s.deps.Grabber.Grab()
	if err != nil || img == nil {
		s.skipped.Add(1)
		if err != nil {
			s.logger.Error("capture frame", "error", err)
		}
	} else {
		s.captures.Add(1)
		s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
		seq := s.sequence.Add(1)
		s.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})

		s.deps.Rate.Feed()
		if s.deps.Writer.WriteFrame(img) {
			s.written.Add(1)
		}
		s.show(img)
	}

	if s.deps.Cancel != nil && s.deps.Cancel.Cancelled() {
		s.logger.Info("cancel requested; scheduling export and exit")
		if s.deps.OnCancel != nil {
			s.deps.OnCancel()
		}
		return false
	}

	if time.Since(s.lastStats) >= captureStatsLogInterval {
		s.lastStats = time.Now()
		s.logStats()
	}
	s.deps.Pacer.Wait()
	return true
}

func (s *Service) show(img *image.RGBA) {
	if s.deps.Preview == nil {
		return
	}
	defer recoverLog(s.logger, "preview sink panic")
	s.deps.Preview.Show(img, s.deps.Writer.Status().Label())
}

// Running reports whether Run is active.
func (s *Service) Running() bool { return s.running.Load() }

// LatestFrame returns the most recent captured frame.
func (s *Service) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

// Stats returns loop counters.
func (s *Service) Stats() CaptureStats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		Captures:       captures,
		Skipped:        s.skipped.Load(),
		Written:        s.written.Load(),
		AvgCapture:     avg,
		LastCapture:    snapshot.CapturedAt,
		LatestFrameAge: age,
		Sequence:       snapshot.Sequence,
	}
}

func (s *Service) logStats() {
	stats := s.Stats()
	attrs := []any{
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"written", stats.Written,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
		"sequence", stats.Sequence,
		"last_capture", stats.LastCapture,
	}
	if f, ok := s.deps.Writer.(interface{ WriteFailures() uint64 }); ok {
		attrs = append(attrs, "write_failures", f.WriteFailures())
	}
	if r, ok := s.deps.Rate.(interface{ MeasuredFPS() float64 }); ok {
		attrs = append(attrs, "measured_fps", r.MeasuredFPS())
	}
	s.logger.Debug("capture.stats", attrs...)
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		logger.Error(msg, "error", r)
	}
}
