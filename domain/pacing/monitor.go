package pacing

import (
	"math"
	"sync/atomic"
	"time"
)

// DefaultWindow is the number of frames per measurement window.
const DefaultWindow = 20

// Monitor measures the achieved frame rate over fixed windows of frames.
//
// Feed and Reset belong to the capture loop; Ready and MeasuredFPS may be read
// from any goroutine.
type Monitor struct {
	window      int
	count       int
	windowStart time.Time
	now         func() time.Time

	fpsBits atomic.Uint64
	ready   atomic.Bool
	windows atomic.Uint64
}

// NewMonitor returns a monitor that reports initial until the first window completes.
func NewMonitor(window int, initial float64) *Monitor {
	return newMonitor(window, initial, time.Now)
}

func newMonitor(window int, initial float64, now func() time.Time) *Monitor {
	if window <= 0 {
		window = DefaultWindow
	}
	m := &Monitor{window: window, now: now, windowStart: now()}
	m.fpsBits.Store(math.Float64bits(initial))
	return m
}

// Reset restarts the current window from now. Readiness and the last
// measurement are kept.
func (m *Monitor) Reset() {
	m.count = 0
	m.windowStart = m.now()
}

// Feed records one produced frame.
func (m *Monitor) Feed() {
	m.count++
	if m.count < m.window {
		return
	}
	now := m.now()
	elapsed := now.Sub(m.windowStart).Seconds()
	if elapsed > 0 {
		m.fpsBits.Store(math.Float64bits(float64(m.count) / elapsed))
	}
	m.ready.Store(true)
	m.windows.Add(1)
	m.count = 0
	m.windowStart = now
}

// Ready reports whether at least one window has completed.
func (m *Monitor) Ready() bool { return m.ready.Load() }

// MeasuredFPS returns the rate of the latest completed window.
func (m *Monitor) MeasuredFPS() float64 { return math.Float64frombits(m.fpsBits.Load()) }

// Windows returns the number of completed windows.
func (m *Monitor) Windows() uint64 { return m.windows.Load() }
