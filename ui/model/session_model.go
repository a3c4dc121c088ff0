package model

import (
	"time"
)

// SessionModel tracks how long the current recording has been running and the
// recorded time accumulated across recordings. Paused time is not counted.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	running  bool          // currently recording
	segStart time.Time     // start of the running segment
	session  time.Duration // recorded time of the current session, excluding the running segment
	total    time.Duration // recorded time of finished sessions
	open     bool          // a session exists (recording or paused)
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick advances the model. recording reports whether frames are being
// recorded; open reports whether a session exists (recording or paused).
func (m *SessionModel) OnTick(recording, open bool, now time.Time) {
	if m == nil {
		return
	}
	if !m.open && open { // new session
		m.open = true
		m.session = 0
	}
	switch {
	case recording && !m.running:
		m.running = true
		m.segStart = now
	case !recording && m.running:
		m.session += now.Sub(m.segStart)
		m.running = false
	}
	if m.open && !open { // session ended
		m.total += m.session
		m.open = false
	}
}

// Values returns the current session duration and the total recorded duration.
// Both include the running segment.
func (m *SessionModel) Values(now time.Time) (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.session
	if m.running {
		session += now.Sub(m.segStart)
	}
	total = m.total
	if m.open {
		total += session
	}
	return session, total
}
