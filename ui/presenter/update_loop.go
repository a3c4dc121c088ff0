package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It ticks the sub-presenters and invokes a scheduler callback. The zero
// value is usable (methods are nil-safe).
type Loop struct {
	Status   *StatusPresenter
	Session  *SessionPresenter
	Preview  *PreviewPresenter
	Schedule func()
}

func NewLoop(status *StatusPresenter, sess *SessionPresenter, preview *PreviewPresenter, schedule func()) *Loop {
	return &Loop{Status: status, Session: sess, Preview: preview, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	l.Status.Tick()
	l.Session.Tick(now)
	l.Preview.Tick()
	if l.Schedule != nil {
		l.Schedule()
	}
}
