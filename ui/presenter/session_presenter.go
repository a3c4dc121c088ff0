package presenter

import (
	"time"

	"github.com/soocke/pixel-recorder-go/domain/recording"
	"github.com/soocke/pixel-recorder-go/ui/model"
)

// SessionView displays formatted session and total durations.
type SessionView interface {
	SetSession(session, total time.Duration)
}

// SessionPresenter formats recorded durations from the model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	src  SnapshotSource
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, src SnapshotSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, src: src, view: view}
}

// Tick advances the session model from the recorder status and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.src == nil || p.view == nil {
		return
	}
	st := p.src.Snapshot().Status
	p.sess.OnTick(st == recording.StatusRecording, st != recording.StatusStopped, now)
	p.view.SetSession(p.sess.Values(now))
}
