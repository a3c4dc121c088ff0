package presenter

import (
	"github.com/soocke/pixel-recorder-go/domain/recording"
)

// Status label colours.
const (
	ColorStopped   = "green"
	ColorRecording = "red"
	ColorPaused    = "orange"
	ColorReady     = "blue"
)

// SnapshotSource provides a consistent view of the recorder.
type SnapshotSource interface {
	Snapshot() recording.Snapshot
}

// StatusView shows the status line and the command button states.
type StatusView interface {
	SetStatus(text, color string)
	SetButtons(start, pause, stop, export bool)
}

// StatusPresenter reflects the recording status on the view. It only touches
// the view when the derived presentation changes.
type StatusPresenter struct {
	src  SnapshotSource
	view StatusView
	last *statusState
}

type statusState struct {
	text, color               string
	start, pause, stop, exprt bool
}

func NewStatusPresenter(src SnapshotSource, view StatusView) *StatusPresenter {
	return &StatusPresenter{src: src, view: view}
}

// Tick re-reads the snapshot and pushes changes to the view.
func (p *StatusPresenter) Tick() {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	st := deriveStatus(p.src.Snapshot())
	if p.last != nil && *p.last == st {
		return
	}
	p.last = &st
	p.view.SetStatus("Status: "+st.text, st.color)
	p.view.SetButtons(st.start, st.pause, st.stop, st.exprt)
}

func deriveStatus(s recording.Snapshot) statusState {
	switch s.Status {
	case recording.StatusRecording:
		return statusState{text: "Recording...", color: ColorRecording, pause: true, stop: true, exprt: true}
	case recording.StatusPaused:
		return statusState{text: "Paused", color: ColorPaused, start: true, stop: true, exprt: true}
	default:
		if s.SessionFile != "" {
			return statusState{text: "Stopped (Ready to Export)", color: ColorReady, start: true, exprt: true}
		}
		return statusState{text: "Stopped", color: ColorStopped, start: true, exprt: true}
	}
}
