package view

import (
	"fmt"
	"time"

	"github.com/soocke/pixel-recorder-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows the recorded time of the current session and the total.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
}

type sessionStats struct {
	sessionLbl *TLabelWidget
	totalLbl   *TLabelWidget
}

// NewSessionStats creates session and total duration labels in a grid layout.
// The session label is placed at (row, startCol) and total label at (row, startCol+1).
// If parent is nil, labels are positioned relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: TLabel(Width(16), Style(theme.StyleMutedLabel)), totalLbl: TLabel(Width(16), Style(theme.StyleMutedLabel))}
	// Position session label
	if parent != nil {
		Grid(s.sessionLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	} else {
		Grid(s.sessionLbl, Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	}
	// Position total label
	if parent != nil {
		Grid(s.totalLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	} else {
		Grid(s.totalLbl, Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(0)))
	s.totalLbl.Configure(Txt("Total: " + clock(0)))
	return s
}

// SetSession updates the session duration display.
func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(d)))
}

// SetTotal updates the total duration display.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

// clock formats d as mm:ss, or h:mm:ss past the hour.
func clock(d time.Duration) string {
	secs := int(d.Seconds())
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
