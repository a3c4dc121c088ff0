package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/pixel-recorder-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Commands are the button handlers of the root view.
type Commands struct {
	Start      func()
	Pause      func()
	Stop       func()
	ExportExit func()
}

// RootView composes the recorder window: status line, the four command
// buttons in a 2x2 grid, session durations and the preview.
type RootView struct {
	logger *slog.Logger

	Session     SessionStats
	CapturePrev CapturePreview

	StatusLabel *TLabelWidget
	startBtn    *TButtonWidget
	pauseBtn    *TButtonWidget
	stopBtn     *TButtonWidget
	exportBtn   *TButtonWidget
}

func NewRootView(logger *slog.Logger) *RootView {
	return &RootView{logger: logger}
}

// Build constructs the layout. previewW and previewH size the preview placeholder.
func (rv *RootView) Build(cmds Commands, previewW, previewH int) {
	if rv == nil {
		return
	}
	rv.StatusLabel = TLabel(Txt("Status: Stopped"), Style(theme.StyleStatusLabel), Font(theme.StatusFont...), Foreground("green"))
	Grid(rv.StatusLabel, Row(0), Column(0), Columnspan(2), Pady("2m"))

	rv.startBtn = TButton(Txt("START"), Width(15), Style(theme.StylePrimaryButton), Command(cmds.Start))
	rv.pauseBtn = TButton(Txt("PAUSE"), Width(15), Command(cmds.Pause))
	rv.stopBtn = TButton(Txt("STOP"), Width(15), Style(theme.StyleDangerButton), Command(cmds.Stop))
	rv.exportBtn = TButton(Txt("EXPORT / EXIT"), Width(15), Command(cmds.ExportExit))
	Grid(rv.startBtn, Row(1), Column(0), Padx("1m"), Pady("1m"))
	Grid(rv.pauseBtn, Row(1), Column(1), Padx("1m"), Pady("1m"))
	Grid(rv.stopBtn, Row(2), Column(0), Padx("1m"), Pady("1m"))
	Grid(rv.exportBtn, Row(2), Column(1), Padx("1m"), Pady("1m"))

	rv.Session = NewSessionStats(nil, 3, 0)
	rv.CapturePrev = NewCapturePreview(4, previewW, previewH)
	rv.SetButtons(true, false, false, true)
}

// SetStatus updates the status line text and colour.
func (rv *RootView) SetStatus(text, color string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text), Foreground(color))
	}
}

// SetButtons enables or disables the command buttons.
func (rv *RootView) SetButtons(start, pause, stop, export bool) {
	if rv == nil || rv.startBtn == nil {
		return
	}
	setEnabled(rv.startBtn, start)
	setEnabled(rv.pauseBtn, pause)
	setEnabled(rv.stopBtn, stop)
	setEnabled(rv.exportBtn, export)
}

func setEnabled(b *TButtonWidget, on bool) {
	state := "disabled"
	if on {
		state = "normal"
	}
	b.Configure(State(state))
}

// UpdatePreview proxies to the preview view.
func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdatePreview(img)
	}
}

// SetSession updates the session and total durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}
