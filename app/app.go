package app

import (
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/pixel-recorder-go/ui/presenter"
	"github.com/soocke/pixel-recorder-go/ui/theme"
	"github.com/soocke/pixel-recorder-go/ui/view"
)

const tick = 100 * time.Millisecond

// GUI is the Tk front end. Buttons and the window close post commands to
// the foreground actor; presenters poll the recorder on every tick.
type GUI struct {
	c       *AppContainer
	title   string
	root    *view.RootView
	loop    *presenter.Loop
	afterID string
	closing bool
}

// NewGUI returns a GUI over c. c must have been built with Deps.Preview set.
func NewGUI(c *AppContainer, title string) *GUI {
	return &GUI{c: c, title: title}
}

// Run builds the window, starts the container and blocks until the window is destroyed.
func (g *GUI) Run() {
	App.WmTitle(g.title)
	theme.InitStyles()
	WmProtocol(App, "WM_DELETE_WINDOW", g.post(g.c.Control.ExportAndExit))

	pw, ph := g.previewSize()
	g.root = view.NewRootView(g.c.Logger)
	g.root.Build(view.Commands{
		Start:      g.post(g.c.Control.Start),
		Pause:      g.post(g.c.Control.Pause),
		Stop:       g.post(g.c.Control.Stop),
		ExportExit: g.post(g.c.Control.ExportAndExit),
	}, pw, ph)

	status := presenter.NewStatusPresenter(g.c.Recorder, g.root)
	session := presenter.NewSessionPresenter(g.c.Session, g.c.Recorder, g.root)
	var preview *presenter.PreviewPresenter
	if g.c.Preview != nil {
		preview = presenter.NewPreviewPresenter(g.c.Preview, g.root, g.c.Config.PreviewScale)
	}
	g.loop = presenter.NewLoop(status, session, preview, g.scheduleUpdate)

	g.c.Start()
	g.scheduleUpdate()
	App.Wait()
	g.c.Close()
}

func (g *GUI) post(fn func()) func() {
	return func() { g.c.Post(fn) }
}

func (g *GUI) previewSize() (int, int) {
	pct := g.c.Config.PreviewScale
	return g.c.FrameSize.X * pct / 100, g.c.FrameSize.Y * pct / 100
}

func (g *GUI) update() {
	if g.closing {
		return
	}
	if g.c.Context().Err() != nil {
		g.exit()
		return
	}
	g.loop.Tick()
}

func (g *GUI) exit() {
	g.closing = true
	if g.afterID != "" {
		TclAfterCancel(g.afterID)
	}
	Destroy(App)
}

func (g *GUI) scheduleUpdate() {
	// TclAfter keeps updates on Tk's event loop thread.
	g.afterID = TclAfter(tick, func() { g.update() })
}
