package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/pixel-recorder-go/config"
	"github.com/soocke/pixel-recorder-go/debug"
	"github.com/soocke/pixel-recorder-go/domain/capture"
	"github.com/soocke/pixel-recorder-go/domain/pacing"
	"github.com/soocke/pixel-recorder-go/domain/recording"
	"github.com/soocke/pixel-recorder-go/encoder"
	"github.com/soocke/pixel-recorder-go/ui/model"
	"github.com/soocke/pixel-recorder-go/ui/presenter"
)

const (
	debugStatsInterval = 5 * time.Second
	loopExitTimeout    = 2 * time.Second
)

// FrameSource is the screen the loop records.
type FrameSource interface {
	Grab() (*image.RGBA, error)
	Bounds() image.Rectangle
}

// Dialogs combines the export prompts and user notices.
type Dialogs interface {
	recording.Prompter
	recording.Notifier
}

// CancelWatcher is a cancel signal with a lifecycle, such as the global hotkey.
type CancelWatcher interface {
	capture.CancelSignal
	Start()
	Stop()
}

// Deps are the platform collaborators of the container.
type Deps struct {
	Source  FrameSource
	Dialogs Dialogs
	Cancel  CancelWatcher            // optional
	Encoder recording.EncoderFactory // optional; built from config when nil
	Preview bool                     // feed frames to a PreviewModel
}

// AppContainer assembles models, services and presenters.
type AppContainer struct {
	Config *config.Config
	Logger *slog.Logger

	Monitor   *pacing.Monitor
	Recorder  *recording.Machine
	Finalizer *recording.Finalizer
	Loop      *capture.Service
	Commands  *CommandQueue
	Control   *presenter.ControlPresenter
	Preview   *model.PreviewModel
	Session   *model.SessionModel
	Dialogs   Dialogs
	FrameSize image.Point

	cancelSig CancelWatcher
	ctx       context.Context
	stop      context.CancelFunc
	loopDone  chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// BuildContainer constructs all components. Nothing runs until Start.
func BuildContainer(parent context.Context, cfg *config.Config, logger *slog.Logger, deps Deps) (*AppContainer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("app: no frame source")
	}
	_ = cfg.Validate()

	open := deps.Encoder
	if open == nil {
		var err error
		open, err = encoder.New(encoder.Options{
			Kind:        cfg.Encoder,
			FFmpegPath:  cfg.FFmpegPath,
			JPEGQuality: cfg.JPEGQuality,
		}, logger.With("component", "encoder"))
		if err != nil {
			return nil, err
		}
	}

	ctx, stop := context.WithCancel(parent)
	c := &AppContainer{Config: cfg, Logger: logger, Dialogs: deps.Dialogs, cancelSig: deps.Cancel, ctx: ctx, stop: stop}

	bounds := deps.Source.Bounds()
	c.FrameSize = bounds.Size()
	c.Monitor = pacing.NewMonitor(cfg.RateWindow, cfg.TargetFPS)
	c.Recorder = recording.NewMachine(logger.With("component", "recording"), c.Monitor, open, recording.Options{
		OutputDir:   cfg.OutputDir,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		StopTimeout: cfg.StopTimeout(),
	})
	c.Finalizer = recording.NewFinalizer(c.Recorder, deps.Dialogs, deps.Dialogs, logger, stop)
	c.Commands = NewCommandQueue(logger)
	c.Control = presenter.NewControlPresenter(c.Recorder, c.Finalizer, deps.Dialogs, logger)
	c.Session = model.NewSessionModel()

	loopDeps := capture.Deps{
		Grabber:  deps.Source,
		Writer:   c.Recorder,
		Pacer:    pacing.NewController(cfg.TargetFPS),
		Rate:     c.Monitor,
		OnCancel: func() { c.Commands.Post(c.Control.ExportAndExit) },
	}
	if deps.Cancel != nil {
		loopDeps.Cancel = deps.Cancel
	}
	if deps.Preview {
		c.Preview = model.NewPreviewModel()
		loopDeps.Preview = c.Preview
	}
	c.Loop = capture.NewService(logger.With("component", "capture"), loopDeps)
	return c, nil
}

// Context is done once shutdown has been requested.
func (c *AppContainer) Context() context.Context { return c.ctx }

// Shutdown requests shutdown without exporting.
func (c *AppContainer) Shutdown() { c.stop() }

// Post schedules a command on the foreground actor.
func (c *AppContainer) Post(fn func()) bool { return c.Commands.Post(fn) }

// Start launches the foreground actor, the capture loop, the cancel watcher
// and, in debug mode, the stats logger.
func (c *AppContainer) Start() {
	c.startOnce.Do(func() {
		c.loopDone = make(chan struct{})
		go c.Commands.Run(c.ctx)
		go func() {
			defer close(c.loopDone)
			defer recoverLog(c.Logger, "capture loop panic")
			if err := c.Loop.Run(c.ctx); err != nil {
				c.Logger.Error("capture loop", "error", err)
			}
		}()
		if c.cancelSig != nil {
			c.cancelSig.Start()
		}
		if c.Config.Debug {
			debug.StartStatsLogger(c.ctx, debugStatsInterval, c.Logger, c.loopStats)
		}
	})
}

func (c *AppContainer) loopStats() []any {
	st := c.Loop.Stats()
	snap := c.Recorder.Snapshot()
	return []any{
		"captures", st.Captures,
		"written", st.Written,
		"write_failures", c.Recorder.WriteFailures(),
		"measured_fps", c.Monitor.MeasuredFPS(),
		"status", snap.Status.String(),
	}
}

// Close stops everything. A recording still open is stopped so its file is
// finalized; the file stays on disk.
func (c *AppContainer) Close() {
	c.closeOnce.Do(func() {
		c.stop()
		if c.cancelSig != nil {
			c.cancelSig.Stop()
		}
		if c.loopDone != nil {
			select {
			case <-c.loopDone:
			case <-time.After(loopExitTimeout):
				c.Logger.Warn("capture loop did not exit in time")
			}
		}
		if err := c.Recorder.Stop(); err != nil {
			c.Logger.Error("stop on close", "error", err)
		}
		c.Recorder.AwaitClosed(c.Config.StopTimeout())
		if f := c.Recorder.SessionFile(); f != "" {
			c.Logger.Warn("recording left unexported", "file", f)
		}
	})
}
