package presenter

import (
	"errors"
	"log/slog"

	"github.com/soocke/pixel-recorder-go/domain/recording"
)

// Recorder is the command surface of the recording state machine.
type Recorder interface {
	StartOrResume() error
	Pause()
	Stop() error
}

// Exporter finishes a session and exits.
type Exporter interface {
	ExportAndExit()
}

// Notifier shows short notices to the user.
type Notifier interface {
	Info(title, message string)
	Error(title, message string)
}

// ControlPresenter maps the user commands onto the recorder and reports
// recoverable failures to the user. All methods run on the foreground actor.
type ControlPresenter struct {
	rec    Recorder
	exp    Exporter
	notify Notifier
	logger *slog.Logger
}

func NewControlPresenter(rec Recorder, exp Exporter, notify Notifier, logger *slog.Logger) *ControlPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ControlPresenter{rec: rec, exp: exp, notify: notify, logger: logger}
}

// Start starts or resumes recording. A missing rate measurement is reported
// as a "try again" notice and changes nothing.
func (c *ControlPresenter) Start() {
	if c == nil || c.rec == nil {
		return
	}
	err := c.rec.StartOrResume()
	switch {
	case err == nil:
	case errors.Is(err, recording.ErrNotReady):
		c.logger.Info("start refused; rate not measured yet")
		c.info("Please wait", "Measuring FPS… Try again in 2 seconds.")
	case errors.Is(err, recording.ErrClosing):
		c.logger.Warn("start refused; previous recording still closing")
		c.info("Please wait", "Finishing the previous recording… Try again shortly.")
	default:
		c.logger.Error("start recording failed", "error", err)
		c.error("Recording Error", err.Error())
	}
}

// Pause pauses recording.
func (c *ControlPresenter) Pause() {
	if c == nil || c.rec == nil {
		return
	}
	c.rec.Pause()
}

// Stop stops recording and keeps the file for export.
func (c *ControlPresenter) Stop() {
	if c == nil || c.rec == nil {
		return
	}
	if err := c.rec.Stop(); err != nil {
		c.logger.Error("stop recording failed", "error", err)
		c.error("Recording Error", err.Error())
	}
}

// ExportAndExit stops, offers the export and shuts down.
func (c *ControlPresenter) ExportAndExit() {
	if c == nil || c.exp == nil {
		return
	}
	c.exp.ExportAndExit()
}

func (c *ControlPresenter) info(title, msg string) {
	if c.notify != nil {
		c.notify.Info(title, msg)
	}
}

func (c *ControlPresenter) error(title, msg string) {
	if c.notify != nil {
		c.notify.Error(title, msg)
	}
}
