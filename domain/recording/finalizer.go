package recording

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Prompter asks the user about exporting a finished recording.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(title, message string) bool
	// PromptSave asks for a destination path. ok is false when the user cancels.
	PromptSave(defaultName, sourcePath string) (chosen string, ok bool, err error)
}

// Notifier shows short user-facing notices.
type Notifier interface {
	Info(title, message string)
	Error(title, message string)
}

// closeRetries bounds the extra wait, in stop timeouts, for a deferred encoder
// close before export_and_exit gives up on the file.
const closeRetries = 4

// Finalizer closes recordings, hands them to the export collaborator and
// removes files the user does not keep. It runs on the foreground actor.
type Finalizer struct {
	rec      *Machine
	prompt   Prompter
	notify   Notifier
	logger   *slog.Logger
	shutdown func()
	once     sync.Once
}

// NewFinalizer returns a finalizer for rec. shutdown is invoked (once) by ExportAndExit.
func NewFinalizer(rec *Machine, prompt Prompter, notify Notifier, logger *slog.Logger, shutdown func()) *Finalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Finalizer{rec: rec, prompt: prompt, notify: notify, logger: logger, shutdown: shutdown}
}

// Export prompts for a destination and renames the session file there.
// On a chosen path the session file reference is cleared whether or not the
// rename succeeded; a failed rename deletes the temp file. On cancel the file
// and reference are kept and ErrExportCanceled is returned.
func (f *Finalizer) Export() error {
	src := f.rec.SessionFile()
	if src == "" || !fileExists(src) {
		f.info("Export Error", "No recorded file found.")
		return ErrNoSessionFile
	}
	if f.prompt == nil {
		return ErrExportCanceled
	}
	dst, ok, err := f.prompt.PromptSave(ExportName(src), src)
	if err != nil {
		f.logger.Error("save dialog failed", "error", err)
		f.error("Export Error", err.Error())
		return fmt.Errorf("save dialog: %w", err)
	}
	if !ok || dst == "" {
		f.info("Canceled", "Temp file kept:\n"+src)
		return ErrExportCanceled
	}
	defer f.rec.ClearSessionFile()
	if err := os.Rename(src, dst); err != nil {
		f.logger.Error("export rename failed", "from", src, "to", dst, "error", err)
		f.error("Export Error", err.Error())
		f.discard(src)
		return fmt.Errorf("export %s: %w", src, err)
	}
	f.logger.Info("recording exported", "file", dst)
	f.info("Export Successful", "Saved:\n"+dst)
	return nil
}

// ExportAndExit stops the recording, offers the session file for export,
// deletes it when it is not exported and signals shutdown. A file whose encoder
// is still closing is left on disk untouched. It is safe to call more than once.
func (f *Finalizer) ExportAndExit() {
	if err := f.rec.Stop(); err != nil {
		f.logger.Error("stop before export failed", "error", err)
	}
	if !f.rec.AwaitClosed(f.rec.opts.StopTimeout) &&
		!f.rec.AwaitClosed(closeRetries*f.rec.opts.StopTimeout) {
		src := f.rec.SessionFile()
		f.logger.Warn("encoder still closing; export skipped", "file", src)
		f.error("Export Error", "Recording is still being finalized.\nTemp file kept:\n"+src)
		f.exit()
		return
	}

	if src := f.rec.SessionFile(); src != "" && fileExists(src) {
		if f.prompt != nil && f.prompt.Confirm("Export Recording", "Export recorded video?") {
			if err := f.Export(); err != nil && !errors.Is(err, ErrExportCanceled) {
				f.logger.Warn("export failed; discarding recording", "error", err)
			}
		}
		if left := f.rec.SessionFile(); left != "" && fileExists(left) {
			f.discard(left)
		}
	}
	f.rec.ClearSessionFile()
	f.exit()
}

func (f *Finalizer) exit() {
	f.once.Do(func() {
		f.logger.Info("shutting down")
		if f.shutdown != nil {
			f.shutdown()
		}
	})
}

func (f *Finalizer) discard(path string) {
	if !fileExists(path) {
		return
	}
	if err := os.Remove(path); err != nil {
		f.logger.Error("remove temp recording failed", "file", path, "error", err)
		return
	}
	f.logger.Info("temp recording removed", "file", path)
}

func (f *Finalizer) info(title, msg string) {
	if f.notify != nil {
		f.notify.Info(title, msg)
	}
}

func (f *Finalizer) error(title, msg string) {
	if f.notify != nil {
		f.notify.Error(title, msg)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
