// Package dialog implements the export prompts and user notices with native dialogs.
package dialog

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/soocke/pixel-recorder-go/domain/recording"
)

// Dialogs shows native dialogs through zenity. The zero value is usable.
type Dialogs struct {
	Logger *slog.Logger
}

// New returns dialogs logging through logger.
func New(logger *slog.Logger) *Dialogs { return &Dialogs{Logger: logger} }

var aviFilters = zenity.FileFilters{
	{Name: "AVI Video", Patterns: []string{"*" + recording.Extension}, CaseFold: true},
	{Name: "All files", Patterns: []string{"*"}},
}

// Confirm asks a yes/no question. Any failure counts as "no".
func (d *Dialogs) Confirm(title, message string) bool {
	err := zenity.Question(message, zenity.Title(title), zenity.QuestionIcon, zenity.OKLabel("Yes"), zenity.CancelLabel("No"))
	if err != nil && !errors.Is(err, zenity.ErrCanceled) {
		d.log("question dialog failed", err)
	}
	return err == nil
}

// PromptSave asks for the export destination, starting in the directory of
// sourcePath. A name without extension gets the recording extension.
func (d *Dialogs) PromptSave(defaultName, sourcePath string) (string, bool, error) {
	start := defaultName
	if dir := filepath.Dir(sourcePath); dir != "" {
		start = filepath.Join(dir, defaultName)
	}
	path, err := zenity.SelectFileSave(
		zenity.Title("Save Recorded Video"),
		zenity.Filename(start),
		zenity.ConfirmOverwrite(),
		aviFilters,
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	path = withExtension(path, recording.Extension)
	if path == "" {
		return "", false, nil
	}
	return path, true, nil
}

// Info shows an informational notice.
func (d *Dialogs) Info(title, message string) {
	if err := zenity.Info(message, zenity.Title(title), zenity.InfoIcon); err != nil && !errors.Is(err, zenity.ErrCanceled) {
		d.log("info dialog failed", err)
	}
}

// Error shows an error notice.
func (d *Dialogs) Error(title, message string) {
	if err := zenity.Error(message, zenity.Title(title), zenity.ErrorIcon); err != nil && !errors.Is(err, zenity.ErrCanceled) {
		d.log("error dialog failed", err)
	}
}

func (d *Dialogs) log(msg string, err error) {
	if d != nil && d.Logger != nil {
		d.Logger.Warn(msg, "error", err)
	}
}

func withExtension(path, ext string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.Ext(path) != "" {
		return path
	}
	return path + ext
}

var (
	_ recording.Prompter = (*Dialogs)(nil)
	_ recording.Notifier = (*Dialogs)(nil)
)
