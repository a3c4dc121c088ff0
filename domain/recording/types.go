package recording

import (
	"errors"
	"image"
)

// Status enumerates the recording states.
type Status int

const (
	StatusStopped Status = iota
	StatusRecording
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusRecording:
		return "recording"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Label is the upper-case text drawn on preview frames.
func (s Status) Label() string {
	switch s {
	case StatusStopped:
		return "STOPPED"
	case StatusRecording:
		return "RECORDING"
	case StatusPaused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrNotReady is returned when recording is started before the first rate window completed.
	ErrNotReady = errors.New("recording: frame rate not measured yet")
	// ErrNoSessionFile is returned by export when nothing was recorded or the file vanished.
	ErrNoSessionFile = errors.New("recording: no recorded file found")
	// ErrExportCanceled is returned by export when the user dismissed the save dialog.
	ErrExportCanceled = errors.New("recording: export canceled")
)

// Encoder receives frames for one recording session.
type Encoder interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// EncoderFactory opens an encoder writing to path at the given rate and frame size.
type EncoderFactory func(path string, fps float64, width, height int) (Encoder, error)

// RateSource reports the measured capture rate.
type RateSource interface {
	Ready() bool
	MeasuredFPS() float64
}

// Snapshot is a consistent copy of the machine's shared record.
type Snapshot struct {
	Status        Status
	WriteEnabled  bool
	SessionFile   string
	EncoderOpen   bool
	EncoderFPS    float64
	FramesWritten uint64
}
