package capture

import (
	"image"

	"github.com/soocke/pixel-recorder-go/domain/recording"
)

// FrameGrabber produces one frame of the fixed capture size per call.
type FrameGrabber interface {
	Grab() (*image.RGBA, error)
}

// FrameWriter is the recording side the loop forwards frames to.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) bool
	Status() recording.Status
}

// PreviewSink receives every frame with the current status label. Show must not block.
type PreviewSink interface {
	Show(img *image.RGBA, label string)
}

// CancelSignal reports an external request to finish (e.g. a hotkey).
type CancelSignal interface {
	Cancelled() bool
}

// Pacer blocks until the next frame is due.
type Pacer interface {
	Wait()
}

// RateFeeder consumes one event per produced frame.
type RateFeeder interface {
	Feed()
	Reset()
}

// Deps bundles the collaborators of a Service. Preview and Cancel are optional.
type Deps struct {
	Grabber FrameGrabber
	Writer  FrameWriter
	Preview PreviewSink
	Cancel  CancelSignal
	Pacer   Pacer
	Rate    RateFeeder
	// OnCancel schedules the export-and-exit command on the foreground actor.
	OnCancel func()
}
