// Package encoder opens the video sinks a recording session writes frames to.
package encoder

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/soocke/pixel-recorder-go/config"
	"github.com/soocke/pixel-recorder-go/domain/recording"
)

// Options selects and tunes an encoder backend.
type Options struct {
	Kind        string // config.EncoderMJPEG or config.EncoderFFmpeg
	FFmpegPath  string
	JPEGQuality int
}

// New returns a factory for the configured backend.
func New(opts Options, logger *slog.Logger) (recording.EncoderFactory, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch opts.Kind {
	case "", config.EncoderMJPEG:
		return func(path string, fps float64, width, height int) (recording.Encoder, error) {
			return OpenMJPEG(path, fps, width, height, opts.JPEGQuality, logger)
		}, nil
	case config.EncoderFFmpeg:
		return func(path string, fps float64, width, height int) (recording.Encoder, error) {
			return OpenFFmpeg(opts.FFmpegPath, path, fps, width, height, logger)
		}, nil
	default:
		return nil, fmt.Errorf("unknown encoder %q", opts.Kind)
	}
}

// containerFPS converts a measured rate into the integer rate the AVI header carries.
func containerFPS(fps float64) int {
	if math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 1
	}
	r := int(math.Round(fps))
	if r < 1 {
		return 1
	}
	return r
}
