// Package capture grabs frames of the primary display.
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/vova616/screenshot"
)

var dpiOnce sync.Once

// Screen captures a fixed rectangle of the primary display. The rectangle is
// resolved once so that every frame of a recording has the same size.
type Screen struct {
	rect image.Rectangle
}

// NewScreen resolves the primary display bounds. On Windows the process is
// marked DPI aware first so the bounds are in physical pixels.
func NewScreen() (*Screen, error) {
	dpiOnce.Do(enableDPIAwareness)
	r, err := screenshot.ScreenRect()
	if err != nil {
		return nil, fmt.Errorf("capture: screen bounds: %w", err)
	}
	if r.Empty() {
		return nil, errors.New("capture: empty screen")
	}
	return &Screen{rect: r}, nil
}

// Bounds returns the captured rectangle.
func (s *Screen) Bounds() image.Rectangle { return s.rect }

// Grab returns a newly allocated capture of the screen rectangle.
func (s *Screen) Grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(s.rect)
	if err != nil {
		return nil, err
	}
	return img, nil
}
