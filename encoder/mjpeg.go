package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"

	"github.com/icza/mjpeg"
)

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// MJPEG writes Motion-JPEG frames into an AVI container.
type MJPEG struct {
	aw      mjpeg.AviWriter
	path    string
	bounds  image.Rectangle
	quality int
	logger  *slog.Logger
	frames  int
}

// OpenMJPEG creates path and writes an AVI header for width x height at fps.
func OpenMJPEG(path string, fps float64, width, height, quality int, logger *slog.Logger) (*MJPEG, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	rate := containerFPS(fps)
	aw, err := mjpeg.New(path, int32(width), int32(height), int32(rate))
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("mjpeg writer opened", "file", path, "fps", rate, "width", width, "height", height)
	}
	return &MJPEG{
		aw:      aw,
		path:    path,
		bounds:  image.Rect(0, 0, width, height),
		quality: quality,
		logger:  logger,
	}, nil
}

// WriteFrame JPEG-encodes img and appends it. Frames larger than the
// session size are cropped to it.
func (m *MJPEG) WriteFrame(img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("nil frame")
	}
	var src image.Image = img
	if !img.Bounds().Size().Eq(m.bounds.Size()) {
		r := m.bounds.Add(img.Bounds().Min).Intersect(img.Bounds())
		if r.Empty() {
			return fmt.Errorf("frame %v does not cover %v", img.Bounds(), m.bounds)
		}
		src = img.SubImage(r)
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)
	if err := jpeg.Encode(buf, src, &jpeg.Options{Quality: m.quality}); err != nil {
		return fmt.Errorf("jpeg encode: %w", err)
	}
	if err := m.aw.AddFrame(buf.Bytes()); err != nil {
		return err
	}
	m.frames++
	return nil
}

// Close finalizes the AVI index and header.
func (m *MJPEG) Close() error {
	err := m.aw.Close()
	if m.logger != nil {
		m.logger.Debug("mjpeg writer closed", "file", m.path, "frames", m.frames, "error", err)
	}
	return err
}

// Frames returns the number of frames appended.
func (m *MJPEG) Frames() int { return m.frames }
