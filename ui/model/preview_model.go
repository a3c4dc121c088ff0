package model

import (
	"image"
	"sync/atomic"
)

// PreviewFrame is the most recent frame handed to the preview with its status label.
type PreviewFrame struct {
	Image    *image.RGBA
	Label    string
	Sequence uint64
}

// PreviewModel is the preview sink of the capture loop. Show only stores the
// frame; the preview presenter picks it up on the UI tick. Concurrency-safe.
type PreviewModel struct {
	latest atomic.Pointer[PreviewFrame]
	seq    atomic.Uint64
}

// NewPreviewModel returns an empty model.
func NewPreviewModel() *PreviewModel { return &PreviewModel{} }

// Show stores img as the latest frame. It never blocks.
func (m *PreviewModel) Show(img *image.RGBA, label string) {
	if m == nil || img == nil {
		return
	}
	m.latest.Store(&PreviewFrame{Image: img, Label: label, Sequence: m.seq.Add(1)})
}

// Latest returns the newest frame, if any.
func (m *PreviewModel) Latest() (PreviewFrame, bool) {
	if m == nil {
		return PreviewFrame{}, false
	}
	f := m.latest.Load()
	if f == nil {
		return PreviewFrame{}, false
	}
	return *f, true
}
