package presenter

import (
	"image"

	"github.com/soocke/pixel-recorder-go/domain/recording"
	"github.com/soocke/pixel-recorder-go/ui/images"
	"github.com/soocke/pixel-recorder-go/ui/model"
)

// PreviewSource yields the latest frame shown by the capture loop.
type PreviewSource interface {
	Latest() (model.PreviewFrame, bool)
}

// PreviewView displays the annotated preview image.
type PreviewView interface {
	UpdatePreview(img image.Image)
}

// PreviewPresenter downscales the latest frame, draws the status label and
// hands it to the view. Frames already shown are skipped.
type PreviewPresenter struct {
	src     PreviewSource
	view    PreviewView
	percent int
	lastSeq uint64
}

func NewPreviewPresenter(src PreviewSource, view PreviewView, percent int) *PreviewPresenter {
	return &PreviewPresenter{src: src, view: view, percent: percent}
}

// Tick renders the newest frame if it has not been rendered yet.
func (p *PreviewPresenter) Tick() {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	f, ok := p.src.Latest()
	if !ok || f.Sequence == p.lastSeq {
		return
	}
	p.lastSeq = f.Sequence
	p.view.UpdatePreview(Annotate(f, p.percent))
}

// Annotate returns a scaled copy of the frame with its label drawn on it.
func Annotate(f model.PreviewFrame, percent int) *image.RGBA {
	if f.Image == nil {
		return nil
	}
	out := images.ScalePercent(f.Image, percent)
	images.DrawLabel(out, f.Label, images.LabelColor(f.Label == recording.StatusRecording.Label()))
	return out
}
