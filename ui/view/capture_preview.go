package view

import (
	"image"

	"github.com/soocke/pixel-recorder-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the annotated preview frame.
type CapturePreview interface {
	UpdatePreview(img image.Image)
	Reset()
}

type capturePreview struct {
	label *LabelWidget
	photo *Img // current photo, deleted before it is replaced
}

// NewCapturePreview creates the preview label spanning both button columns of row.
func NewCapturePreview(row, w, h int) CapturePreview {
	photo := NewPhoto(Data(placeholder(w, h)))
	label := Label(Image(photo), Borderwidth(1), Relief("sunken"))
	Grid(label, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return &capturePreview{label: label, photo: photo}
}

func placeholder(w, h int) []byte {
	if w <= 0 || h <= 0 {
		w, h = 320, 180
	}
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
}

func (v *capturePreview) UpdatePreview(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	v.swap(NewPhoto(Data(images.EncodePNG(img))))
}

func (v *capturePreview) Reset() {
	if v == nil || v.label == nil {
		return
	}
	v.swap(NewPhoto(Data(placeholder(0, 0))))
}

func (v *capturePreview) swap(next *Img) {
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = next
	v.label.Configure(Image(next))
}
