package presenter

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/soocke/pixel-recorder-go/domain/recording"
	"github.com/soocke/pixel-recorder-go/ui/images"
	"github.com/soocke/pixel-recorder-go/ui/model"
)

type mockPreviewView struct {
	last    image.Image
	updates int
}

func (v *mockPreviewView) UpdatePreview(img image.Image) {
	v.last = img
	v.updates++
}

func TestPreviewPresenter_ScalesOncePerFrame(t *testing.T) {
	src := model.NewPreviewModel()
	view := &mockPreviewView{}
	p := NewPreviewPresenter(src, view, 25)

	p.Tick()
	if view.updates != 0 {
		t.Fatalf("updated without a frame")
	}
	src.Show(image.NewRGBA(image.Rect(0, 0, 400, 200)), recording.StatusRecording.Label())
	p.Tick()
	p.Tick()
	if view.updates != 1 {
		t.Fatalf("updates = %d, want 1", view.updates)
	}
	b := view.last.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("preview size = %v", b)
	}
}

func TestAnnotateColours(t *testing.T) {
	frame := model.PreviewFrame{Image: image.NewRGBA(image.Rect(0, 0, 200, 60)), Label: "PAUSED"}
	out := Annotate(frame, 100)
	if countColor(out, images.LabelGreen) == 0 || countColor(out, images.LabelRed) != 0 {
		t.Fatalf("paused label must be green")
	}
	frame.Label = "RECORDING"
	out = Annotate(frame, 100)
	if countColor(out, images.LabelRed) == 0 {
		t.Fatalf("recording label must be red")
	}
}

func TestSessionPresenter_FollowsStatus(t *testing.T) {
	src := &mockSnapshot{}
	view := &mockSessionView{}
	p := NewSessionPresenter(model.NewSessionModel(), src, view)
	base := time.Unix(0, 0)
	src.s.Status = recording.StatusRecording
	p.Tick(base)
	p.Tick(base.Add(4 * time.Second))
	if view.session != 4*time.Second {
		t.Fatalf("session = %v", view.session)
	}
	src.s.Status = recording.StatusStopped
	p.Tick(base.Add(6 * time.Second))
	if view.total != 4*time.Second {
		t.Fatalf("total = %v", view.total)
	}
}

func countColor(img *image.RGBA, c color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

type mockSessionView struct{ session, total time.Duration }

func (v *mockSessionView) SetSession(s, t time.Duration) { v.session, v.total = s, t }
