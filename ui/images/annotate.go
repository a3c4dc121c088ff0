package images

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label colours for the preview overlay.
var (
	LabelRed   = color.RGBA{R: 255, A: 255}
	LabelGreen = color.RGBA{G: 255, A: 255}
)

// LabelOrigin is the baseline origin of the overlay text.
var LabelOrigin = image.Pt(10, 30)

// DrawLabel draws text onto img in place at LabelOrigin. Each glyph is
// stamped twice one pixel apart so it stays legible on busy frames.
func DrawLabel(img *image.RGBA, text string, c color.Color) {
	if img == nil || text == "" {
		return
	}
	origin := img.Bounds().Min.Add(LabelOrigin)
	for dx := 0; dx < 2; dx++ {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(origin.X+dx, origin.Y),
		}
		d.DrawString(text)
	}
}

// LabelColor returns red while recording and green otherwise.
func LabelColor(recording bool) color.RGBA {
	if recording {
		return LabelRed
	}
	return LabelGreen
}
