package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ShadowColor is the drop shadow drawn under every text line.
var ShadowColor = color.NRGBA{A: 128}

// ShadowOffset is how far the shadow sits right of and below the text.
const ShadowOffset = 1

// DrawCenteredText draws text horizontally centered on the canvas with its
// ink box vertically centered on centerY. The shadow goes down first.
func (c *Canvas) DrawCenteredText(face font.Face, text string, centerY int, fg color.Color) {
	if text == "" {
		return
	}
	dot := centeredDot(face, text, c.Width()/2, centerY)

	shadow := dot.Add(fixed.P(ShadowOffset, ShadowOffset))
	drawString(c.img, face, text, shadow, ShadowColor)
	drawString(c.img, face, text, dot, fg)
}

// centeredDot returns the baseline origin that centers the ink box of text
// on (cx, cy).
func centeredDot(face font.Face, text string, cx, cy int) fixed.Point26_6 {
	bounds, _ := font.BoundString(face, text)
	inkW := bounds.Max.X - bounds.Min.X
	inkH := bounds.Max.Y - bounds.Min.Y

	x := fixed.I(cx) - inkW/2 - bounds.Min.X
	y := fixed.I(cy) - inkH/2 - bounds.Min.Y
	return fixed.Point26_6{X: x, Y: y}
}

func drawString(dst *image.NRGBA, face font.Face, text string, dot fixed.Point26_6, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  dot,
	}
	d.DrawString(text)
}
