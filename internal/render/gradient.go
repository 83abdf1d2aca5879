package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseHex parses a #rrggbb (or #rgb) color into an opaque NRGBA.
func ParseHex(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// VerticalGradient returns a canvas filled top to bottom with a linear blend
// from start to end. Row 0 is exactly start and the last row exactly end.
func VerticalGradient(width, height int, start, end color.Color) *Canvas {
	c := NewCanvas(width, height)
	if width <= 0 || height <= 0 {
		return c
	}

	from, _ := colorful.MakeColor(opaque(start))
	to, _ := colorful.MakeColor(opaque(end))

	img := c.img
	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		r, g, b := from.BlendRgb(to, t).RGB255()

		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < len(row); x += 4 {
			row[x+0] = r
			row[x+1] = g
			row[x+2] = b
			row[x+3] = 255
		}
	}
	return c
}

// opaque drops alpha; MakeColor refuses fully transparent input.
func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}
