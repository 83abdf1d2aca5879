package render

import (
	"fmt"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RasterizeSVG renders an SVG document scaled to width x height. Elements
// oksvg does not support, such as <text>, are skipped.
func RasterizeSVG(r io.Reader, width, height int) (*Canvas, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	c := NewCanvas(width, height)
	scanner := rasterx.NewScannerGV(width, height, c.img, c.img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return c, nil
}

