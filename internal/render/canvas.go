// Package render draws the procedural site images: gradients, translucent
// bands, centered text with a drop shadow and the rocket mark.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"github.com/sydlexius/siteassets/internal/filesystem"
)

// Canvas is an in-memory pixel buffer that lives for one image.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas returns a transparent canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// Image exposes the underlying buffer.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Band alpha-composites a black strip covering rows [top, bottom) across the
// full width, darkening the background so text stays legible.
func (c *Canvas) Band(top, bottom int, alpha uint8) {
	if bottom <= top || alpha == 0 {
		return
	}
	strip := imaging.New(c.Width(), bottom-top, color.NRGBA{A: 255})
	c.img = imaging.Overlay(c.img, strip, image.Pt(0, top), float64(alpha)/255)
}

// kappa places cubic control points so four segments approximate a circle.
const kappa = 0.5522847498

// Disc fills an anti-aliased circle.
func (c *Canvas) Disc(center image.Point, radius int, col color.Color) {
	if radius <= 0 {
		return
	}
	cx, cy, r := float32(center.X), float32(center.Y), float32(radius)
	k := r * kappa

	var z vector.Rasterizer
	z.Reset(c.Width(), c.Height())
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
	z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

// EncodePNG returns the canvas as PNG bytes at best compression.
func (c *Canvas) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, c.img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePNG encodes the canvas and writes it to path, creating the parent
// directory. It reports whether the file changed on disk.
func (c *Canvas) WritePNG(path string) (bool, error) {
	data, err := c.EncodePNG()
	if err != nil {
		return false, err
	}
	return filesystem.WriteIfChanged(path, data, 0o644)
}
