package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/vector"
)

// Rocket is the glyph the emoji renderer tries first.
const Rocket = "\U0001F680"

// ErrNoGlyph means a font loaded but cannot draw the requested glyph.
var ErrNoGlyph = errors.New("glyph not renderable")

// Mark describes where and how to draw the logo mark.
type Mark struct {
	Center image.Point
	Size   float64 // point size for glyph renderers
	Scale  float64 // multiplier for the drawn shape
	Color  color.Color
}

// MarkRenderer draws the logo mark onto a canvas.
type MarkRenderer interface {
	Name() string
	Render(c *Canvas, m Mark) error
}

// EmojiMark draws the rocket emoji from the first font that has an outline
// for it. Color bitmap fonts have no outline and are rejected.
type EmojiMark struct {
	Source FontSource
}

// Name identifies the renderer.
func (e EmojiMark) Name() string { return "emoji" }

// Render draws the rocket glyph centered on m.Center.
func (e EmojiMark) Render(c *Canvas, m Mark) error {
	face, err := e.Source.Face(m.Size)
	if err != nil {
		return err
	}
	if !hasOutline(face, []rune(Rocket)[0]) {
		return fmt.Errorf("%w: %s in %s", ErrNoGlyph, Rocket, e.Source.Name())
	}
	dot := centeredDot(face, Rocket, m.Center.X, m.Center.Y)
	drawString(c.img, face, Rocket, dot, m.Color)
	return nil
}

func hasOutline(face font.Face, r rune) bool {
	bounds, _, ok := face.GlyphBounds(r)
	if !ok {
		return false
	}
	if bounds.Max.X <= bounds.Min.X || bounds.Max.Y <= bounds.Min.Y {
		return false
	}
	// Some faces report the .notdef box for unmapped runes.
	if nb, _, nok := face.GlyphBounds(notdefProbe); nok && nb == bounds {
		return false
	}
	return true
}

// notdefProbe is a noncharacter no font maps.
const notdefProbe = '\U0010FFFF'

// RocketShape draws a rocket silhouette: a triangular nose over a
// rectangular body, 60x100 units at scale 1.
type RocketShape struct{}

// Name identifies the renderer.
func (RocketShape) Name() string { return "shape" }

// Render always succeeds.
func (RocketShape) Render(c *Canvas, m Mark) error {
	s := float32(m.Scale)
	if s <= 0 {
		s = 1
	}
	cx, cy := float32(m.Center.X), float32(m.Center.Y)

	// Nose spans [cy-50s, cy+10s], body spans [cy+10s, cy+50s].
	base := cy + 10*s
	var z vector.Rasterizer
	z.Reset(c.Width(), c.Height())
	z.MoveTo(cx-30*s, base)
	z.LineTo(cx, base-60*s)
	z.LineTo(cx+30*s, base)
	z.LineTo(cx+30*s, base+40*s)
	z.LineTo(cx-30*s, base+40*s)
	z.ClosePath()
	z.Draw(c.img, c.img.Bounds(), image.NewUniform(m.Color), image.Point{})
	return nil
}

// MarkChain tries renderers in order and reports which one drew the mark.
type MarkChain []MarkRenderer

// NewMarkChain returns the emoji renderer over the given font candidates,
// backed by the procedural shape.
func NewMarkChain(emojiPaths []string) MarkChain {
	return MarkChain{EmojiMark{Source: NewFileFont(emojiPaths...)}, RocketShape{}}
}

// Draw renders the mark with the first renderer that succeeds.
func (mc MarkChain) Draw(c *Canvas, m Mark, logger *slog.Logger) string {
	for _, r := range mc {
		if err := r.Render(c, m); err != nil {
			logger.Debug("mark renderer unavailable",
				slog.String("renderer", r.Name()),
				slog.String("error", err.Error()))
			continue
		}
		return r.Name()
	}
	_ = RocketShape{}.Render(c, m)
	return RocketShape{}.Name()
}
