// Package social renders the Open Graph, Twitter card and square logo images.
package social

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"

	"github.com/sydlexius/siteassets/internal/config"
	"github.com/sydlexius/siteassets/internal/render"
)

// Result summarizes one generation pass.
type Result struct {
	Created   []string
	Unchanged []string
	Failed    []string
}

// Generator draws cards in the brand colors.
type Generator struct {
	start, end color.NRGBA
	text       color.NRGBA
	regular    render.FontChain
	bold       render.FontChain
	marks      render.MarkChain
	logger     *slog.Logger
}

// NewGenerator parses the brand colors and prepares the font and mark
// fallback chains.
func NewGenerator(brand config.BrandConfig, fonts config.FontsConfig, logger *slog.Logger) (*Generator, error) {
	start, err := render.ParseHex(brand.GradientStart)
	if err != nil {
		return nil, fmt.Errorf("gradient start: %w", err)
	}
	end, err := render.ParseHex(brand.GradientEnd)
	if err != nil {
		return nil, fmt.Errorf("gradient end: %w", err)
	}
	text, err := render.ParseHex(brand.Text)
	if err != nil {
		return nil, fmt.Errorf("text color: %w", err)
	}

	return &Generator{
		start:   start,
		end:     end,
		text:    text,
		regular: render.NewTextChain(fonts.Text, false),
		bold:    render.NewTextChain(fonts.Bold, true),
		marks:   render.NewMarkChain(fonts.Emoji),
		logger:  logger.With("component", "social"),
	}, nil
}

// Render draws one card. The canvas always has the card's exact size,
// whatever fonts turned out to be available.
func (g *Generator) Render(card config.CardConfig) (*render.Canvas, error) {
	c := render.VerticalGradient(card.Width, card.Height, g.start, g.end)

	if b := card.Band; b != nil {
		c.Band(b.Top, b.Bottom, b.Alpha)
	}

	m := card.Mark
	center := image.Pt(m.X, m.Y)
	if m.X == 0 {
		center.X = card.Width / 2
	}

	if m.DiscRadius > 0 {
		disc, err := render.ParseHex(m.DiscColor)
		if err != nil {
			return nil, fmt.Errorf("disc color: %w", err)
		}
		c.Disc(center, m.DiscRadius, disc)
	}

	if m.Size > 0 || m.Scale > 0 {
		markColor := g.text
		if m.Color != "" {
			parsed, err := render.ParseHex(m.Color)
			if err != nil {
				return nil, fmt.Errorf("mark color: %w", err)
			}
			markColor = parsed
		}
		used := g.marks.Draw(c, render.Mark{Center: center, Size: m.Size, Scale: m.Scale, Color: markColor}, g.logger)
		g.logger.Debug("drew mark", slog.String("card", card.Name), slog.String("renderer", used))
	}

	for _, line := range card.Lines {
		chain := g.regular
		if line.Bold {
			chain = g.bold
		}
		face, source := chain.Resolve(line.Size, g.logger)
		g.logger.Debug("text face", slog.String("card", card.Name), slog.String("font", source))
		c.DrawCenteredText(face, line.Text, line.Y, g.text)
	}

	return c, nil
}

// Generate renders every card into dir as <name>.png. A failing card is
// logged and the rest still render.
func (g *Generator) Generate(dir string, cards []config.CardConfig) Result {
	var res Result
	for _, card := range cards {
		name := card.Name + ".png"
		path := filepath.Join(dir, name)

		c, err := g.Render(card)
		if err != nil {
			g.logger.Error("render failed", slog.String("file", name), slog.String("error", err.Error()))
			res.Failed = append(res.Failed, name)
			continue
		}

		changed, err := c.WritePNG(path)
		if err != nil {
			g.logger.Error("write failed", slog.String("file", name), slog.String("error", err.Error()))
			res.Failed = append(res.Failed, name)
			continue
		}

		if changed {
			g.logger.Info("created",
				slog.String("file", path),
				slog.Int("width", card.Width),
				slog.Int("height", card.Height))
			res.Created = append(res.Created, name)
		} else {
			g.logger.Info("unchanged", slog.String("file", path))
			res.Unchanged = append(res.Unchanged, name)
		}
	}
	return res
}
