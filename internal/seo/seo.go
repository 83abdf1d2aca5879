// Package seo writes the search and social placeholder images, the social
// redirect page and the rasterized brand mark.
package seo

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sydlexius/siteassets/internal/assets"
	"github.com/sydlexius/siteassets/internal/config"
	"github.com/sydlexius/siteassets/internal/filesystem"
	"github.com/sydlexius/siteassets/internal/render"
)

//go:embed data
var embedded embed.FS

const (
	markSource = "logo-mark.svg"
	markSize   = 512

	// Letter placement inside the 512px mark.
	letter        = "P"
	letterSize    = 280
	letterCenterY = 240
)

// Options carries the directories and brand settings for one run.
type Options struct {
	ImagesDir string
	IconsDir  string
	Brand     config.BrandConfig
	Fonts     config.FontsConfig

	// Exclude names placeholders another generator renders for real.
	Exclude []string
}

// Result summarizes one SEO pass.
type Result struct {
	Images assets.Result

	// Outcomes for everything written besides the placeholders.
	Created   []string
	Unchanged []string
	Failed    []string
	Skipped   []string
}

// OK reports whether nothing failed.
func (r Result) OK() bool { return r.Images.OK() && len(r.Failed) == 0 }

// Placeholders returns the SEO images emitted from embedded resources.
func Placeholders() []assets.Asset {
	return []assets.Asset{
		{Name: "logo.png", Width: 200, Height: 200, Source: "logo.png.b64", Kind: assets.KindPNG},
		{Name: "og-image.png", Width: 1200, Height: 630, Source: "og-image.png.b64", Kind: assets.KindPNG},
		{Name: "twitter-card.png", Width: 1200, Height: 600, Source: "twitter-card.png.b64", Kind: assets.KindPNG},
	}
}

func placeholders(exclude []string) []assets.Asset {
	all := Placeholders()
	if len(exclude) == 0 {
		return all
	}
	out := all[:0]
	for _, a := range all {
		if !slices.Contains(exclude, a.Name) {
			out = append(out, a)
		}
	}
	return out
}

// Resources returns the embedded SEO data files.
func Resources() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Editable SVG sources copied next to the images they describe. The
// favicon-emoji variant goes to the icons directory.
var (
	imageSources = []string{"logo.svg", "og-image.svg", "twitter-card.svg", "screenshot.svg"}
	iconSources  = []string{"favicon-emoji.svg"}
)

type step struct {
	name string
	dir  string
	fn   func(string) (bool, error)
}

// Generate creates the images directory when missing and writes the
// placeholders, social.html, logo-mark.png, the SVG sources and
// favicon.svg. Only a failure
// to create the images directory is returned; everything else is recorded
// in the result.
func Generate(opts Options, logger *slog.Logger) (Result, error) {
	logger = logger.With("component", "seo")
	var res Result

	if err := os.MkdirAll(opts.ImagesDir, 0o755); err != nil {
		return res, fmt.Errorf("creating images directory: %w", err)
	}

	res.Images = assets.NewEmitter(Resources(), logger).Emit(opts.ImagesDir, placeholders(opts.Exclude))

	steps := []step{
		{"social.html", opts.ImagesDir, func(p string) (bool, error) { return writeSocialPage(p, opts) }},
		{"logo-mark.png", opts.ImagesDir, func(p string) (bool, error) { return writeMark(p, opts, logger) }},
		{"favicon.svg", opts.IconsDir, copyResource(markSource)},
	}
	for _, name := range imageSources {
		steps = append(steps, step{name, opts.ImagesDir, copyResource(path.Join("sources", name))})
	}
	for _, name := range iconSources {
		steps = append(steps, step{name, opts.IconsDir, copyResource(path.Join("sources", name))})
	}
	for _, s := range steps {
		if s.dir == "" {
			logger.Debug("no output directory configured", slog.String("file", s.name))
			res.Skipped = append(res.Skipped, s.name)
			continue
		}
		dest := filepath.Join(s.dir, s.name)
		changed, err := s.fn(dest)
		if err != nil {
			logger.Error("asset failed", slog.String("file", s.name), slog.String("error", err.Error()))
			res.Failed = append(res.Failed, s.name)
			continue
		}
		if changed {
			logger.Info("created", slog.String("file", dest))
			res.Created = append(res.Created, s.name)
		} else {
			logger.Info("unchanged", slog.String("file", dest))
			res.Unchanged = append(res.Unchanged, s.name)
		}
	}

	return res, nil
}

var socialPage = template.Must(template.New("social").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <meta property="og:image" content="{{.OGImage}}">
    <meta property="twitter:image" content="{{.TwitterImage}}">
    <meta http-equiv="refresh" content="0; url={{.Redirect}}">
</head>
<body>
    <p>Redirecting to {{.Title}}...</p>
</body>
</html>
`))

type socialData struct {
	Title        string
	OGImage      string
	TwitterImage string
	Redirect     string
}

// imageURL builds the public URL of a file in the images directory.
func imageURL(siteURL, imagesDir, name string) string {
	base := strings.TrimSuffix(siteURL, "/")
	return base + "/" + filepath.Base(imagesDir) + "/" + name
}

func renderSocialPage(opts Options) ([]byte, error) {
	redirect := opts.Brand.SiteURL
	if redirect == "" {
		redirect = "/"
	}
	data := socialData{
		Title:        opts.Brand.Name,
		OGImage:      imageURL(opts.Brand.SiteURL, opts.ImagesDir, "og-image.png"),
		TwitterImage: imageURL(opts.Brand.SiteURL, opts.ImagesDir, "twitter-card.png"),
		Redirect:     redirect,
	}
	var buf bytes.Buffer
	if err := socialPage.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering social page: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSocialPage(dest string, opts Options) (bool, error) {
	page, err := renderSocialPage(opts)
	if err != nil {
		return false, err
	}
	return filesystem.WriteIfChanged(dest, page, 0o644)
}

// renderMark rasterizes the brand mark and letters it with the first
// available bold font. The SVG rasterizer does not draw text.
func renderMark(opts Options, logger *slog.Logger) (*render.Canvas, error) {
	f, err := Resources().Open(markSource)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", markSource, err)
	}
	defer f.Close() //nolint:errcheck

	c, err := render.RasterizeSVG(f, markSize, markSize)
	if err != nil {
		return nil, err
	}

	accent, err := render.ParseHex(opts.Brand.Accent)
	if err != nil {
		return nil, fmt.Errorf("accent color: %w", err)
	}
	face, source := render.NewTextChain(opts.Fonts.Bold, true).Resolve(letterSize, logger)
	logger.Debug("mark letter face", slog.String("font", source))
	c.DrawCenteredText(face, letter, letterCenterY, accent)
	return c, nil
}

func writeMark(dest string, opts Options, logger *slog.Logger) (bool, error) {
	c, err := renderMark(opts, logger)
	if err != nil {
		return false, err
	}
	return c.WritePNG(dest)
}

// copyResource returns a step writing the embedded file name unchanged.
func copyResource(name string) func(string) (bool, error) {
	return func(dest string) (bool, error) {
		data, err := fs.ReadFile(Resources(), name)
		if err != nil {
			return false, fmt.Errorf("reading %s: %w", name, err)
		}
		return filesystem.WriteIfChanged(dest, data, 0o644)
	}
}
