package render

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrFontUnavailable means a font source could not produce a face.
var ErrFontUnavailable = errors.New("font unavailable")

// FontSource produces a face at a given point size.
type FontSource interface {
	Name() string
	Face(size float64) (font.Face, error)
}

// FileFont loads the first readable font among candidate paths. TrueType,
// OpenType and .ttc collections are accepted; collections use their first
// member.
type FileFont struct {
	Paths []string

	parsed *opentype.Font
	path   string
	tried  bool
}

// NewFileFont returns a FileFont over the given candidate paths.
func NewFileFont(paths ...string) *FileFont {
	return &FileFont{Paths: paths}
}

// Name reports the resolved path, or "file" before resolution.
func (f *FileFont) Name() string {
	if f.path != "" {
		return f.path
	}
	return "file"
}

// Face returns a face from the first parseable candidate.
func (f *FileFont) Face(size float64) (font.Face, error) {
	if !f.tried {
		f.tried = true
		for _, p := range f.Paths {
			parsed, err := parseFontFile(p)
			if err != nil {
				continue
			}
			f.parsed, f.path = parsed, p
			break
		}
	}
	if f.parsed == nil {
		return nil, fmt.Errorf("%w: none of %d candidates loaded", ErrFontUnavailable, len(f.Paths))
	}
	return newFace(f.parsed, size)
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: configured font candidate
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("ttcf")) {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing collection %s: %w", path, err)
		}
		return coll.Font(0)
	}
	return opentype.Parse(data)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face: %w", err)
	}
	return face, nil
}

// GoFont is the Go font family compiled into the binary.
type GoFont struct {
	Bold bool

	parsed *opentype.Font
}

// Name identifies the embedded face.
func (g *GoFont) Name() string {
	if g.Bold {
		return "go-bold"
	}
	return "go-regular"
}

// Face parses the embedded TTF once and returns a sized face.
func (g *GoFont) Face(size float64) (font.Face, error) {
	if g.parsed == nil {
		ttf := goregular.TTF
		if g.Bold {
			ttf = gobold.TTF
		}
		parsed, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFontUnavailable, err)
		}
		g.parsed = parsed
	}
	return newFace(g.parsed, size)
}

// BasicFont is the fixed 7x13 bitmap face. It ignores size and never fails.
type BasicFont struct{}

// Name identifies the bitmap face.
func (BasicFont) Name() string { return "basic-7x13" }

// Face returns basicfont.Face7x13.
func (BasicFont) Face(float64) (font.Face, error) { return basicfont.Face7x13, nil }

// FontChain tries sources in order; the first to produce a face wins.
type FontChain []FontSource

// NewTextChain builds the usual chain: configured files, the embedded Go
// font, then the bitmap face.
func NewTextChain(paths []string, bold bool) FontChain {
	return FontChain{NewFileFont(paths...), &GoFont{Bold: bold}, BasicFont{}}
}

// Resolve returns the first available face. The bitmap fallback guarantees
// a face as long as the chain ends with BasicFont.
func (fc FontChain) Resolve(size float64, logger *slog.Logger) (font.Face, string) {
	for _, src := range fc {
		face, err := src.Face(size)
		if err != nil {
			logger.Debug("font source unavailable",
				slog.String("source", src.Name()),
				slog.String("error", err.Error()))
			continue
		}
		return face, src.Name()
	}
	return basicfont.Face7x13, BasicFont{}.Name()
}
