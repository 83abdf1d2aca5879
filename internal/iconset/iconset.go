// Package iconset fills in icon sizes the site manifest references but no
// generator draws, by copying an existing icon under the missing name.
//
// No resizing happens: icon-72x72.png is a byte copy of the 180x180 apple
// touch icon. Browsers scale it; the declared size is only a name.
package iconset

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png" // manifest sources are PNGs
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	_ "golang.org/x/image/webp" // register WebP decoder for size probing

	"github.com/sydlexius/siteassets/internal/filesystem"
)

// Pair maps a target file name to the source it is copied from.
type Pair struct {
	Target string
	Source string
}

// Manifest is the ordered list of copies to perform.
type Manifest []Pair

// Result summarizes one copy pass.
type Result struct {
	Created []string
	Skipped []string // source missing
	Failed  []string // I/O error
}

var sizePattern = regexp.MustCompile(`(\d+)x(\d+)`)

// DeclaredSize extracts the WxH size embedded in a file name such as
// icon-72x72.png. ok is false when the name carries no size.
func DeclaredSize(name string) (w, h int, ok bool) {
	m := sizePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	return w, h, true
}

// Copy performs every copy in the manifest relative to dir. A missing
// source is logged as a warning and skipped; nothing aborts the batch.
func Copy(dir string, manifest Manifest, logger *slog.Logger) Result {
	logger = logger.With("component", "iconset")
	var res Result

	for _, p := range manifest {
		src := filepath.Join(dir, p.Source)
		dst := filepath.Join(dir, p.Target)

		if !filesystem.Exists(src) {
			logger.Warn("source file not found",
				slog.String("target", p.Target),
				slog.String("source", p.Source))
			res.Skipped = append(res.Skipped, p.Target)
			continue
		}

		if err := filesystem.CopyFile(src, dst); err != nil {
			logger.Error("copy failed",
				slog.String("target", p.Target),
				slog.String("source", p.Source),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, p.Target)
			continue
		}

		warnSizeMismatch(logger, dst, p)
		logger.Info("created",
			slog.String("file", p.Target),
			slog.String("copied_from", p.Source))
		res.Created = append(res.Created, p.Target)
	}

	return res
}

// warnSizeMismatch flags copies whose real dimensions differ from the size
// in their name. The copy is kept; it is a placeholder by design.
func warnSizeMismatch(logger *slog.Logger, path string, p Pair) {
	wantW, wantH, ok := DeclaredSize(p.Target)
	if !ok {
		return
	}
	gotW, gotH, err := dimensions(path)
	if err != nil {
		logger.Debug("cannot probe copied icon",
			slog.String("file", p.Target),
			slog.String("error", err.Error()))
		return
	}
	if gotW != wantW || gotH != wantH {
		logger.Warn("placeholder size mismatch",
			slog.String("file", p.Target),
			slog.String("declared", fmt.Sprintf("%dx%d", wantW, wantH)),
			slog.String("actual", fmt.Sprintf("%dx%d", gotW, gotH)))
	}
}

func dimensions(path string) (int, int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: manifest target inside the icons dir
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
