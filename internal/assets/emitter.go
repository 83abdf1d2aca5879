package assets

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"path/filepath"
	"unicode"

	ico "github.com/sergeymakinen/go-ico"

	"github.com/sydlexius/siteassets/internal/filesystem"
)

// Failure records an asset that could not be written.
type Failure struct {
	Name string
	Err  error
}

// Result summarizes one emit pass.
type Result struct {
	Created   []string
	Unchanged []string
	Failed    []Failure
}

// OK reports whether every asset was written or already up to date.
func (r Result) OK() bool { return len(r.Failed) == 0 }

// Decode strips all whitespace from a base64 text blob and decodes it.
func Decode(blob []byte) ([]byte, error) {
	clean := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, blob)

	out := make([]byte, base64.StdEncoding.DecodedLen(len(clean)))
	n, err := base64.StdEncoding.Decode(out, clean)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	return out[:n], nil
}

// Transform rewrites decoded bytes before they are written.
type Transform func([]byte) ([]byte, error)

// DecodeAndWrite decodes blob, applies transforms in order and writes the
// bytes to dest, replacing any existing file. It reports whether the file
// changed on disk.
func DecodeAndWrite(blob []byte, dest string, transforms ...Transform) (bool, error) {
	data, err := Decode(blob)
	if err != nil {
		return false, err
	}
	for _, t := range transforms {
		if data, err = t(data); err != nil {
			return false, err
		}
	}
	return filesystem.WriteIfChanged(dest, data, 0o644)
}

// Emitter decodes assets from a resource filesystem into a directory.
type Emitter struct {
	resources fs.FS
	logger    *slog.Logger
}

// NewEmitter creates an Emitter reading base64 resources from fsys.
func NewEmitter(fsys fs.FS, logger *slog.Logger) *Emitter {
	return &Emitter{resources: fsys, logger: logger.With("component", "emitter")}
}

// Emit writes every asset into dir. A failing asset is logged and recorded
// in the result; the remaining assets are still processed.
func (e *Emitter) Emit(dir string, list []Asset) Result {
	var res Result
	for _, a := range list {
		dest := filepath.Join(dir, a.Name)
		changed, digest, err := e.emitOne(dest, a)
		if err != nil {
			e.logger.Error("asset failed",
				slog.String("file", a.Name),
				slog.String("error", err.Error()))
			res.Failed = append(res.Failed, Failure{Name: a.Name, Err: err})
			continue
		}
		if changed {
			e.logger.Info("created", slog.String("file", dest), slog.String("digest", digest))
			res.Created = append(res.Created, a.Name)
		} else {
			e.logger.Info("unchanged", slog.String("file", dest), slog.String("digest", digest))
			res.Unchanged = append(res.Unchanged, a.Name)
		}
	}
	return res
}

// emitOne writes a single asset and returns the short digest of the bytes
// on disk.
func (e *Emitter) emitOne(dest string, a Asset) (bool, string, error) {
	blob, err := readResource(e.resources, a.Source)
	if err != nil {
		return false, "", err
	}

	transforms := []Transform{func(data []byte) ([]byte, error) {
		e.checkSize(a, data)
		return data, nil
	}}
	switch a.Kind {
	case KindPNG, "":
	case KindICO:
		transforms = append(transforms, wrapICO)
	default:
		return false, "", fmt.Errorf("unsupported asset kind %q", a.Kind)
	}

	var digest string
	transforms = append(transforms, func(data []byte) ([]byte, error) {
		digest = filesystem.DigestHex(data)
		return data, nil
	})

	changed, err := DecodeAndWrite(blob, dest, transforms...)
	return changed, digest, err
}

// checkSize logs when the decoded image does not match the declared size.
// This is expected for the reused Android placeholders.
func (e *Emitter) checkSize(a Asset, data []byte) {
	if a.Width == 0 || a.Height == 0 {
		return
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		e.logger.Debug("resource is not a decodable image",
			slog.String("file", a.Name),
			slog.String("error", err.Error()))
		return
	}
	if cfg.Width != a.Width || cfg.Height != a.Height {
		e.logger.Debug("placeholder size differs from declared size",
			slog.String("file", a.Name),
			slog.Int("declared_width", a.Width),
			slog.Int("declared_height", a.Height),
			slog.Int("width", cfg.Width),
			slog.Int("height", cfg.Height))
	}
}

// wrapICO re-encodes PNG bytes as a single-image ICO file.
func wrapICO(pngData []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decoding png for ico: %w", err)
	}
	var buf bytes.Buffer
	if err := ico.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding ico: %w", err)
	}
	return buf.Bytes(), nil
}
