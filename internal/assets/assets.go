// Package assets emits the favicon set from compiled-in base64 resources.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
)

//go:embed data/*.b64
var embedded embed.FS

// ErrUnknownResource is returned when an asset names a resource that is not
// present in the resource filesystem.
var ErrUnknownResource = errors.New("unknown embedded resource")

// Kind selects the container written for an asset.
type Kind string

// Supported asset kinds.
const (
	KindPNG Kind = "png"
	KindICO Kind = "ico"
)

// Asset is one file to emit: destination name, declared pixel size and the
// base64 resource it is decoded from.
type Asset struct {
	Name   string
	Width  int
	Height int
	Source string
	Kind   Kind
}

// Resources returns the embedded favicon resources, rooted so that asset
// Source values are plain file names.
func Resources() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// data/ is compiled in; Sub only fails on an invalid dir name.
		panic(err)
	}
	return sub
}

// FaviconSet returns the favicons written into the icons directory.
//
// The 192x192 and 512x512 Android icons reuse the 180x180 resource without
// resizing. They are placeholders until real artwork exists, and the size
// mismatch is logged rather than corrected.
func FaviconSet() []Asset {
	return []Asset{
		{Name: "favicon-16x16.png", Width: 16, Height: 16, Source: "favicon-16x16.png.b64", Kind: KindPNG},
		{Name: "favicon-32x32.png", Width: 32, Height: 32, Source: "favicon-32x32.png.b64", Kind: KindPNG},
		{Name: "apple-touch-icon.png", Width: 180, Height: 180, Source: "apple-touch-icon.png.b64", Kind: KindPNG},
		{Name: "android-chrome-192x192.png", Width: 192, Height: 192, Source: "apple-touch-icon.png.b64", Kind: KindPNG},
		{Name: "android-chrome-512x512.png", Width: 512, Height: 512, Source: "apple-touch-icon.png.b64", Kind: KindPNG},
		{Name: "favicon.ico", Width: 32, Height: 32, Source: "favicon-32x32.png.b64", Kind: KindICO},
	}
}

func readResource(fsys fs.FS, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
		}
		return nil, fmt.Errorf("reading resource %s: %w", name, err)
	}
	return data, nil
}
