// Package fonts provides the embedded text faces used for rendering.
//
// The Go fonts ship inside the binary via the gofont packages, so face
// loading never depends on fonts installed on the host system.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Parsed fonts (computed once on first access).
var (
	once     sync.Once
	parseErr error
	regular  *truetype.Font
	bold     *truetype.Font
)

func load() error {
	once.Do(func() {
		regular, parseErr = truetype.Parse(goregular.TTF)
		if parseErr != nil {
			return
		}
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
	return parseErr
}

// Regular returns a Go Regular face at the given pixel size.
func Regular(size float64) (font.Face, error) {
	if err := load(); err != nil {
		return nil, err
	}
	return truetype.NewFace(regular, &truetype.Options{Size: size}), nil
}

// Bold returns a Go Bold face at the given pixel size.
func Bold(size float64) (font.Face, error) {
	if err := load(); err != nil {
		return nil, err
	}
	return truetype.NewFace(bold, &truetype.Options{Size: size}), nil
}

// Face returns a regular or bold face at the given pixel size.
func Face(useBold bool, size float64) (font.Face, error) {
	if useBold {
		return Bold(size)
	}
	return Regular(size)
}

// FontFamily is the name of the embedded text face.
const FontFamily = "Go"
