package source

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
)

// Raster inputs carry no physical size, so pixel dimensions are mapped to
// points at the CSS reference density of 96 DPI.
const pointsPerPixel = 72.0 / 96.0

// ImageSource decodes PNG and JPEG inputs. A single file becomes a
// one-page document, a directory becomes one document with a page per
// image file, ordered by natural filename sort so slide_2 comes before
// slide_10.
type ImageSource struct{}

// Decode implements Source.
func (s *ImageSource) Decode(ctx context.Context, path string) (*Decoded, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "input %q", path)
	}
	if info.IsDir() {
		return s.decodeDir(ctx, path)
	}

	page, err := decodeImageFile(path)
	if err != nil {
		return nil, err
	}
	return &Decoded{Name: docName(path), Pages: []Page{page}}, nil
}

func (s *ImageSource) decodeDir(ctx context.Context, dir string) (*Decoded, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read directory %q", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeDecodeFailure, "no image files in %q", dir)
	}

	sort.Slice(names, func(i, j int) bool { return naturalLess(names[i], names[j]) })

	pages := make([]Page, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := decodeImageFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	return &Decoded{Name: docName(dir), Pages: pages}, nil
}

func decodeImageFile(path string) (Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, errors.Wrap(errors.ErrCodeNotFound, err, "read %q", path)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Page{}, errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode %q", path)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Page{}, errors.New(errors.ErrCodeDecodeFailure, "image %q has no area", path)
	}

	return Page{
		Size: layout.Size{
			Width:  float64(cfg.Width) * pointsPerPixel,
			Height: float64(cfg.Height) * pointsPerPixel,
		},
		Image: compose.Image{Data: data, Format: format},
	}, nil
}

// naturalLess orders strings so embedded numbers compare numerically.
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		ad, bd := isDigit(a[0]), isDigit(b[0])
		switch {
		case ad && bd:
			an, arest := splitNumber(a)
			bn, brest := splitNumber(b)
			if an != bn {
				return numberLess(an, bn)
			}
			a, b = arest, brest
		case ad != bd:
			return a[0] < b[0]
		default:
			if a[0] != b[0] {
				return a[0] < b[0]
			}
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// splitNumber peels the leading digit run off s, stripping leading zeros.
func splitNumber(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	num := strings.TrimLeft(s[:i], "0")
	if num == "" {
		num = "0"
	}
	return num, s[i:]
}

// numberLess compares two digit strings without leading zeros numerically.
func numberLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
