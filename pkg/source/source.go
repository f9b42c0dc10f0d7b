// Package source decodes input documents into pages that the layout and
// compose packages can work with.
//
// A Source turns one input path (a PDF file, a single image, or a directory
// of images) into a Decoded document: the document name, a physical size per
// page, and a raster image per page. ForFile picks the right Source for a
// path by extension, DecodeAll runs a whole batch and assembles the flat
// image set keyed by document and page index.
//
// All sizes are in PDF points. Raster inputs are assumed to be 96 DPI and
// converted accordingly.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
)

// Page is one decoded slide: its physical size in points and the raster
// image used to draw it.
type Page struct {
	Size  layout.Size
	Image compose.Image
}

// Decoded is the result of decoding one input document.
type Decoded struct {
	Name  string
	Pages []Page
}

// Source decodes a single input path into a document.
type Source interface {
	Decode(ctx context.Context, path string) (*Decoded, error)
}

// ForFile returns the Source responsible for the given path. Directories
// and raster image files are handled by the image source, .pdf files by the
// PDF source. Anything else is rejected as unsupported.
func ForFile(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "input %q", path)
	}
	if info.IsDir() {
		return &ImageSource{}, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return &PDFSource{}, nil
	case ".png", ".jpg", ".jpeg":
		return &ImageSource{}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported input format %q", filepath.Ext(path))
	}
}

// DecodeAll decodes every path in order and assembles the documents plus
// the flat image set the composer consumes. Document indices in the image
// set match the position of the path in the input slice.
func DecodeAll(ctx context.Context, paths []string) ([]layout.Document, compose.ImageSet, error) {
	documents := make([]layout.Document, 0, len(paths))
	images := make(compose.ImageSet)

	for di, path := range paths {
		src, err := ForFile(path)
		if err != nil {
			return nil, nil, err
		}
		decoded, err := src.Decode(ctx, path)
		if err != nil {
			return nil, nil, err
		}

		doc := layout.Document{
			Name:  decoded.Name,
			Pages: make([]layout.Size, len(decoded.Pages)),
		}
		for pi, page := range decoded.Pages {
			doc.Pages[pi] = page.Size
			images[layout.PageRef{Doc: di, Page: pi}] = page.Image
		}
		documents = append(documents, doc)
	}

	return documents, images, nil
}

// docName derives the document name shown in the index from a path.
func docName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
