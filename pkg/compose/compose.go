// Package compose turns layout plans into drawable pages.
//
// A [DrawablePage] is a flat list of draw instructions: place this image at
// this rectangle, put this text at this baseline. Composition makes no
// layout decisions; it only resolves each cell's page reference against
// the supplied image set and fails loudly when the contract between the
// planner and the image supplier is broken.
package compose

import (
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
)

// Image is one decoded source page: raw encoded bytes plus the registered
// image format ("png", "jpeg").
type Image struct {
	Data   []byte
	Format string
}

// ImageSet maps source page references to their images. Page sources
// produce one entry per decoded page.
type ImageSet map[layout.PageRef]Image

// ImageOp places one image at a rectangle. Coordinates are in points,
// origin at the top-left of the page, y growing down.
type ImageOp struct {
	Ref    layout.PageRef
	Image  Image
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// TextOp places one run of text. Y is the baseline position. When
// RightAlign is set, X is the right edge of the text instead of the left.
type TextOp struct {
	Text       string
	X          float64
	Y          float64
	Size       float64
	Bold       bool
	RightAlign bool
}

// DrawablePage is one fully composed output page, ready for a sink.
type DrawablePage struct {
	Width  float64
	Height float64
	Images []ImageOp
	Texts  []TextOp
}

// Compose resolves one planned page against the supplied images.
//
// A cell whose reference is absent from images is a contract violation
// between the planner and the image supplier, not a user error: Compose
// returns a MISSING_IMAGE error and no partial page.
func Compose(page layout.Page, images ImageSet) (DrawablePage, error) {
	out := DrawablePage{
		Width:  page.Width,
		Height: page.Height,
		Images: make([]ImageOp, 0, len(page.Cells)),
	}

	for _, cell := range page.Cells {
		img, ok := images[cell.Ref]
		if !ok {
			return DrawablePage{}, errors.New(errors.ErrCodeMissingImage,
				"no image for document %d page %d", cell.Ref.Doc, cell.Ref.Page+1)
		}
		out.Images = append(out.Images, ImageOp{
			Ref:    cell.Ref,
			Image:  img,
			X:      cell.X,
			Y:      cell.Y,
			Width:  cell.Width,
			Height: cell.Height,
		})
	}

	return out, nil
}
