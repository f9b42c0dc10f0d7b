package source

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
)

// PDFSource decodes PDF documents. Page sizes come from the page boxes,
// page images from the largest embedded image on each page. Decks exported
// as PDF carry each slide as one full-page raster, which is the case this
// source is built for.
type PDFSource struct{}

// Decode implements Source.
func (s *PDFSource) Decode(ctx context.Context, path string) (*Decoded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %q", path)
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "parse %q", path)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "page count of %q", path)
	}

	pages := make([]Page, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		size, err := pageSize(pdfCtx, pageNr)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "page %d of %q", pageNr, path)
		}
		img, err := pageImage(pdfCtx, pageNr)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "page %d of %q", pageNr, path)
		}

		pages = append(pages, Page{Size: size, Image: img})
	}

	return &Decoded{Name: docName(path), Pages: pages}, nil
}

// pageSize reads the effective page box, preferring CropBox over MediaBox
// and honoring page rotation.
func pageSize(pdfCtx *model.Context, pageNr int) (layout.Size, error) {
	_, _, inh, err := pdfCtx.PageDict(pageNr, false)
	if err != nil {
		return layout.Size{}, err
	}

	box := inh.CropBox
	if box == nil {
		box = inh.MediaBox
	}
	if box == nil {
		return layout.Size{}, errors.New(errors.ErrCodeDecodeFailure, "page %d has no page box", pageNr)
	}

	w, h := box.Width(), box.Height()
	if inh.Rotate%180 != 0 {
		w, h = h, w
	}
	return layout.Size{Width: w, Height: h}, nil
}

// pageImage extracts the largest embedded image on the page. Thumbnails
// are skipped.
func pageImage(pdfCtx *model.Context, pageNr int) (compose.Image, error) {
	imgs, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
	if err != nil {
		return compose.Image{}, err
	}

	var best compose.Image
	for _, img := range imgs {
		if img.Thumb {
			continue
		}
		data, err := io.ReadAll(img)
		if err != nil {
			return compose.Image{}, err
		}
		if len(data) > len(best.Data) {
			best = compose.Image{Data: data, Format: img.FileType}
		}
	}
	if len(best.Data) == 0 {
		return compose.Image{}, errors.New(errors.ErrCodeDecodeFailure, "page %d has no extractable image", pageNr)
	}
	return best, nil
}
