package sink

import (
	"bytes"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	_ "image/jpeg"
	_ "image/png"

	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/fonts"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the raster scale factor in pixels per point
// (default 2.0 for a crisp preview).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterizes one composed page as a PNG image. Page coordinates
// in points are multiplied by the scale factor to obtain pixels.
func RenderPNG(page compose.DrawablePage, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "scale must be positive, got %g", r.scale)
	}

	w := int(math.Round(page.Width * r.scale))
	h := int(math.Round(page.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "page has no area")
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, op := range page.Images {
		img, _, err := image.Decode(bytes.NewReader(op.Image.Data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecodeFailure, err, "decode image for document %d page %d", op.Ref.Doc, op.Ref.Page)
		}
		dw := int(math.Round(op.Width * r.scale))
		dh := int(math.Round(op.Height * r.scale))
		if dw <= 0 || dh <= 0 {
			continue
		}
		resized := imaging.Resize(img, dw, dh, imaging.Lanczos)
		dc.DrawImage(resized, int(math.Round(op.X*r.scale)), int(math.Round(op.Y*r.scale)))
	}

	dc.SetRGB(0, 0, 0)
	for _, op := range page.Texts {
		face, err := fonts.Face(op.Bold, op.Size*r.scale)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font")
		}
		dc.SetFontFace(face)
		x := op.X * r.scale
		if op.RightAlign {
			tw, _ := dc.MeasureString(op.Text)
			x -= tw
		}
		dc.DrawString(op.Text, x, op.Y*r.scale)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "encode png")
	}
	return buf.Bytes(), nil
}
