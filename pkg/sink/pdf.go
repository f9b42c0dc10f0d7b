package sink

import (
	"bytes"
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	title string
}

// WithTitle sets the document title in the PDF metadata.
func WithTitle(title string) PDFOption {
	return func(r *pdfRenderer) { r.title = title }
}

// RenderPDF serializes the composed pages into one PDF document. Each
// drawable page becomes a PDF page of exactly its composed dimensions,
// all coordinates are in points with the origin at the top left, which
// matches the compose coordinate system.
func RenderPDF(pages []compose.DrawablePage, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	if r.title != "" {
		pdf.SetTitle(r.title, true)
	}
	pdf.SetAutoPageBreak(false, 0)

	for pi, page := range pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})

		for _, op := range page.Images {
			name := fmt.Sprintf("img-%d-%d", op.Ref.Doc, op.Ref.Page)
			imgOpts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType(op.Image.Format)}
			pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(op.Image.Data))
			pdf.ImageOptions(name, op.X, op.Y, op.Width, op.Height, false, imgOpts, 0, "")
		}

		for _, op := range page.Texts {
			style := ""
			if op.Bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, op.Size)
			x := op.X
			if op.RightAlign {
				x -= pdf.GetStringWidth(op.Text)
			}
			pdf.Text(x, op.Y, op.Text)
		}

		if err := pdf.Error(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSerialization, err, "render page %d", pi+1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "write pdf")
	}
	return buf.Bytes(), nil
}

// imageType maps a decoded format name to the identifier fpdf expects.
func imageType(format string) string {
	t := strings.ToUpper(format)
	if t == "JPG" {
		t = "JPEG"
	}
	return t
}

// VerifyPDF parses rendered bytes back through pdfcpu, catching
// structural problems before the document reaches the caller.
func VerifyPDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	if _, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf); err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "verify rendered pdf")
	}
	return nil
}
