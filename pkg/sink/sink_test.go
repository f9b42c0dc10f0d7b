package sink

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
)

func pngImage(t *testing.T, w, h int) compose.Image {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return compose.Image{Data: buf.Bytes(), Format: "png"}
}

func testPage(t *testing.T) compose.DrawablePage {
	t.Helper()
	return compose.DrawablePage{
		Width:  200,
		Height: 150,
		Images: []compose.ImageOp{
			{Ref: layout.PageRef{Doc: 0, Page: 0}, Image: pngImage(t, 8, 6), X: 10, Y: 10, Width: 80, Height: 60},
			{Ref: layout.PageRef{Doc: 0, Page: 1}, Image: pngImage(t, 8, 6), X: 110, Y: 10, Width: 80, Height: 60},
		},
		Texts: []compose.TextOp{
			{Text: "Contents", X: 10, Y: 120, Size: 14, Bold: true},
			{Text: "3", X: 190, Y: 120, Size: 10, RightAlign: true},
		},
	}
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF([]compose.DrawablePage{testPage(t)}, WithTitle("deck"))
	if err != nil {
		t.Fatalf("RenderPDF error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderPDFEmpty(t *testing.T) {
	data, err := RenderPDF(nil)
	if err != nil {
		t.Fatalf("RenderPDF error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testPage(t))
	if err != nil {
		t.Fatalf("RenderPNG error: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	// Default scale is 2 pixels per point.
	if cfg.Width != 400 || cfg.Height != 300 {
		t.Errorf("dimensions = %dx%d, want 400x300", cfg.Width, cfg.Height)
	}
}

func TestRenderPNGScale(t *testing.T) {
	page := compose.DrawablePage{Width: 100, Height: 50}
	data, err := RenderPNG(page, WithScale(1))
	if err != nil {
		t.Fatalf("RenderPNG error: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("dimensions = %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}

func TestRenderPNGInvalidScale(t *testing.T) {
	_, err := RenderPNG(testPage(t), WithScale(0))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}

func TestRenderPNGBadImage(t *testing.T) {
	page := compose.DrawablePage{
		Width:  100,
		Height: 100,
		Images: []compose.ImageOp{
			{Image: compose.Image{Data: []byte("garbage"), Format: "png"}, X: 0, Y: 0, Width: 50, Height: 50},
		},
	}
	_, err := RenderPNG(page)
	if !errors.Is(err, errors.ErrCodeDecodeFailure) {
		t.Errorf("error code = %v, want DECODE_FAILURE", errors.GetCode(err))
	}
}

func TestImageType(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"png", "PNG"},
		{"jpeg", "JPEG"},
		{"jpg", "JPEG"},
	}
	for _, tt := range tests {
		if got := imageType(tt.format); got != tt.want {
			t.Errorf("imageType(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestVerifyPDF(t *testing.T) {
	data, err := RenderPDF([]compose.DrawablePage{testPage(t)})
	if err != nil {
		t.Fatalf("RenderPDF() error: %v", err)
	}
	if err := VerifyPDF(data); err != nil {
		t.Errorf("VerifyPDF() error: %v", err)
	}
}

func TestVerifyPDFCorrupt(t *testing.T) {
	if err := VerifyPDF([]byte("not a pdf")); err == nil {
		t.Fatal("expected error for corrupt data")
	}
}
