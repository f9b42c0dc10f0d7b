package assemble

import (
	"testing"

	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
)

func testBatch() ([]layout.Document, compose.ImageSet) {
	docs := []layout.Document{
		{Name: "alpha", Pages: []layout.Size{{Width: 960, Height: 540}, {Width: 960, Height: 540}, {Width: 960, Height: 540}}},
		{Name: "beta", Pages: []layout.Size{{Width: 960, Height: 540}, {Width: 960, Height: 540}}},
	}
	images := make(compose.ImageSet)
	for di, d := range docs {
		for pi := range d.Pages {
			images[layout.PageRef{Doc: di, Page: pi}] = compose.Image{Data: []byte{byte(di), byte(pi)}, Format: "png"}
		}
	}
	return docs, images
}

func TestAssembleMerged(t *testing.T) {
	docs, images := testBatch()
	cfg := layout.GridConfig{SlidesPerRow: 2, RowsPerPage: 1, NewPagePerDocument: true}

	pages, err := Assemble(docs, images, cfg)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	// alpha: 2 + 1 cells, beta: 2 cells -> 3 output pages, no index.
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	if got := len(pages[0].Images); got != 2 {
		t.Errorf("page 1 images = %d, want 2", got)
	}
	if got := len(pages[1].Images); got != 1 {
		t.Errorf("page 2 images = %d, want 1", got)
	}
	if pages[2].Images[0].Ref.Doc != 1 {
		t.Errorf("page 3 starts with doc %d, want 1", pages[2].Images[0].Ref.Doc)
	}
}

func TestAssembleWithIndex(t *testing.T) {
	docs, images := testBatch()
	cfg := layout.GridConfig{SlidesPerRow: 2, RowsPerPage: 1, NewPagePerDocument: true}

	pages, err := Assemble(docs, images, cfg, WithIndex())
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}

	// Index page first, then the three content pages.
	if len(pages) != 4 {
		t.Fatalf("pages = %d, want 4", len(pages))
	}
	index := pages[0]
	if len(index.Images) != 0 {
		t.Errorf("index page should carry no images")
	}
	if len(index.Texts) == 0 {
		t.Fatal("index page should carry text ops")
	}

	var names []string
	for _, op := range index.Texts[1:] {
		if !op.RightAlign {
			names = append(names, op.Text)
		}
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("index names = %v, want [alpha beta]", names)
	}
}

func TestAssembleMissingImage(t *testing.T) {
	docs, images := testBatch()
	delete(images, layout.PageRef{Doc: 1, Page: 1})

	_, err := Assemble(docs, images, layout.GridConfig{SlidesPerRow: 2})
	if err == nil {
		t.Fatal("Assemble should fail")
	}
	if !errors.Is(err, errors.ErrCodeMissingImage) {
		t.Errorf("error code = %v, want MISSING_IMAGE", errors.GetCode(err))
	}
}

func TestAssembleEach(t *testing.T) {
	docs, images := testBatch()
	cfg := layout.GridConfig{SlidesPerRow: 2, RowsPerPage: 1}

	outputs, err := AssembleEach(docs, images, cfg)
	if err != nil {
		t.Fatalf("AssembleEach error: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("outputs = %d, want 2", len(outputs))
	}

	// alpha: 3 pages at 2 per output page -> 2 output pages.
	if len(outputs[0]) != 2 {
		t.Errorf("alpha output pages = %d, want 2", len(outputs[0]))
	}
	// beta: 2 pages -> 1 output page.
	if len(outputs[1]) != 1 {
		t.Errorf("beta output pages = %d, want 1", len(outputs[1]))
	}

	// Per-document refs are rebased to doc 0.
	for _, pages := range outputs {
		for _, page := range pages {
			for _, op := range page.Images {
				if op.Ref.Doc != 0 {
					t.Errorf("per-document output references doc %d, want 0", op.Ref.Doc)
				}
			}
		}
	}
}

func TestAssembleEmptyBatch(t *testing.T) {
	pages, err := Assemble(nil, nil, layout.GridConfig{SlidesPerRow: 2}, WithIndex())
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("pages = %d, want 0", len(pages))
	}
}
