package layout

import (
	"math"
	"testing"

	"github.com/mkersting/slidegrid/pkg/errors"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// uniformDoc builds a document whose pages all share one size.
func uniformDoc(name string, pages int, w, h float64) Document {
	d := Document{Name: name}
	for i := 0; i < pages; i++ {
		d.Pages = append(d.Pages, Size{Width: w, Height: h})
	}
	return d
}

func TestBuildInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config GridConfig
	}{
		{"zero slides per row", GridConfig{SlidesPerRow: 0}},
		{"negative slides per row", GridConfig{SlidesPerRow: -2}},
		{"negative gap", GridConfig{SlidesPerRow: 2, Gap: -1}},
		{"negative margin", GridConfig{SlidesPerRow: 2, Margin: -5}},
		{"negative top margin", GridConfig{SlidesPerRow: 2, TopMargin: -0.5}},
		{"negative rows per page", GridConfig{SlidesPerRow: 2, RowsPerPage: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Build([]Document{uniformDoc("a", 1, 100, 75)}, tt.config)
			if err == nil {
				t.Fatal("Build should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %v, want INVALID_CONFIG", errors.GetCode(err))
			}
			if plan != nil {
				t.Error("no plan should be produced for invalid config")
			}
		})
	}
}

func TestBuildEmptyInput(t *testing.T) {
	// Zero documents yields an empty plan, even when an index is requested.
	plan, err := Build(nil, GridConfig{SlidesPerRow: 2}, WithIndex())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(plan.Pages) != 0 {
		t.Errorf("Pages = %d, want 0", len(plan.Pages))
	}
	if plan.HasIndex() {
		t.Error("empty plan should not have an index page")
	}

	// Documents that exist but have no pages behave the same way.
	plan, err = Build([]Document{{Name: "empty"}}, GridConfig{SlidesPerRow: 2}, WithIndex())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if plan.PageCount() != 0 {
		t.Errorf("PageCount = %d, want 0", plan.PageCount())
	}
}

func TestBuildEveryPageExactlyOnce(t *testing.T) {
	docs := []Document{
		uniformDoc("a", 3, 100, 75),
		uniformDoc("b", 5, 120, 90),
		uniformDoc("c", 1, 80, 80),
	}
	plan, err := Build(docs, GridConfig{SlidesPerRow: 2, Gap: 10, Margin: 20})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	seen := make(map[PageRef]int)
	var order []PageRef
	for _, page := range plan.Pages {
		for _, cell := range page.Cells {
			seen[cell.Ref]++
			order = append(order, cell.Ref)
		}
	}

	total := 0
	for di, d := range docs {
		total += len(d.Pages)
		for pi := range d.Pages {
			ref := PageRef{Doc: di, Page: pi}
			if seen[ref] != 1 {
				t.Errorf("ref %v placed %d times, want 1", ref, seen[ref])
			}
		}
	}
	if len(order) != total {
		t.Fatalf("placed %d cells, want %d", len(order), total)
	}

	// Original relative order: document order, then page order.
	for i := 1; i < len(order); i++ {
		prev, cur := order[i-1], order[i]
		if cur.Doc < prev.Doc || (cur.Doc == prev.Doc && cur.Page != prev.Page+1) {
			t.Errorf("order violated at %d: %v after %v", i, cur, prev)
		}
	}
}

func TestBuildGlobalCellSize(t *testing.T) {
	docs := []Document{
		uniformDoc("small", 2, 100, 75),
		uniformDoc("large", 2, 160, 90),
	}
	plan, err := Build(docs, GridConfig{SlidesPerRow: 2})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if plan.CellWidth != 160 || plan.CellHeight != 90 {
		t.Errorf("cell = %gx%g, want 160x90", plan.CellWidth, plan.CellHeight)
	}

	// Growing a single page beyond the current max resizes every cell.
	docs[0].Pages[1] = Size{Width: 100, Height: 200}
	plan, err = Build(docs, GridConfig{SlidesPerRow: 2})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if plan.CellWidth != 160 || plan.CellHeight != 200 {
		t.Errorf("cell = %gx%g, want 160x200", plan.CellWidth, plan.CellHeight)
	}
}

func TestBuildPageDimensions(t *testing.T) {
	cfg := GridConfig{SlidesPerRow: 3, Gap: 10, Margin: 20, TopMargin: 5, RowsPerPage: 2}
	plan, err := Build([]Document{uniformDoc("a", 1, 100, 75)}, cfg)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	wantW := 2*20 + 3*100 + 2*10.0
	if !approxEqual(plan.PageWidth, wantW) {
		t.Errorf("PageWidth = %g, want %g", plan.PageWidth, wantW)
	}
	wantH := 5 + 20 + 2*75 + 1*10.0
	if !approxEqual(plan.PageHeight, wantH) {
		t.Errorf("PageHeight = %g, want %g", plan.PageHeight, wantH)
	}
}

func TestBuildRTLMirrorsX(t *testing.T) {
	docs := []Document{uniformDoc("a", 6, 100, 75)}
	cfg := GridConfig{SlidesPerRow: 3, Gap: 10, Margin: 20}

	ltr, err := Build(docs, cfg)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	cfg.RTL = true
	rtl, err := Build(docs, cfg)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	// First cell starts at the margin in LTR; the last column does in RTL.
	if x, _ := ltr.CellOrigin(0, 0); !approxEqual(x, 20) {
		t.Errorf("LTR cell (0,0) x = %g, want 20", x)
	}
	if x, _ := rtl.CellOrigin(cfg.SlidesPerRow-1, 0); !approxEqual(x, 20) {
		t.Errorf("RTL cell (0,%d) x = %g, want 20", cfg.SlidesPerRow-1, x)
	}

	// Every cell's x mirrors across the page; y is untouched.
	for p := range ltr.Pages {
		for c := range ltr.Pages[p].Cells {
			l, r := ltr.Pages[p].Cells[c], rtl.Pages[p].Cells[c]
			if !approxEqual(l.Y, r.Y) {
				t.Errorf("cell %d y differs: %g vs %g", c, l.Y, r.Y)
			}
			mirrored := ltr.PageWidth - l.X - l.Width
			if !approxEqual(r.X, mirrored) {
				t.Errorf("cell %d x = %g, want mirrored %g", c, r.X, mirrored)
			}
		}
	}
}

func TestBuildNewPagePerDocument(t *testing.T) {
	docs := []Document{
		uniformDoc("a", 3, 100, 75),
		uniformDoc("b", 2, 100, 75),
	}
	cfg := GridConfig{SlidesPerRow: 2, NewPagePerDocument: true}

	plan, err := Build(docs, cfg)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(plan.Pages) != 2 {
		t.Fatalf("Pages = %d, want 2", len(plan.Pages))
	}
	if got := len(plan.Pages[0].Cells); got != 3 {
		t.Errorf("page 1 cells = %d, want 3 (A only, one cell left empty)", got)
	}
	if got := len(plan.Pages[1].Cells); got != 2 {
		t.Errorf("page 2 cells = %d, want 2 (B only)", got)
	}
	for _, cell := range plan.Pages[1].Cells {
		if cell.Ref.Doc != 1 {
			t.Errorf("page 2 holds doc %d, want only doc 1", cell.Ref.Doc)
		}
	}
}

func TestBuildContinuousFill(t *testing.T) {
	docs := []Document{
		uniformDoc("a", 3, 100, 75),
		uniformDoc("b", 2, 100, 75),
	}
	cfg := GridConfig{SlidesPerRow: 2, NewPagePerDocument: false}

	plan, err := Build(docs, cfg)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(plan.Pages) != 1 {
		t.Fatalf("Pages = %d, want 1", len(plan.Pages))
	}

	// B's first page lands in the cell A left empty: row 1, col 1.
	cell := plan.Pages[0].Cells[3]
	if cell.Ref != (PageRef{Doc: 1, Page: 0}) {
		t.Errorf("cell 3 ref = %v, want doc 1 page 0", cell.Ref)
	}
	if cell.Col != 1 || cell.Row != 1 {
		t.Errorf("cell 3 at (%d,%d), want (1,1)", cell.Col, cell.Row)
	}
}

func TestBuildEmptyDocumentForcesBreak(t *testing.T) {
	docs := []Document{
		uniformDoc("a", 3, 100, 75),
		{Name: "b"}, // no pages
		uniformDoc("c", 2, 100, 75),
	}
	plan, err := Build(docs, GridConfig{SlidesPerRow: 2, NewPagePerDocument: true})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(plan.Pages) != 2 {
		t.Fatalf("Pages = %d, want 2", len(plan.Pages))
	}
	if plan.Pages[1].Cells[0].Ref.Doc != 2 {
		t.Errorf("page 2 starts with doc %d, want doc 2", plan.Pages[1].Cells[0].Ref.Doc)
	}
}

func TestBuildOverflowToNextPage(t *testing.T) {
	plan, err := Build(
		[]Document{uniformDoc("a", 7, 100, 75)},
		GridConfig{SlidesPerRow: 2, RowsPerPage: 3},
	)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(plan.Pages) != 2 {
		t.Fatalf("Pages = %d, want 2", len(plan.Pages))
	}
	if got := len(plan.Pages[0].Cells); got != 6 {
		t.Errorf("page 1 cells = %d, want 6", got)
	}
	if got := len(plan.Pages[1].Cells); got != 1 {
		t.Errorf("page 2 cells = %d, want 1", got)
	}
}

func TestBuildIndex(t *testing.T) {
	docs := []Document{
		uniformDoc("alpha", 3, 100, 75),
		uniformDoc("beta", 2, 100, 75),
		uniformDoc("gamma", 1, 100, 75),
	}
	cfg := GridConfig{SlidesPerRow: 2, RowsPerPage: 1, NewPagePerDocument: true}

	plan, err := Build(docs, cfg, WithIndex())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !plan.HasIndex() {
		t.Fatal("expected index page")
	}
	if len(plan.Index) != len(docs) {
		t.Fatalf("index entries = %d, want %d", len(plan.Index), len(docs))
	}

	// Content pages without index: alpha 1-2, beta 3, gamma 4.
	// The index page shifts everything by one.
	want := []IndexEntry{
		{Name: "alpha", StartPage: 2},
		{Name: "beta", StartPage: 4},
		{Name: "gamma", StartPage: 5},
	}
	for i, entry := range plan.Index {
		if entry != want[i] {
			t.Errorf("index[%d] = %+v, want %+v", i, entry, want[i])
		}
	}
	if plan.PageCount() != len(plan.Pages)+1 {
		t.Errorf("PageCount = %d, want %d", plan.PageCount(), len(plan.Pages)+1)
	}
}

func TestBuildAspectRatioPreserved(t *testing.T) {
	// A tall page next to a wide page: both letterbox into the same cell.
	docs := []Document{{Name: "mixed", Pages: []Size{
		{Width: 200, Height: 100}, // wide, sets cell width
		{Width: 50, Height: 150},  // tall, sets cell height
	}}}
	plan, err := Build(docs, GridConfig{SlidesPerRow: 2, Margin: 10})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if plan.CellWidth != 200 || plan.CellHeight != 150 {
		t.Fatalf("cell = %gx%g, want 200x150", plan.CellWidth, plan.CellHeight)
	}

	for i, cell := range plan.Pages[0].Cells {
		src := docs[0].Pages[i]
		if !approxEqual(cell.Width/cell.Height, src.AspectRatio()) {
			t.Errorf("cell %d aspect = %g, want %g", i, cell.Width/cell.Height, src.AspectRatio())
		}
		if cell.Width > plan.CellWidth+epsilon || cell.Height > plan.CellHeight+epsilon {
			t.Errorf("cell %d draw size %gx%g exceeds cell", i, cell.Width, cell.Height)
		}
	}

	// The wide page fills the cell width and centers vertically.
	wide := plan.Pages[0].Cells[0]
	if !approxEqual(wide.Width, 200) || !approxEqual(wide.Height, 100) {
		t.Errorf("wide draw = %gx%g, want 200x100", wide.Width, wide.Height)
	}
	cx, cy := plan.CellOrigin(0, 0)
	if !approxEqual(wide.X, cx) {
		t.Errorf("wide x = %g, want %g", wide.X, cx)
	}
	if !approxEqual(wide.Y, cy+(150-100)/2) {
		t.Errorf("wide y = %g, want centered at %g", wide.Y, cy+25)
	}
}

func TestBuildRejectsDegeneratePage(t *testing.T) {
	docs := []Document{{Name: "bad", Pages: []Size{{Width: 0, Height: 100}}}}
	_, err := Build(docs, GridConfig{SlidesPerRow: 2})
	if err == nil {
		t.Fatal("Build should fail for zero-width page")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %v, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestPlanRoundTrip(t *testing.T) {
	plan, err := Build(
		[]Document{uniformDoc("a", 2, 100, 75)},
		GridConfig{SlidesPerRow: 2, Gap: 10, Margin: 20},
		WithIndex(),
	)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	data, err := MarshalPlan(plan)
	if err != nil {
		t.Fatalf("MarshalPlan error: %v", err)
	}
	parsed, err := UnmarshalPlan(data)
	if err != nil {
		t.Fatalf("UnmarshalPlan error: %v", err)
	}
	if parsed.PageCount() != plan.PageCount() {
		t.Errorf("PageCount after round trip = %d, want %d", parsed.PageCount(), plan.PageCount())
	}
	if len(parsed.Pages[0].Cells) != len(plan.Pages[0].Cells) {
		t.Errorf("cells after round trip = %d, want %d", len(parsed.Pages[0].Cells), len(plan.Pages[0].Cells))
	}
}
