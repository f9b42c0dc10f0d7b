package layout

import (
	"github.com/mkersting/slidegrid/pkg/errors"
)

// DefaultRowsPerPage is the number of grid rows per output page when the
// configuration does not specify one.
const DefaultRowsPerPage = 3

// Size holds the dimensions of one source page in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AspectRatio returns width divided by height.
func (s Size) AspectRatio() float64 { return s.Width / s.Height }

// PageRef identifies one source page by document index and page index.
// Both indices are zero-based and relative to the document slice passed
// to [Build].
type PageRef struct {
	Doc  int `json:"doc"`
	Page int `json:"page"`
}

// Document is one input document: a display name and its ordered page sizes.
// The planner only reads documents; it never mutates them.
type Document struct {
	Name  string `json:"name"`
	Pages []Size `json:"pages"`
}

// GridConfig describes the output grid. It is validated once, before any
// geometry is computed, and treated as immutable afterwards.
type GridConfig struct {
	// SlidesPerRow is the number of grid columns. Must be >= 1.
	SlidesPerRow int `json:"slides_per_row"`

	// Gap is the space between adjacent cells in points.
	Gap float64 `json:"gap"`

	// Margin is the space on the left, right, and bottom edges in points.
	Margin float64 `json:"margin"`

	// TopMargin is the space above the first row in points.
	TopMargin float64 `json:"top_margin"`

	// RowsPerPage limits how many grid rows fit on one output page.
	// Zero selects [DefaultRowsPerPage]; negative values are invalid.
	RowsPerPage int `json:"rows_per_page,omitempty"`

	// RTL mirrors the horizontal slot of each column. Fill order is
	// unchanged; only the visual x-coordinate flips.
	RTL bool `json:"rtl,omitempty"`

	// NewPagePerDocument starts every document on a fresh output page,
	// leaving the trailing cells of the previous page empty.
	NewPagePerDocument bool `json:"new_page_per_document,omitempty"`
}

// Validate checks the grid parameters. It returns an INVALID_CONFIG error
// for the first violation found.
func (c GridConfig) Validate() error {
	if c.SlidesPerRow < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "slides per row must be >= 1, got %d", c.SlidesPerRow)
	}
	if c.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "gap must be non-negative, got %g", c.Gap)
	}
	if c.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margin must be non-negative, got %g", c.Margin)
	}
	if c.TopMargin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "top margin must be non-negative, got %g", c.TopMargin)
	}
	if c.RowsPerPage < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "rows per page must be non-negative, got %d", c.RowsPerPage)
	}
	return nil
}

// normalized returns a copy with defaults applied.
func (c GridConfig) normalized() GridConfig {
	if c.RowsPerPage == 0 {
		c.RowsPerPage = DefaultRowsPerPage
	}
	return c
}

// Cell is one computed placement: which source page goes where on an
// output page. X/Y and Width/Height describe the drawn image rectangle,
// already scaled to fit the cell and centered within it. Coordinates are
// in points with the origin at the top-left of the page, y growing down.
type Cell struct {
	Ref    PageRef `json:"ref"`
	Col    int     `json:"col"`
	Row    int     `json:"row"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Page is one output page: fixed dimensions plus its ordered cells.
// Trailing cells left empty by a document break are simply absent.
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Cells  []Cell  `json:"cells"`
}

// IndexEntry maps a document name to the 1-based output page number at
// which its first cell appears. When an index page is present, page
// numbers already account for it.
type IndexEntry struct {
	Name      string `json:"name"`
	StartPage int    `json:"start_page"`
}

// Plan is the complete layout for one run: the normalized configuration,
// the uniform cell geometry, and the ordered output pages, optionally
// prefixed by an index page. A Plan is produced once and never mutated.
type Plan struct {
	Config     GridConfig   `json:"config"`
	CellWidth  float64      `json:"cell_width"`
	CellHeight float64      `json:"cell_height"`
	PageWidth  float64      `json:"page_width"`
	PageHeight float64      `json:"page_height"`
	Index      []IndexEntry `json:"index,omitempty"`
	Pages      []Page       `json:"pages"`
}

// HasIndex reports whether the plan is prefixed by an index page.
func (p *Plan) HasIndex() bool { return p.Index != nil }

// PageCount returns the total number of output pages, including the
// index page when present.
func (p *Plan) PageCount() int {
	n := len(p.Pages)
	if p.HasIndex() {
		n++
	}
	return n
}

// CellOrigin returns the top-left corner of the grid cell at the given
// column and row, honoring RTL mirroring.
func (p *Plan) CellOrigin(col, row int) (x, y float64) {
	slot := col
	if p.Config.RTL {
		slot = p.Config.SlidesPerRow - 1 - col
	}
	x = p.Config.Margin + float64(slot)*(p.CellWidth+p.Config.Gap)
	y = p.Config.TopMargin + float64(row)*(p.CellHeight+p.Config.Gap)
	return x, y
}
