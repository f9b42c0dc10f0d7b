package layout

import (
	"github.com/mkersting/slidegrid/pkg/errors"
)

// Option configures plan generation.
type Option func(*planOptions)

type planOptions struct {
	index bool
}

// WithIndex prepends an index page listing each document's name and the
// 1-based output page number of its first cell. The index page shifts all
// page numbers by one. Runs that produce no output pages never get an
// index page.
func WithIndex() Option {
	return func(o *planOptions) { o.index = true }
}

// Build computes the layout plan for a batch of documents.
//
// The algorithm:
//  1. Validate the configuration before any geometry is computed.
//  2. Derive the uniform cell size from the maximum page width and height
//     observed across the whole run, so rows stay aligned even when
//     documents have mixed native sizes.
//  3. Fill cells in row-major order, SlidesPerRow per row, RowsPerPage
//     rows per page. A document boundary forces a fresh page when
//     NewPagePerDocument is set.
//  4. Scale every page to fit its cell, preserving the page's own aspect
//     ratio, and center it within the cell.
//
// Zero documents (or documents with no pages at all) yield an empty plan
// with no index page. Build is pure: it performs no I/O and the returned
// Plan is owned exclusively by the caller.
func Build(documents []Document, config GridConfig, opts ...Option) (*Plan, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.normalized()

	var o planOptions
	for _, opt := range opts {
		opt(&o)
	}

	plan := &Plan{Config: config}

	// Global cell size: max width and max height across all pages.
	for _, doc := range documents {
		for pi, s := range doc.Pages {
			if s.Width <= 0 || s.Height <= 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"document %q page %d has non-positive dimensions %gx%g", doc.Name, pi+1, s.Width, s.Height)
			}
			if s.Width > plan.CellWidth {
				plan.CellWidth = s.Width
			}
			if s.Height > plan.CellHeight {
				plan.CellHeight = s.Height
			}
		}
	}
	if plan.CellWidth == 0 {
		// No pages anywhere in the run.
		return plan, nil
	}

	cols := config.SlidesPerRow
	rows := config.RowsPerPage
	plan.PageWidth = 2*config.Margin + float64(cols)*plan.CellWidth + float64(cols-1)*config.Gap
	plan.PageHeight = config.TopMargin + config.Margin + float64(rows)*plan.CellHeight + float64(rows-1)*config.Gap

	cellsPerPage := cols * rows

	var cells []Cell
	flush := func() {
		if len(cells) > 0 {
			plan.Pages = append(plan.Pages, Page{Width: plan.PageWidth, Height: plan.PageHeight, Cells: cells})
			cells = nil
		}
	}

	starts := make(map[int]int, len(documents))

	for di, doc := range documents {
		if config.NewPagePerDocument {
			flush()
		}
		for pi, s := range doc.Pages {
			if len(cells) == cellsPerPage {
				flush()
			}
			if pi == 0 {
				starts[di] = len(plan.Pages) + 1
			}

			idx := len(cells)
			col := idx % cols
			row := idx / cols

			cx, cy := plan.CellOrigin(col, row)
			dw, dh := fitCell(s, plan.CellWidth, plan.CellHeight)

			cells = append(cells, Cell{
				Ref:    PageRef{Doc: di, Page: pi},
				Col:    col,
				Row:    row,
				X:      cx + (plan.CellWidth-dw)/2,
				Y:      cy + (plan.CellHeight-dh)/2,
				Width:  dw,
				Height: dh,
			})
		}
	}
	flush()

	if o.index && len(plan.Pages) > 0 {
		plan.Index = make([]IndexEntry, 0, len(documents))
		for di, doc := range documents {
			start, ok := starts[di]
			if !ok {
				// Document contributed no cells; it has no place to point at.
				continue
			}
			// The index page itself becomes page 1.
			plan.Index = append(plan.Index, IndexEntry{Name: doc.Name, StartPage: start + 1})
		}
	}

	return plan, nil
}

// fitCell scales a page to fit within a cell while preserving the page's
// aspect ratio. The result is letterboxed on the shorter axis.
func fitCell(s Size, cellW, cellH float64) (w, h float64) {
	scale := cellW / s.Width
	if hs := cellH / s.Height; hs < scale {
		scale = hs
	}
	return s.Width * scale, s.Height * scale
}
