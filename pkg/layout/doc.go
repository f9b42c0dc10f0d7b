// Package layout implements the grid layout planner.
//
// # Overview
//
// The planner is the geometry half of the N-up engine: it maps a batch of
// documents (ordered page sizes) and a [GridConfig] onto a [Plan], an
// ordered list of output pages whose cells say which source page is drawn
// where and at what size. No pixels are touched here; rendering is the job
// of the compose and sink packages, which consume the Plan as data. This
// split keeps the planner testable with zero image data.
//
// # Geometry
//
// All cells in a run share one size: the maximum page width and maximum
// page height observed across every document in the batch. Each page is
// scaled to fit that cell preserving its own aspect ratio and centered,
// so rows align visually even when documents have mixed native sizes.
//
// Pages fill in row-major order, [GridConfig.SlidesPerRow] cells per row
// and [GridConfig.RowsPerPage] rows per page. An output page ends when it
// is full, or early when a document boundary demands a fresh page.
//
//	plan, err := layout.Build(docs, layout.GridConfig{SlidesPerRow: 2, Gap: 10, Margin: 20})
//	if err != nil {
//	    return err
//	}
//	for _, page := range plan.Pages {
//	    for _, cell := range page.Cells {
//	        // cell.Ref names the source page, cell.X/Y/Width/Height the draw rect
//	    }
//	}
package layout
