// Package sink renders composed pages into final output formats.
//
// A sink takes the drawable pages produced by [compose] and serializes
// them:
//
//   - PDF: vector page stream via fpdf, one output document per call
//   - PNG: raster image per page via gg, for previews and thumbnails
//
// Sinks are pure functions over their input. They never touch the
// filesystem, callers decide where the bytes go.
//
//	pdf, err := sink.RenderPDF(pages)
//	png, err := sink.RenderPNG(pages[0], sink.WithScale(2))
package sink
