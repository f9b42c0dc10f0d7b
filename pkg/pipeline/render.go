package pipeline

import (
	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
	"github.com/mkersting/slidegrid/pkg/sink"
)

// renderArtifacts renders the composed pages into every requested format.
//
//   - pdf: the full output document
//   - png: a preview raster of the first output page
//   - json: the plan itself, for tooling and debugging
func renderArtifacts(plan *layout.Plan, pages []compose.DrawablePage, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		switch format {
		case FormatPDF:
			data, err := renderPDF(pages, "")
			if err != nil {
				return nil, err
			}
			if opts.ValidateOutput {
				if err := sink.VerifyPDF(data); err != nil {
					return nil, err
				}
			}
			artifacts[format] = data

		case FormatPNG:
			if len(pages) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render as png")
			}
			data, err := sink.RenderPNG(pages[0], sink.WithScale(opts.Scale))
			if err != nil {
				return nil, err
			}
			artifacts[format] = data

		case FormatJSON:
			data, err := layout.MarshalPlan(plan)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data

		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
		}
	}

	return artifacts, nil
}

// renderPDF serializes pages to PDF with an optional document title.
func renderPDF(pages []compose.DrawablePage, title string) ([]byte, error) {
	var sinkOpts []sink.PDFOption
	if title != "" {
		sinkOpts = append(sinkOpts, sink.WithTitle(title))
	}
	return sink.RenderPDF(pages, sinkOpts...)
}
