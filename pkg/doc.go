// Package pkg provides the core libraries for slidegrid PDF composition.
//
// # Overview
//
// Slidegrid packs the pages of presentation exports into compact N-up
// grids. The pkg directory is organized along the pipeline stages:
//
//  1. [source] - Input decoding (PDF files, images, slide directories)
//  2. [layout] - Grid planning (cell geometry, page breaks, index)
//  3. [compose] - Binding plans to image data as drawable pages
//  4. [assemble] - End-to-end plan-and-compose orchestration
//  5. [sink] - Output rendering (PDF, PNG)
//
// # Architecture
//
// The typical data flow through slidegrid:
//
//	PDF / images / slide directory
//	         ↓
//	    [source] package (decode page sizes + images)
//	         ↓
//	    [layout] package (plan the grid)
//	         ↓
//	    [compose] + [assemble] (bind images to cells)
//	         ↓
//	    [sink] package (PDF/PNG output)
//
// [pipeline] wraps the whole flow with caching via [cache], used by both
// the CLI and the HTTP API. [errors] carries coded errors across all
// stages, and [observability] offers optional instrumentation hooks.
//
// # Quick Start
//
// Convert a slide directory into a grid PDF:
//
//	import (
//	    "context"
//	    "github.com/mkersting/slidegrid/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	opts := pipeline.NewOptions("talk.pdf")
//	opts.SingleFile = true
//	result, err := runner.Execute(context.Background(), opts)
//	// result.Artifacts["pdf"] holds the rendered grid document.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//
// [source]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/source
// [layout]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/layout
// [compose]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/compose
// [assemble]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/assemble
// [sink]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/sink
// [pipeline]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/cache
// [errors]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/mkersting/slidegrid/pkg/observability
package pkg
