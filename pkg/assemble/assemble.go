// Package assemble orchestrates planning and composition across documents.
//
// The assembler owns the two batching modes:
//
//   - Merged: one plan across the whole batch, so the cell size, page
//     breaks, and index page are consistent for every document.
//   - Per-document: one independent plan per document, never an index.
//
// Which mode runs is the single boolean branch selected by the caller;
// everything downstream (composition, sinks) is identical.
package assemble

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/layout"
)

// Option configures assembly.
type Option func(*options)

type options struct {
	index bool
}

// WithIndex prepends a generated index page to merged output. Ignored by
// [AssembleEach], which never produces an index.
func WithIndex() Option {
	return func(o *options) { o.index = true }
}

// Assemble plans the whole batch in one pass and composes every output
// page, including the index page when requested. The planner runs exactly
// once so mixed-size documents share one cell size and page numbering.
func Assemble(documents []layout.Document, images compose.ImageSet, config layout.GridConfig, opts ...Option) ([]compose.DrawablePage, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var planOpts []layout.Option
	if o.index {
		planOpts = append(planOpts, layout.WithIndex())
	}

	plan, err := layout.Build(documents, config, planOpts...)
	if err != nil {
		return nil, err
	}

	return ComposePlan(plan, images)
}

// AssembleEach plans and composes every document independently: one output
// page sequence per input document, in input order. Cell sizes are derived
// per document, and no index page is ever generated.
func AssembleEach(documents []layout.Document, images compose.ImageSet, config layout.GridConfig) ([][]compose.DrawablePage, error) {
	outputs := make([][]compose.DrawablePage, 0, len(documents))

	for di, doc := range documents {
		sub := make(compose.ImageSet)
		for ref, img := range images {
			if ref.Doc == di {
				sub[layout.PageRef{Doc: 0, Page: ref.Page}] = img
			}
		}

		plan, err := layout.Build([]layout.Document{doc}, config)
		if err != nil {
			return nil, fmt.Errorf("plan %q: %w", doc.Name, err)
		}
		pages, err := ComposePlan(plan, sub)
		if err != nil {
			return nil, fmt.Errorf("compose %q: %w", doc.Name, err)
		}
		outputs = append(outputs, pages)
	}

	return outputs, nil
}

// ComposePlan renders an already computed plan into drawable pages, index
// page first. Callers that cache plans use this to skip replanning.
func ComposePlan(plan *layout.Plan, images compose.ImageSet) ([]compose.DrawablePage, error) {
	pages := make([]compose.DrawablePage, 0, plan.PageCount())

	if plan.HasIndex() {
		lines := make([]compose.IndexLine, len(plan.Index))
		for i, entry := range plan.Index {
			lines[i] = compose.IndexLine{Name: entry.Name, PageLabel: strconv.Itoa(entry.StartPage)}
		}
		pages = append(pages, compose.ComposeIndex(
			plan.PageWidth, plan.PageHeight,
			plan.Config.Margin, plan.Config.TopMargin,
			lines,
		))
	}

	// Pages read disjoint inputs, so they compose concurrently. Results
	// land at their plan index, keeping output order independent of
	// completion order.
	composed := make([]compose.DrawablePage, len(plan.Pages))
	errs := make([]error, len(plan.Pages))

	var wg sync.WaitGroup
	for i, page := range plan.Pages {
		wg.Add(1)
		go func(i int, page layout.Page) {
			defer wg.Done()
			drawable, err := compose.Compose(page, images)
			if err != nil {
				errs[i] = fmt.Errorf("output page %d: %w", i+1, err)
				return
			}
			composed[i] = drawable
		}(i, page)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return append(pages, composed...), nil
}
