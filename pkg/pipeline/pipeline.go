// Package pipeline provides the core conversion pipeline for slidegrid.
//
// This package implements the complete decode → plan → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: Read input documents (PDF, images) into pages
//  2. Plan: Compute the grid layout for all pages
//  3. Render: Generate output in various formats (PDF, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.NewOptions("deck.pdf")
//	opts.SingleFile = true
//	opts.Formats = []string{"pdf"}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf := result.Artifacts["pdf"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkersting/slidegrid/pkg/cache"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
)

// Default grid values, shared by CLI and API.
const (
	// DefaultSlidesPerRow is the number of slides placed side by side.
	DefaultSlidesPerRow = 2

	// DefaultGap is the space between slides in points.
	DefaultGap = 10.0

	// DefaultMargin is the side and bottom margin in points.
	DefaultMargin = 20.0

	// DefaultTopMargin is the top margin in points.
	DefaultTopMargin = 0.0

	// DefaultScale is the raster scale for PNG output in pixels per point.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// Options contains all configuration for the conversion pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Decode options
	Inputs  []string `json:"inputs,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Plan options
	SlidesPerRow int     `json:"slides_per_row,omitempty"`
	RowsPerPage  int     `json:"rows_per_page,omitempty"`
	Gap          float64 `json:"gap,omitempty"`
	Margin       float64 `json:"margin,omitempty"`
	TopMargin    float64 `json:"top_margin,omitempty"`
	RTL          bool    `json:"rtl,omitempty"`

	// SingleFile merges all inputs into one output document.
	SingleFile bool `json:"single_file,omitempty"`

	// NoNewPage keeps documents flowing onto shared pages in single-file
	// mode. By default every document starts on a fresh page there.
	NoNewPage bool `json:"no_new_page,omitempty"`

	// Index prepends a table of contents page in single-file mode.
	Index bool `json:"index,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// ValidateOutput re-parses rendered PDFs with pdfcpu before they are
	// returned. Slower, but catches structural defects early.
	ValidateOutput bool `json:"validate_output,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// NewOptions returns Options for the given inputs carrying the documented
// grid and render defaults. Callers overriding a field afterwards keep
// their value, including explicit zeros.
func NewOptions(inputs ...string) Options {
	return Options{
		Inputs:       inputs,
		SlidesPerRow: DefaultSlidesPerRow,
		RowsPerPage:  layout.DefaultRowsPerPage,
		Gap:          DefaultGap,
		Margin:       DefaultMargin,
		TopMargin:    DefaultTopMargin,
		Scale:        DefaultScale,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Documents are the decoded inputs.
	Documents []layout.Document

	// SourceHash is the content hash over all decoded documents.
	SourceHash string

	// Plan is the computed grid layout. Nil when running per-document,
	// where each output carries its own plan.
	Plan *layout.Plan

	// Artifacts contains rendered outputs keyed by format
	// (single-file mode).
	Artifacts map[string][]byte

	// Files contains rendered PDFs keyed by document name
	// (per-document mode).
	Files map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DocumentCount int
	PageCount     int
	DecodeTime    time.Duration
	PlanTime      time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DecodeHit bool // Whether all decoded inputs came from cache
	PlanHit   bool // Whether the plan came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: pdf, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForDecode(); err != nil {
		return err
	}
	o.SetPlanDefaults()
	if err := o.GridConfig().Validate(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForDecode checks required fields for decoding.
func (o *Options) ValidateForDecode() error {
	if len(o.Inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one input is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetPlanDefaults sets default values for layout planning. Zero is a
// valid gap and margin, so those defaults live in NewOptions and in the
// surfaces that collect user input, never here.
func (o *Options) SetPlanDefaults() {
	if o.SlidesPerRow == 0 {
		o.SlidesPerRow = DefaultSlidesPerRow
	}
	if o.RowsPerPage == 0 {
		o.RowsPerPage = layout.DefaultRowsPerPage
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPDF}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// NewPagePerDocument reports whether each document starts on a fresh page.
// Only single-file mode shares pages between documents at all, and there
// the original behavior is a page break per document unless disabled.
func (o *Options) NewPagePerDocument() bool {
	return o.SingleFile && !o.NoNewPage
}

// GridConfig returns the layout configuration derived from the options.
func (o *Options) GridConfig() layout.GridConfig {
	return layout.GridConfig{
		SlidesPerRow:       o.SlidesPerRow,
		RowsPerPage:        o.RowsPerPage,
		Gap:                o.Gap,
		Margin:             o.Margin,
		TopMargin:          o.TopMargin,
		RTL:                o.RTL,
		NewPagePerDocument: o.NewPagePerDocument(),
	}
}

// PlanKeyOpts returns cache key options for plan computation.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		SlidesPerRow:       o.SlidesPerRow,
		RowsPerPage:        o.RowsPerPage,
		Gap:                o.Gap,
		Margin:             o.Margin,
		TopMargin:          o.TopMargin,
		RTL:                o.RTL,
		NewPagePerDocument: o.NewPagePerDocument(),
		Index:              o.Index,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Scale:  o.Scale,
	}
}
