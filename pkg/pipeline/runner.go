package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkersting/slidegrid/pkg/assemble"
	"github.com/mkersting/slidegrid/pkg/cache"
	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/errors"
	"github.com/mkersting/slidegrid/pkg/layout"
	"github.com/mkersting/slidegrid/pkg/observability"
	"github.com/mkersting/slidegrid/pkg/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger, it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete decode → plan → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Decode
	decodeStart := time.Now()
	observability.Pipeline().OnDecodeStart(ctx, opts.Inputs)
	documents, images, decodeHit, err := r.DecodeWithCacheInfo(ctx, opts)
	pages := 0
	for _, doc := range documents {
		pages += len(doc.Pages)
	}
	observability.Pipeline().OnDecodeComplete(ctx, opts.Inputs, pages, time.Since(decodeStart), err)
	if err != nil {
		return nil, err
	}
	result.Documents = documents
	result.SourceHash = SourceHash(documents, images)
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.Stats.DocumentCount = len(documents)
	result.Stats.PageCount = pages
	result.CacheInfo.DecodeHit = decodeHit

	r.Logger.Info("decoded inputs",
		"documents", result.Stats.DocumentCount,
		"pages", result.Stats.PageCount,
		"duration", result.Stats.DecodeTime)

	if !opts.SingleFile {
		return r.executePerDocument(ctx, opts, result, images)
	}

	// Stage 2: Plan
	planStart := time.Now()
	observability.Pipeline().OnPlanStart(ctx, len(documents))
	plan, planHit, err := r.PlanWithCacheInfo(ctx, documents, result.SourceHash, opts)
	planPages := 0
	if plan != nil {
		planPages = plan.PageCount()
	}
	observability.Pipeline().OnPlanComplete(ctx, planPages, time.Since(planStart), err)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	result.Stats.PlanTime = time.Since(planStart)
	result.CacheInfo.PlanHit = planHit

	r.Logger.Info("computed plan",
		"pages", plan.PageCount(),
		"duration", result.Stats.PlanTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, plan, images, result.SourceHash, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// executePerDocument runs the plan and render stages once per document.
// Every document gets its own cell size and its own output PDF.
func (r *Runner) executePerDocument(ctx context.Context, opts Options, result *Result, images compose.ImageSet) (*Result, error) {
	planStart := time.Now()
	outputs, err := assemble.AssembleEach(result.Documents, images, opts.GridConfig())
	if err != nil {
		return nil, err
	}
	result.Stats.PlanTime = time.Since(planStart)

	renderStart := time.Now()
	result.Files = make(map[string][]byte, len(outputs))
	for i, pages := range outputs {
		name := result.Documents[i].Name
		data, err := renderPDF(pages, name)
		if err != nil {
			return nil, err
		}
		if opts.ValidateOutput {
			if err := sink.VerifyPDF(data); err != nil {
				return nil, err
			}
		}
		result.Files[name] = data
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered documents",
		"files", len(result.Files),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PlanWithCacheInfo computes the layout plan with caching and returns
// cache hit info.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, documents []layout.Document, srcHash string, opts Options) (*layout.Plan, bool, error) {
	opts.SetPlanDefaults()
	cacheKey := r.Keyer.PlanKey(srcHash, opts.PlanKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if plan, err := layout.UnmarshalPlan(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "plan")
				return plan, true, nil
			}
			// Corrupt entry, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "plan")

	var planOpts []layout.Option
	if opts.Index {
		planOpts = append(planOpts, layout.WithIndex())
	}
	plan, err := layout.Build(documents, opts.GridConfig(), planOpts...)
	if err != nil {
		return nil, false, err
	}

	if data, err := layout.MarshalPlan(plan); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLPlan)
		observability.Cache().OnCacheSet(ctx, "plan", len(data))
	}

	return plan, false, nil
}

// Plan is a convenience wrapper that discards the cache hit info.
func (r *Runner) Plan(ctx context.Context, documents []layout.Document, srcHash string, opts Options) (*layout.Plan, error) {
	plan, _, err := r.PlanWithCacheInfo(ctx, documents, srcHash, opts)
	return plan, err
}

// RenderWithCacheInfo renders artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, plan *layout.Plan, images compose.ImageSet, srcHash string, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	planData, err := layout.MarshalPlan(plan)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeSerialization, err, "serialize plan for cache key")
	}
	keyHash := cache.Hash(append(planData, srcHash...))

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	pages, err := assemble.ComposePlan(plan, images)
	if err != nil {
		return nil, false, err
	}
	rendered, err := renderArtifacts(plan, pages, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// SourceHash computes a content hash covering page geometry and image
// bytes, so any input change invalidates downstream cache entries.
func SourceHash(documents []layout.Document, images compose.ImageSet) string {
	docData, _ := json.Marshal(documents)
	sum := cache.Hash(docData)
	for di, doc := range documents {
		for pi := range doc.Pages {
			img := images[layout.PageRef{Doc: di, Page: pi}]
			sum = cache.Hash([]byte(sum + cache.Hash(img.Data)))
		}
	}
	return sum
}
