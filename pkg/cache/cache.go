// Package cache provides pluggable byte caches and deterministic key
// generation for the conversion pipeline.
//
// Three backends are available: a file cache for CLI usage, a Redis cache
// for the HTTP service, and a null cache for tests or when caching is
// disabled. Keys are derived from content hashes plus the options that
// influence the cached value, so any change in input or configuration
// produces a fresh key.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Decoded sources are keyed by content
// hash, so they stay valid for a long time. Plans and artifacts are cheap
// to recompute and expire sooner.
const (
	TTLSource   = 30 * 24 * time.Hour
	TTLPlan     = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PlanKeyOpts captures every layout option that influences a computed plan.
type PlanKeyOpts struct {
	SlidesPerRow       int
	RowsPerPage        int
	Gap                float64
	Margin             float64
	TopMargin          float64
	RTL                bool
	NewPagePerDocument bool
	Index              bool
}

// ArtifactKeyOpts captures the render options that influence an output
// artifact.
type ArtifactKeyOpts struct {
	Format string
	Scale  float64
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// SourceKey keys the decoded pages of one input by its content hash.
	SourceKey(contentHash string) string

	// PlanKey keys a computed layout plan.
	PlanKey(sourceHash string, opts PlanKeyOpts) string

	// ArtifactKey keys a rendered output artifact.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generation scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SourceKey generates a key for decoded input pages.
func (k *DefaultKeyer) SourceKey(contentHash string) string {
	return "source:" + contentHash
}

// PlanKey generates a key for a layout plan.
func (k *DefaultKeyer) PlanKey(sourceHash string, opts PlanKeyOpts) string {
	return hashKey("plan", sourceHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", planHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
