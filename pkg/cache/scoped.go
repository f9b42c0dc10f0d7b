package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The HTTP service uses this to keep per-job artifacts apart while
// sharing one Redis instance.
//
// Example usage:
//
//	jobKeyer := NewScopedKeyer(NewDefaultKeyer(), "job:"+jobID+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SourceKey generates a prefixed key for decoded input pages.
func (k *ScopedKeyer) SourceKey(contentHash string) string {
	return k.prefix + k.inner.SourceKey(contentHash)
}

// PlanKey generates a prefixed key for a layout plan.
func (k *ScopedKeyer) PlanKey(sourceHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(sourceHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}
