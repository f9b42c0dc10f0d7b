package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/mkersting/slidegrid/pkg/cache"
	"github.com/mkersting/slidegrid/pkg/compose"
	"github.com/mkersting/slidegrid/pkg/layout"
	"github.com/mkersting/slidegrid/pkg/observability"
	"github.com/mkersting/slidegrid/pkg/source"
)

// DecodeWithCacheInfo decodes all inputs with per-input caching and
// reports whether every input was served from cache.
//
// Regular files are keyed by their content hash. Directory inputs are
// decoded fresh every time, their contents cannot be hashed cheaply.
func (r *Runner) DecodeWithCacheInfo(ctx context.Context, opts Options) ([]layout.Document, compose.ImageSet, bool, error) {
	if err := opts.ValidateForDecode(); err != nil {
		return nil, nil, false, err
	}
	r.applyLogger(&opts)

	documents := make([]layout.Document, 0, len(opts.Inputs))
	images := make(compose.ImageSet)
	allHit := true

	for di, path := range opts.Inputs {
		decoded, hit, err := r.decodeInput(ctx, path, opts.Refresh)
		if err != nil {
			return nil, nil, false, err
		}
		if !hit {
			allHit = false
		}

		doc := layout.Document{
			Name:  decoded.Name,
			Pages: make([]layout.Size, len(decoded.Pages)),
		}
		for pi, page := range decoded.Pages {
			doc.Pages[pi] = page.Size
			images[layout.PageRef{Doc: di, Page: pi}] = page.Image
		}
		documents = append(documents, doc)
	}

	return documents, images, allHit, nil
}

// decodeInput decodes one input path, consulting the cache for file
// inputs.
func (r *Runner) decodeInput(ctx context.Context, path string, refresh bool) (*source.Decoded, bool, error) {
	src, err := source.ForFile(path)
	if err != nil {
		return nil, false, err
	}

	cacheKey, cacheable := r.sourceCacheKey(path)
	if cacheable && !refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var decoded source.Decoded
			if err := json.Unmarshal(data, &decoded); err == nil {
				observability.Cache().OnCacheHit(ctx, "source")
				return &decoded, true, nil
			}
			// Corrupt entry, fall through to decode
		}
		observability.Cache().OnCacheMiss(ctx, "source")
	}

	start := time.Now()
	decoded, err := src.Decode(ctx, path)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("decoded input",
		"path", path,
		"pages", len(decoded.Pages),
		"duration", time.Since(start))

	if cacheable {
		if data, err := json.Marshal(decoded); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSource)
			observability.Cache().OnCacheSet(ctx, "source", len(data))
		}
	}

	return decoded, false, nil
}

// sourceCacheKey returns the cache key for a file input, or false for
// inputs that cannot be content-hashed.
func (r *Runner) sourceCacheKey(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return r.Keyer.SourceKey(cache.Hash(data)), true
}
