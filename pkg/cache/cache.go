// Package cache stores rendered artifacts such as dependency graph images.
//
// Rendering a sheet's graph through Graphviz is the only expensive step in
// the CLI, and its output depends only on the DOT source and the output
// format. [ArtifactKey] hashes both, so an unchanged sheet renders once.
//
//	c, _ := cache.NewFileCache(dir)
//	c = cache.Instrumented(c, "svg")
//	key := cache.ArtifactKey(dot, cache.ArtifactKeyOpts{Format: "svg"})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/cellgraph/pkg/observability"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and
	// unexpired. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Layout string `json:"layout,omitempty"`
}

// ArtifactKey returns the cache key for rendering dot with opts.
func ArtifactKey(dot string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", Hash([]byte(dot)), opts)
}

// instrumented reports hits, misses and writes to the registered cache
// hooks.
type instrumented struct {
	Cache
	keyType string
}

// Instrumented wraps c so that its traffic is reported to
// observability.Cache() under keyType.
func Instrumented(c Cache, keyType string) Cache {
	return &instrumented{Cache: c, keyType: keyType}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	return nil
}
