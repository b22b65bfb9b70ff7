package roller

import (
	"context"
	"sync"

	"github.com/openwebmedia/rolldeps/domain"
)

// CachingResolver memoizes HEAD lookups so a diff pass never issues the
// same query twice for one URL. Results, including failures, are cached
// for the lifetime of the resolver; create a fresh one per run.
type CachingResolver struct {
	inner domain.RevisionResolver

	mu      sync.Mutex
	results map[string]headResult
}

type headResult struct {
	revision string
	err      error
}

// NewCachingResolver wraps a collaborator-backed resolver with memoization.
func NewCachingResolver(inner domain.RevisionResolver) *CachingResolver {
	return &CachingResolver{inner: inner, results: map[string]headResult{}}
}

// Head resolves the HEAD revision of url, consulting the cache first.
func (r *CachingResolver) Head(ctx context.Context, url string) (string, error) {
	r.mu.Lock()
	cached, hit := r.results[url]
	r.mu.Unlock()
	if hit {
		return cached.revision, cached.err
	}

	revision, err := r.inner.Head(ctx, url)

	r.mu.Lock()
	r.results[url] = headResult{revision: revision, err: err}
	r.mu.Unlock()
	return revision, err
}
