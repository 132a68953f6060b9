// Package cache provides caching utilities for sample retrieval.
package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

// Key identifies one sample request.
type Key struct {
	AppID       string
	IndexName   string
	HitsPerPage int
	Hosts       []string
}

func (k Key) String() string {
	hosts := append([]string(nil), k.Hosts...)
	sort.Strings(hosts)
	return strings.Join([]string{k.AppID, k.IndexName, strconv.Itoa(k.HitsPerPage), strings.Join(hosts, ",")}, "|")
}

// FetchFunc retrieves a sample batch on a cache miss.
type FetchFunc func(ctx context.Context) ([]*jsonvalue.Object, error)

// SampleCache provides thread-safe LRU caching of fetched sample batches.
// Concurrent misses for the same key share a single fetch. Failed fetches
// are not cached.
//
// Cached batches are shared between callers and must be treated as read-only.
type SampleCache struct {
	cache *lru.Cache[string, []*jsonvalue.Object]
	group singleflight.Group
}

// NewSampleCache creates a new LRU cache with the specified maximum number of items.
func NewSampleCache(maxItems int) (*SampleCache, error) {
	c, err := lru.New[string, []*jsonvalue.Object](maxItems)
	if err != nil {
		return nil, err
	}
	return &SampleCache{cache: c}, nil
}

// Get retrieves a batch from the cache.
func (c *SampleCache) Get(key Key) ([]*jsonvalue.Object, bool) {
	return c.cache.Get(key.String())
}

// Put adds or updates a batch in the cache.
func (c *SampleCache) Put(key Key, samples []*jsonvalue.Object) {
	c.cache.Add(key.String(), samples)
}

// GetOrFetch returns the cached batch for key, calling fetch on a miss.
// The second result reports whether the batch came from the cache.
//
// A shared fetch runs detached from any single caller's cancellation; each
// caller stops waiting when its own ctx is done.
func (c *SampleCache) GetOrFetch(ctx context.Context, key Key, fetch FetchFunc) ([]*jsonvalue.Object, bool, error) {
	k := key.String()
	if samples, ok := c.cache.Get(k); ok {
		return samples, true, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(k, func() (any, error) {
		if samples, ok := c.cache.Get(k); ok {
			return samples, nil
		}
		samples, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.cache.Add(k, samples)
		return samples, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]*jsonvalue.Object), false, nil
	}
}

// Len returns the current number of items in the cache.
func (c *SampleCache) Len() int {
	return c.cache.Len()
}
