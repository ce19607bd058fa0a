package graphql

import (
	"encoding/json"
	"maps"
	"slices"
	"sync"

	"github.com/golang/groupcache/lru"
)

// CacheConfig sizes the result cache. It is a per-operation response cache,
// not a normalized entity store.
type CacheConfig struct {
	// MaxEntries bounds the cache; zero means DefaultCacheEntries.
	MaxEntries int `yaml:"max_entries" validate:"gte=0"`
	// Disabled stops storing results. cache-first and network-only then
	// always fetch, and cache-only always fails with ErrCacheMiss.
	Disabled bool `yaml:"disabled"`
}

const DefaultCacheEntries = 256

// resultCache is a mutex-guarded LRU of successful query responses.
type resultCache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

func newResultCache(cfg CacheConfig) *resultCache {
	if cfg.Disabled {
		return nil
	}
	n := cfg.MaxEntries
	if n <= 0 {
		n = DefaultCacheEntries
	}
	return &resultCache{lru: lru.New(n)}
}

type cacheKey struct {
	name      string
	query     string
	variables string
}

// keyFor returns false when the variables cannot be encoded, which disables
// caching for that operation. encoding/json sorts map keys, so equal
// variables produce the same key.
func keyFor(op *Operation) (cacheKey, bool) {
	vars := ""
	if len(op.Variables) > 0 {
		b, err := json.Marshal(op.Variables)
		if err != nil {
			return cacheKey{}, false
		}
		vars = string(b)
	}
	return cacheKey{name: op.Name, query: op.Query, variables: vars}, true
}

func (c *resultCache) get(k cacheKey) (*Response, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(k)
	if !ok {
		return nil, false
	}
	res := cloneResponse(v.(*Response))
	res.FromCache = true
	return res, true
}

func (c *resultCache) put(k cacheKey, res *Response) {
	if c == nil || res == nil {
		return
	}
	stored := cloneResponse(res)
	stored.FromCache = false
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(k, stored)
}

func (c *resultCache) reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// cloneResponse copies everything a caller could mutate, so cached entries
// never share memory with returned responses.
func cloneResponse(r *Response) *Response {
	out := *r
	if r.Data != nil {
		out.Data = append(json.RawMessage(nil), r.Data...)
	}
	if r.Errors != nil {
		out.Errors = make(GraphQLErrors, len(r.Errors))
		for i, e := range r.Errors {
			e.Locations = slices.Clone(e.Locations)
			e.Path = slices.Clone(e.Path)
			e.Extensions = cloneMap(e.Extensions)
			out.Errors[i] = e
		}
	}
	out.Extensions = cloneMap(r.Extensions)
	return &out
}

// cloneMap deep-copies JSON-shaped values (maps, slices, scalars).
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
