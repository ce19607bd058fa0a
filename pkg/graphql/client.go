package graphql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// FetchPolicy decides between the result cache and the network.
type FetchPolicy string

const (
	// CacheFirst answers from the cache when possible, else fetches and stores.
	CacheFirst FetchPolicy = "cache-first"
	// NetworkOnly always fetches and stores the result.
	NetworkOnly FetchPolicy = "network-only"
	// NoCache always fetches and never stores.
	NoCache FetchPolicy = "no-cache"
	// CacheOnly never fetches; a miss is ErrCacheMiss.
	CacheOnly FetchPolicy = "cache-only"
)

const (
	HeaderClientName    = "apollographql-client-name"
	HeaderClientVersion = "apollographql-client-version"
)

var ErrCacheMiss = errors.New("graphql: no cached result for operation")

// ClientOptions are passed through to the client.
type ClientOptions struct {
	Name               string        `yaml:"name"`
	Version            string        `yaml:"version"`
	DefaultFetchPolicy FetchPolicy   `yaml:"default_fetch_policy" validate:"omitempty,oneof=cache-first network-only no-cache cache-only"`
	Timeout            time.Duration `yaml:"timeout"`
}

// Client runs operations through a link chain with an optional result cache.
// It is safe for concurrent use.
type Client struct {
	link    Link
	cache   *resultCache
	options ClientOptions
}

func NewClient(link Link, cache CacheConfig, opts ClientOptions) *Client {
	if opts.DefaultFetchPolicy == "" {
		opts.DefaultFetchPolicy = CacheFirst
	}
	return &Client{link: link, cache: newResultCache(cache), options: opts}
}

// Request describes one call.
type Request struct {
	Query         string
	Variables     map[string]any
	OperationName string
	// FetchPolicy overrides the client default for queries.
	FetchPolicy FetchPolicy
	// Headers are added to the operation before the auth link runs.
	Headers map[string]string
}

func (c *Client) Options() ClientOptions { return c.options }

// Query runs a query or subscription document.
func (c *Client) Query(ctx context.Context, req Request) (*Response, error) {
	op, err := c.operation(req)
	if err != nil {
		return nil, err
	}
	if op.Kind == KindMutation {
		return nil, fmt.Errorf("graphql: %q is a mutation; use Mutate", op.Name)
	}

	policy := req.FetchPolicy
	if policy == "" {
		policy = c.options.DefaultFetchPolicy
	}

	key, cacheable := keyFor(op)
	cacheable = cacheable && c.cache != nil

	if cacheable && (policy == CacheFirst || policy == CacheOnly) {
		if res, ok := c.cache.get(key); ok {
			return res, nil
		}
	}
	if policy == CacheOnly {
		return nil, ErrCacheMiss
	}

	res, err := c.execute(ctx, op)
	if err != nil {
		return nil, err
	}
	if cacheable && policy != NoCache && res.Err() == nil {
		c.cache.put(key, res)
	}
	return res, nil
}

// Mutate runs a mutation document. Mutations bypass the cache.
func (c *Client) Mutate(ctx context.Context, req Request) (*Response, error) {
	op, err := c.operation(req)
	if err != nil {
		return nil, err
	}
	if op.Kind != KindMutation {
		return nil, fmt.Errorf("graphql: %q is a %s; use Query", op.Name, op.Kind)
	}
	return c.execute(ctx, op)
}

// ResetStore drops every cached result.
func (c *Client) ResetStore() {
	c.cache.reset()
}

func (c *Client) operation(req Request) (*Operation, error) {
	op, err := NewOperation(req.Query, req.Variables, req.OperationName)
	if err != nil {
		return nil, err
	}
	op.SetContext(func(oc OperationContext) OperationContext {
		if oc.Headers == nil {
			oc.Headers = http.Header{}
		}
		if c.options.Name != "" {
			oc.Headers.Set(HeaderClientName, c.options.Name)
		}
		if c.options.Version != "" {
			oc.Headers.Set(HeaderClientVersion, c.options.Version)
		}
		for k, v := range req.Headers {
			oc.Headers.Set(k, v)
		}
		return oc
	})
	return op, nil
}

func (c *Client) execute(ctx context.Context, op *Operation) (*Response, error) {
	if c.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.Timeout)
		defer cancel()
	}
	return Execute(ctx, c.link, op)
}
