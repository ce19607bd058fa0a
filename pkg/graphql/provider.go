package graphql

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// ProviderConfig is handed through to the link chain and client. Link, when
// set, receives the default links and returns the chain to use.
type ProviderConfig struct {
	URI            string            `yaml:"uri" validate:"required,url"`
	Headers        map[string]string `yaml:"headers"`
	Credentials    Credentials       `yaml:"credentials" validate:"omitempty,oneof=include same-origin omit"`
	HTTPLinkConfig HTTPLinkConfig    `yaml:"http_link"`
	CacheConfig    CacheConfig       `yaml:"cache"`
	ClientOptions  ClientOptions     `yaml:"client"`
	LogLevel       string            `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	Link func(defaults []Link) Link `yaml:"-"`
}

// Provider owns a configured client.
type Provider struct {
	client *Client
}

type ProviderOption func(*providerOptions)

type providerOptions struct {
	links      []Link
	httpClient *http.Client
	terminal   Link
	logger     *slog.Logger
}

// WithLogger logs every operation through LoggerLink, dropping records below
// the configured LogLevel.
func WithLogger(log *slog.Logger) ProviderOption {
	return func(o *providerOptions) { o.logger = log }
}

// WithLinks inserts links between the auth middleware and the HTTP link.
func WithLinks(links ...Link) ProviderOption {
	return func(o *providerOptions) { o.links = append(o.links, links...) }
}

// WithProviderHTTPClient sets the http.Client used by the HTTP link.
func WithProviderHTTPClient(c *http.Client) ProviderOption {
	return func(o *providerOptions) { o.httpClient = c }
}

// WithTerminatingLink replaces the HTTP link, e.g. with a local executor.
func WithTerminatingLink(l Link) ProviderOption {
	return func(o *providerOptions) { o.terminal = l }
}

// NewProvider builds [withToken, authMiddleware, extra..., httpLink] and a
// client over it.
func NewProvider(cfg ProviderConfig, useAuth UseAuth, opts ...ProviderOption) (*Provider, error) {
	var o providerOptions
	for _, opt := range opts {
		opt(&o)
	}

	terminal := o.terminal
	if terminal == nil {
		if cfg.URI == "" {
			return nil, errors.New("graphql: provider needs a URI")
		}
		hl := cfg.HTTPLinkConfig
		if hl.Credentials == "" {
			hl.Credentials = cfg.Credentials
		}
		var httpOpts []HTTPLinkOption
		if o.httpClient != nil {
			httpOpts = append(httpOpts, WithHTTPClient(o.httpClient))
		}
		link, err := NewHTTPLink(cfg.URI, hl, httpOpts...)
		if err != nil {
			return nil, err
		}
		terminal = link
	}

	defaults := []Link{
		WithToken(useAuth),
		AuthMiddleware(staticHeaders(cfg)),
	}
	if o.logger != nil {
		filtered := slog.New(levelHandler{level: cfg.Level(), Handler: o.logger.Handler()})
		defaults = append(defaults, LoggerLink(filtered))
	}
	defaults = append(defaults, o.links...)
	defaults = append(defaults, terminal)

	var chain Link
	if cfg.Link != nil {
		chain = cfg.Link(defaults)
	} else {
		chain = From(defaults...)
	}

	return &Provider{client: NewClient(chain, cfg.CacheConfig, cfg.ClientOptions)}, nil
}

// staticHeaders merges the top-level and HTTP link headers. HTTP link
// headers win.
func staticHeaders(cfg ProviderConfig) http.Header {
	h := http.Header{}
	for k, v := range cfg.Headers {
		h.Set(k, v)
	}
	for k, v := range cfg.HTTPLinkConfig.Headers {
		h.Set(k, v)
	}
	return h
}

func (p *Provider) Client() *Client { return p.client }

type clientKey struct{}

// Attach returns a context carrying the provider's client.
func (p *Provider) Attach(ctx context.Context) context.Context {
	return WithClient(ctx, p.client)
}

// WithClient returns a context carrying c.
func WithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFromContext returns the client attached to ctx, if any.
func ClientFromContext(ctx context.Context) (*Client, bool) {
	c, ok := ctx.Value(clientKey{}).(*Client)
	return c, ok && c != nil
}

var ErrNoClient = errors.New("graphql: no client attached to context")

// Query runs a query with the client attached to ctx.
func Query(ctx context.Context, req Request) (*Response, error) {
	c, ok := ClientFromContext(ctx)
	if !ok {
		return nil, ErrNoClient
	}
	return c.Query(ctx, req)
}

// Mutate runs a mutation with the client attached to ctx.
func Mutate(ctx context.Context, req Request) (*Response, error) {
	c, ok := ClientFromContext(ctx)
	if !ok {
		return nil, ErrNoClient
	}
	return c.Mutate(ctx, req)
}

// Level maps LogLevel to a slog level. Unknown values fall back to info.
func (cfg ProviderConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// levelHandler raises the minimum level of the handler it wraps.
type levelHandler struct {
	level slog.Leveler
	slog.Handler
}

func (h levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.Handler.Enabled(ctx, l)
}

func (h levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelHandler{level: h.level, Handler: h.Handler.WithAttrs(attrs)}
}

func (h levelHandler) WithGroup(name string) slog.Handler {
	return levelHandler{level: h.level, Handler: h.Handler.WithGroup(name)}
}
