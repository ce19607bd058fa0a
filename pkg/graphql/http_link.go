package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/v-gjy/redwood/internal/infra/httpclient"
)

// Credentials mirrors the fetch credentials modes.
type Credentials string

const (
	CredentialsInclude    Credentials = "include"
	CredentialsSameOrigin Credentials = "same-origin"
	CredentialsOmit       Credentials = "omit"
)

// HTTPLinkConfig is passed through to the HTTP link.
type HTTPLinkConfig struct {
	// Headers are sent with every operation, under the auth headers.
	Headers map[string]string `yaml:"headers"`
	// Credentials "include" and "same-origin" keep cookies between calls.
	// A cookie jar only replays cookies to the host that set them.
	Credentials Credentials   `yaml:"credentials" validate:"omitempty,oneof=include same-origin omit"`
	Timeout     time.Duration `yaml:"timeout"`
	// MaxResponseBytes caps the response body. Zero means no cap.
	MaxResponseBytes int64 `yaml:"max_response_bytes" validate:"gte=0"`
	// Tracing wraps the transport with OpenTelemetry client spans.
	Tracing bool `yaml:"tracing"`
}

type doer interface {
	Do(ctx context.Context, req *http.Request) (httpclient.ResponseData, error)
}

// HTTPLink is the terminating link that posts operations to a GraphQL
// endpoint.
type HTTPLink struct {
	uri  string
	exec doer
}

type HTTPLinkOption func(*httpLinkOptions)

type httpLinkOptions struct {
	client *http.Client
}

// WithHTTPClient replaces the tuned default client.
func WithHTTPClient(c *http.Client) HTTPLinkOption {
	return func(o *httpLinkOptions) { o.client = c }
}

func NewHTTPLink(uri string, cfg HTTPLinkConfig, opts ...HTTPLinkOption) (*HTTPLink, error) {
	var o httpLinkOptions
	for _, opt := range opts {
		opt(&o)
	}

	clientCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}
	clientCfg.Tracing = cfg.Tracing

	client := o.client
	if client == nil {
		client = httpclient.New(clientCfg)
	}
	if cfg.Credentials == CredentialsInclude || cfg.Credentials == CredentialsSameOrigin {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		withJar := *client
		withJar.Jar = jar
		client = &withJar
	}

	return &HTTPLink{
		uri: uri,
		exec: httpclient.NewExecutor(
			httpclient.WithClient(client),
			httpclient.WithTimeout(clientCfg.Timeout),
			httpclient.WithMaxBodyBytes(cfg.MaxResponseBytes),
		),
	}, nil
}

type requestBody struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Request posts op. forward is ignored.
func (l *HTTPLink) Request(ctx context.Context, op *Operation, _ NextLink) (*Response, error) {
	body := requestBody{
		Query:         op.Query,
		Variables:     op.Variables,
		OperationName: op.Name,
	}

	req, err := httpclient.BuildJSONRequest(ctx, http.MethodPost, l.uri, op.Context().Headers, body)
	if err != nil {
		return nil, err
	}

	res, err := l.exec.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("graphql: %s %s: %w", op.Kind, op.Name, err)
	}
	if res.Truncated {
		return nil, fmt.Errorf("graphql: response for %q exceeds the configured size limit", op.Name)
	}

	var out Response
	decodeErr := json.Unmarshal(res.BodyBytes, &out)

	if res.Status < 200 || res.Status > 299 {
		se := &ServerError{StatusCode: res.Status, Body: res.BodyBytes}
		if decodeErr == nil && (len(out.Data) > 0 || len(out.Errors) > 0) {
			se.Response = &out
		}
		return nil, se
	}
	if decodeErr != nil {
		ct := res.Headers.Get("Content-Type")
		if ct != "" && !strings.Contains(ct, "json") {
			return nil, fmt.Errorf("graphql: unexpected content type %q", ct)
		}
		return nil, fmt.Errorf("graphql: decode response: %w", decodeErr)
	}
	return &out, nil
}

var _ Link = (*HTTPLink)(nil)
