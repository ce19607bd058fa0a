package graphql

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProvider_AuthHeadersReachServer(t *testing.T) {
	type seen struct{ auth, provider, static string }
	var got seen

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = seen{
			auth:     r.Header.Get("authorization"),
			provider: r.Header.Get("auth-provider"),
			static:   r.Header.Get("x-app"),
		}
		_, _ = io.WriteString(w, `{"data":{"posts":[]}}`)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.URI = srv.URL
	cfg.Headers = map[string]string{"x-app": "blog"}

	p, err := NewProvider(cfg, authenticated("tok", "netlify"))
	require.NoError(t, err)

	_, err = p.Client().Query(context.Background(), Request{Query: postsQuery, FetchPolicy: NoCache})
	require.NoError(t, err)
	require.Equal(t, seen{auth: "Bearer tok", provider: "netlify", static: "blog"}, got)

	anon, err := NewProvider(cfg, anonymous)
	require.NoError(t, err)
	_, err = anon.Client().Query(context.Background(), Request{Query: postsQuery, FetchPolicy: NoCache})
	require.NoError(t, err)
	require.Equal(t, seen{static: "blog"}, got)
}

func TestProvider_ExtraLinksRunBeforeTerminal(t *testing.T) {
	var order []string
	term := LinkFunc(func(_ context.Context, op *Operation, _ NextLink) (*Response, error) {
		order = append(order, "terminal:"+op.Context().Headers.Get(HeaderAuthorization))
		return &Response{}, nil
	})
	extra := LinkFunc(func(ctx context.Context, op *Operation, forward NextLink) (*Response, error) {
		order = append(order, "extra:"+op.Context().Headers.Get(HeaderAuthorization))
		return forward(ctx, op)
	})

	p, err := NewProvider(ProviderConfig{}, authenticated("t", "dbAuth"), WithLinks(extra), WithTerminatingLink(term))
	require.NoError(t, err)

	_, err = p.Client().Query(context.Background(), Request{Query: postsQuery})
	require.NoError(t, err)
	require.Equal(t, []string{"extra:Bearer t", "terminal:Bearer t"}, order)
}

func TestProvider_LinkOverride(t *testing.T) {
	term := &recorder{}
	var defaults int

	cfg := ProviderConfig{Link: func(ls []Link) Link {
		defaults = len(ls)
		// Drop the auth links, keep only the terminal one.
		return ls[len(ls)-1]
	}}
	p, err := NewProvider(cfg, authenticated("t", "dbAuth"), WithTerminatingLink(term))
	require.NoError(t, err)

	_, err = p.Client().Query(context.Background(), Request{Query: postsQuery})
	require.NoError(t, err)
	require.Equal(t, 3, defaults)
	require.Empty(t, term.last().Context().Headers.Get(HeaderAuthorization))
}

func TestProvider_RequiresURI(t *testing.T) {
	_, err := NewProvider(ProviderConfig{}, anonymous)
	require.Error(t, err)
}

func TestProvider_AttachAndContextHelpers(t *testing.T) {
	term := &recorder{}
	p, err := NewProvider(ProviderConfig{}, anonymous, WithTerminatingLink(term))
	require.NoError(t, err)

	ctx := context.Background()
	_, ok := ClientFromContext(ctx)
	require.False(t, ok)
	_, err = Query(ctx, Request{Query: postsQuery})
	require.ErrorIs(t, err, ErrNoClient)

	ctx = p.Attach(ctx)
	c, ok := ClientFromContext(ctx)
	require.True(t, ok)
	require.Same(t, p.Client(), c)

	_, err = Query(ctx, Request{Query: postsQuery})
	require.NoError(t, err)
	_, err = Mutate(ctx, Request{Query: createPost})
	require.NoError(t, err)
	require.Equal(t, 2, term.count())
}

func TestProviderConfig_Level(t *testing.T) {
	require.Equal(t, "DEBUG", ProviderConfig{LogLevel: "debug"}.Level().String())
	require.Equal(t, "INFO", ProviderConfig{LogLevel: "loud"}.Level().String())
}

func TestProvider_WithLoggerHonorsLogLevel(t *testing.T) {
	for _, tc := range []struct {
		level  string
		logged bool
	}{
		{"debug", true},
		{"warn", false},
	} {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			p, err := NewProvider(ProviderConfig{LogLevel: tc.level}, anonymous,
				WithLogger(log), WithTerminatingLink(&recorder{}))
			require.NoError(t, err)

			_, err = p.Client().Query(context.Background(), Request{Query: postsQuery})
			require.NoError(t, err)
			require.Equal(t, tc.logged, strings.Contains(buf.String(), "graphql.done"), buf.String())
		})
	}
}

func TestProvider_WithLoggerKeepsWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	p, err := NewProvider(ProviderConfig{LogLevel: "warn"}, anonymous,
		WithLogger(log), WithTerminatingLink(&recorder{err: errors.New("connection refused")}))
	require.NoError(t, err)

	_, err = p.Client().Query(context.Background(), Request{Query: postsQuery})
	require.Error(t, err)
	require.Contains(t, buf.String(), "graphql.failed")
}
