package graphql

import (
	"context"
	"net/http"
)

const (
	HeaderAuthorization = "authorization"
	HeaderAuthProvider  = "auth-provider"
)

// AuthState is a snapshot of the auth layer.
type AuthState struct {
	IsAuthenticated bool
	// GetToken is optional. Without it no token is attached even when
	// authenticated.
	GetToken func(ctx context.Context) (string, error)
	// Type names the auth provider, e.g. "dbAuth" or "auth0".
	Type string
}

// UseAuth returns the current auth state. WithToken calls it once per
// operation; the provider type it reports travels in the operation context.
type UseAuth func() AuthState

// WithToken stores the current token in the operation context. The token is
// absent when the user is not authenticated or no getter is configured.
func WithToken(useAuth UseAuth) Link {
	return SetContext(func(ctx context.Context, oc OperationContext) (OperationContext, error) {
		oc.Token = ""
		oc.AuthProvider = ""
		if useAuth == nil {
			return oc, nil
		}
		state := useAuth()
		if !state.IsAuthenticated || state.GetToken == nil {
			return oc, nil
		}
		token, err := state.GetToken(ctx)
		if err != nil {
			return oc, err
		}
		oc.Token = token
		oc.AuthProvider = state.Type
		return oc, nil
	})
}

// AuthMiddleware merges static headers into the operation and, when a token
// is present, adds the authorization and auth-provider headers. It reads the
// token and provider type stored by WithToken.
func AuthMiddleware(static http.Header) Link {
	return LinkFunc(func(ctx context.Context, op *Operation, forward NextLink) (*Response, error) {
		op.SetContext(func(oc OperationContext) OperationContext {
			headers := static.Clone()
			if headers == nil {
				headers = http.Header{}
			}
			for k, vs := range oc.Headers {
				headers[k] = append([]string(nil), vs...)
			}

			if oc.Token != "" {
				headers.Set(HeaderAuthorization, "Bearer "+oc.Token)
				headers.Set(HeaderAuthProvider, oc.AuthProvider)
			} else {
				headers.Del(HeaderAuthorization)
				headers.Del(HeaderAuthProvider)
			}

			oc.Headers = headers
			return oc
		})
		return forward(ctx, op)
	})
}
