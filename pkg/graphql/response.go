package graphql

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Response is a decoded GraphQL response body.
type Response struct {
	Data       json.RawMessage `json:"data,omitempty"`
	Errors     GraphQLErrors   `json:"errors,omitempty"`
	Extensions map[string]any  `json:"extensions,omitempty"`

	// FromCache is set when the client answered from its result cache.
	FromCache bool `json:"-"`
}

// Location points into the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is one entry of the "errors" array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".") + ": " + e.Message
}

// GraphQLErrors is the errors array of a response.
type GraphQLErrors []GraphQLError

func (es GraphQLErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Err returns the response errors, or nil when there are none.
func (r *Response) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	return r.Errors
}

// ErrNoData is returned when decoding a response without data.
var ErrNoData = errors.New("graphql: response has no data")

// Decode unmarshals the data field into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return ErrNoData
	}
	return json.Unmarshal(r.Data, v)
}

// Path evaluates a JSONPath expression against the data field, e.g.
// "$.posts[0].title".
func (r *Response) Path(expr string) (any, error) {
	var data any
	if err := r.Decode(&data); err != nil {
		return nil, err
	}
	return jsonpath.Get(expr, data)
}

// ServerError is a non-2xx HTTP answer from the GraphQL endpoint.
type ServerError struct {
	StatusCode int
	Body       []byte
	// Response holds the decoded body when the server still sent GraphQL JSON.
	Response *Response
}

func (e *ServerError) Error() string {
	msg := fmt.Sprintf("graphql: server responded with status %d", e.StatusCode)
	if e.Response != nil && len(e.Response.Errors) > 0 {
		msg += ": " + strings.TrimPrefix(e.Response.Errors.Error(), "graphql: ")
	}
	return msg
}
