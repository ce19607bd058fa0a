package graphql

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// OperationKind is the GraphQL operation type.
type OperationKind string

const (
	KindQuery        OperationKind = "query"
	KindMutation     OperationKind = "mutation"
	KindSubscription OperationKind = "subscription"
)

// OperationContext is the per-operation state links pass to each other.
// Token is empty when the operation is unauthenticated.
type OperationContext struct {
	Headers      http.Header
	Token        string
	AuthProvider string
	Values       map[string]any
}

func (oc OperationContext) clone() OperationContext {
	out := OperationContext{Token: oc.Token, AuthProvider: oc.AuthProvider}
	if oc.Headers != nil {
		out.Headers = oc.Headers.Clone()
	}
	if oc.Values != nil {
		out.Values = maps.Clone(oc.Values)
	}
	return out
}

// Operation is a single GraphQL request travelling through a link chain.
type Operation struct {
	ID        uuid.UUID
	Name      string
	Query     string
	Variables map[string]any
	Kind      OperationKind

	ctx OperationContext
}

var (
	ErrEmptyDocument      = errors.New("graphql: empty document")
	ErrOperationNotFound  = errors.New("graphql: operation not found in document")
	ErrOperationAmbiguous = errors.New("graphql: document has several operations; an operation name is required")
)

// NewOperation parses query and selects the operation to run. name may be
// empty when the document holds exactly one operation.
func NewOperation(query string, variables map[string]any, name string) (*Operation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyDocument
	}

	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return nil, fmt.Errorf("graphql: parse document: %w", err)
	}

	def, err := selectOperation(doc, name)
	if err != nil {
		return nil, err
	}

	return &Operation{
		ID:        uuid.New(),
		Name:      def.Name,
		Query:     query,
		Variables: variables,
		Kind:      OperationKind(def.Operation),
	}, nil
}

func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name != "" {
		def := doc.Operations.ForName(name)
		if def == nil {
			return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, name)
		}
		return def, nil
	}
	switch len(doc.Operations) {
	case 0:
		return nil, ErrOperationNotFound
	case 1:
		return doc.Operations[0], nil
	default:
		return nil, ErrOperationAmbiguous
	}
}

// Context returns a copy of the operation context.
func (o *Operation) Context() OperationContext {
	return o.ctx.clone()
}

// SetContext replaces the operation context with fn's result. fn receives a
// copy, so it may modify it freely.
func (o *Operation) SetContext(fn func(OperationContext) OperationContext) {
	o.ctx = fn(o.ctx.clone())
}
