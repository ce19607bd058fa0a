package graphql

import (
	"context"
	"errors"
)

// NextLink forwards an operation to the rest of the chain.
type NextLink func(ctx context.Context, op *Operation) (*Response, error)

// Link is one step of the request pipeline. A link may change the operation,
// call forward any number of times, or answer on its own. The last link of a
// chain is terminating: it ignores forward and produces the response.
type Link interface {
	Request(ctx context.Context, op *Operation, forward NextLink) (*Response, error)
}

// LinkFunc adapts a function to Link.
type LinkFunc func(ctx context.Context, op *Operation, forward NextLink) (*Response, error)

func (f LinkFunc) Request(ctx context.Context, op *Operation, forward NextLink) (*Response, error) {
	return f(ctx, op, forward)
}

// ErrNoTerminatingLink is returned when an operation reaches the end of a
// chain without a link producing a response.
var ErrNoTerminatingLink = errors.New("graphql: link chain has no terminating link")

type chain []Link

// From composes links left to right. Nil links are dropped.
func From(links ...Link) Link {
	c := make(chain, 0, len(links))
	for _, l := range links {
		if l != nil {
			c = append(c, l)
		}
	}
	return c
}

func (c chain) Request(ctx context.Context, op *Operation, forward NextLink) (*Response, error) {
	return c.at(0, forward)(ctx, op)
}

func (c chain) at(i int, last NextLink) NextLink {
	if i == len(c) {
		if last == nil {
			return func(context.Context, *Operation) (*Response, error) {
				return nil, ErrNoTerminatingLink
			}
		}
		return last
	}
	return func(ctx context.Context, op *Operation) (*Response, error) {
		return c[i].Request(ctx, op, c.at(i+1, last))
	}
}

// Execute runs op through l with nothing after it.
func Execute(ctx context.Context, l Link, op *Operation) (*Response, error) {
	return l.Request(ctx, op, nil)
}

// SetContext returns a link that updates the operation context before
// forwarding. An error from fn aborts the operation.
func SetContext(fn func(ctx context.Context, oc OperationContext) (OperationContext, error)) Link {
	return LinkFunc(func(ctx context.Context, op *Operation, forward NextLink) (*Response, error) {
		next, err := fn(ctx, op.Context())
		if err != nil {
			return nil, err
		}
		op.SetContext(func(OperationContext) OperationContext { return next })
		return forward(ctx, op)
	})
}
