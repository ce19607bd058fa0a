package graphql

import (
	"context"
	"encoding/json"
	"sync"
)

// recorder is a terminating link that remembers what reached it.
type recorder struct {
	mu    sync.Mutex
	ops   []*Operation
	calls int
	res   *Response
	err   error
}

func (r *recorder) Request(_ context.Context, op *Operation, _ NextLink) (*Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.ops = append(r.ops, op)
	if r.err != nil {
		return nil, r.err
	}
	if r.res != nil {
		cp := *r.res
		return &cp, nil
	}
	return &Response{Data: json.RawMessage(`{"ok":true}`)}, nil
}

func (r *recorder) last() *Operation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ops) == 0 {
		return nil
	}
	return r.ops[len(r.ops)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func authenticated(token, typ string) UseAuth {
	return func() AuthState {
		return AuthState{
			IsAuthenticated: true,
			Type:            typ,
			GetToken:        func(context.Context) (string, error) { return token, nil },
		}
	}
}

func anonymous() AuthState { return AuthState{Type: "dbAuth"} }

const postsQuery = `query FindPosts($limit: Int) { posts(limit: $limit) { id title } }`
const createPost = `mutation CreatePost($title: String!) { createPost(title: $title) { id } }`
