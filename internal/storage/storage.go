// Package storage holds the client-local key/value state of the storefront:
// the cart mirror, the cached bearer token, the user profile and the
// remember-me preference. Values are opaque strings (JSON by convention).
package storage

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is a synchronous key/value store. Implementations must be safe for
// concurrent use. There are no multi-key transactions.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type namespaced struct {
	prefix string
	next   Store
}

// Namespace scopes every key of s under prefix, so several sessions can share
// one backing store without seeing each other's keys.
func Namespace(s Store, prefix string) Store {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		return s
	}
	return &namespaced{prefix: prefix + ":", next: s}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.next.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.next.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.next.Delete(ctx, n.prefix+key)
}

// ForSession is the namespace holding one storefront session's local state.
func ForSession(s Store, sessionID string) Store {
	return Namespace(s, "session:"+sessionID)
}
