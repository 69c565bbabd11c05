// Package middleware provides request store decorators applied before persistence.
package middleware

import "github.com/aretw0/stitch/pkg/ports"

// Middleware allows wrapping a RequestStore to add behavior.
type Middleware func(ports.RequestStore) ports.RequestStore

// Wrap applies middlewares so that the first one listed sees summaries first.
func Wrap(store ports.RequestStore, mws ...Middleware) ports.RequestStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
