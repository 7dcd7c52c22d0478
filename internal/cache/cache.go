// Package cache holds query results keyed by the read that produced them.
// Writers drop every key under a collection prefix after a mutation, so the
// next read goes back to the store.
package cache

import (
	"context"
	"time"
)

const (
	KeyCategories         = "categories"
	KeyProducts           = "products"
	KeyProductsByCategory = "products:category:%s"
	KeyProduct            = "products:id:%s"
)

type Store interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate removes key and every key that starts with key + ":".
	Invalidate(ctx context.Context, key string) error
}

// Nop never stores anything; every read misses.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Invalidate(context.Context, string) error { return nil }
