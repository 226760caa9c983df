// Package cachekv wraps goware/cachestore2 stores with namespaced
// keys, xxhash-sharded per-key locking, and singleflight-collapsed
// fills so concurrent requests for the same cold key hit the fill
// function once.
package cachekv

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	memcache "github.com/goware/cachestore-mem"
	cachestore "github.com/goware/cachestore2"
	"github.com/goware/singleflight"
)

func init() {
	// Mirrors cmd/chain-watch's cachestore.MaxKeyLength tuning in the
	// teacher repo; our namespaced keys (namespace + chain id +
	// address) can run long.
	cachestore.MaxKeyLength = 180
}

const shardCount = 256

// Cache is a namespaced, generic cache in front of a
// cachestore2.Store[T]. Namespacing keeps the contract, creation, and
// proxy caches independent even though they may share a backing
// store.
type Cache[T any] struct {
	namespace string
	store     cachestore.Store[T]
	group     singleflight.Group
	locks     []sync.Mutex
}

// New builds an in-memory, size-bounded cache for T under namespace.
func New[T any](namespace string, size uint32) (*Cache[T], error) {
	store, err := memcache.NewCacheWithSize[T](size)
	if err != nil {
		return nil, fmt.Errorf("cachekv: opening %q cache: %w", namespace, err)
	}
	return &Cache[T]{
		namespace: namespace,
		store:     store,
		locks:     make([]sync.Mutex, shardCount),
	}, nil
}

func (c *Cache[T]) fullKey(key string) string {
	return c.namespace + ":" + key
}

func (c *Cache[T]) shard(key string) *sync.Mutex {
	h := xxhash.Sum64String(key)
	return &c.locks[h%uint64(len(c.locks))]
}

// Get reads a value, reporting whether it was present.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	return c.store.Get(ctx, c.fullKey(key))
}

// Set writes a value unconditionally.
func (c *Cache[T]) Set(ctx context.Context, key string, val T) error {
	return c.store.Set(ctx, c.fullKey(key), val)
}

// Delete removes a value, ignoring a missing key.
func (c *Cache[T]) Delete(ctx context.Context, key string) {
	c.store.Delete(ctx, c.fullKey(key))
}

// GetOrFill returns the cached value for key, or calls fill to
// produce and cache one. Concurrent callers for the same key share a
// single in-flight fill: a per-shard mutex serializes the double-check
// against the store, and singleflight collapses the fill call itself
// so a cold key under fan-out (e.g. the same contract requested by
// several concurrent tool calls) only hits upstream once.
func (c *Cache[T]) GetOrFill(ctx context.Context, key string, fill func(ctx context.Context) (T, error)) (T, error) {
	full := c.fullKey(key)

	if v, ok, err := c.store.Get(ctx, full); err != nil {
		var zero T
		return zero, err
	} else if ok {
		return v, nil
	}

	mu := c.shard(full)
	mu.Lock()
	defer mu.Unlock()

	if v, ok, err := c.store.Get(ctx, full); err != nil {
		var zero T
		return zero, err
	} else if ok {
		return v, nil
	}

	v, err, _ := c.group.Do(full, func() (any, error) {
		val, ferr := fill(ctx)
		if ferr != nil {
			return nil, ferr
		}
		if serr := c.store.Set(ctx, full, val); serr != nil {
			return nil, serr
		}
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// ClearAll drops every entry in the cache.
func (c *Cache[T]) ClearAll(ctx context.Context) {
	c.store.ClearAll(ctx)
}
