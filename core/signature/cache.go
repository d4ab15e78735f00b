package signature

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// Cache maps selectors to resolved text signatures for the lifetime of the
// process. Entries are never evicted: LifeWindow is effectively infinite,
// there is no clean window and no size cap.
type Cache struct {
	// serialises insert-if-absent; reads go straight to bigcache
	mu    sync.Mutex
	store *bigcache.BigCache
}

func NewCache(ctx context.Context) (*Cache, error) {
	store, err := bigcache.New(ctx, bigcache.Config{
		// number of shards (must be a power of 2)
		Shards: 64,

		LifeWindow: time.Duration(math.MaxInt64),

		// <= 0 disables the cleanup goroutine entirely
		CleanWindow: 0,

		// used only in initial memory allocation
		MaxEntriesInWindow: 1024,
		MaxEntrySize:       256,

		// 0 value means no size limit, so nothing is ever overwritten
		HardMaxCacheSize: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create signature cache: %w", err)
	}

	return &Cache{store: store}, nil
}

func normalizeSelector(selector string) string {
	return strings.ToLower(strings.TrimSpace(selector))
}

// Get returns the cached signature for selector.
func (c *Cache) Get(selector string) (string, bool) {
	value, err := c.store.Get(normalizeSelector(selector))
	if err != nil {
		return "", false
	}
	return string(value), true
}

// PutIfAbsent stores signature unless selector is already cached, and returns
// whichever value ends up in the cache. Two runs racing on the same selector
// therefore agree on a single signature.
func (c *Cache) PutIfAbsent(selector, signature string) (string, error) {
	key := normalizeSelector(selector)

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.store.Get(key)
	if err == nil {
		return string(existing), nil
	}
	if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return "", err
	}

	if err := c.store.Set(key, []byte(signature)); err != nil {
		return "", err
	}
	return signature, nil
}

func (c *Cache) Len() int {
	return c.store.Len()
}

func (c *Cache) Close() error {
	return c.store.Close()
}
