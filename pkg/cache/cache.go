// Package cache provides the in-process result cache shared by a single
// engine run.
//
// Every CallSpec the resource builder resolves, and every namespace
// resolution the config resolver performs, is addressable by a
// (provider/config name, concrete namespace spec) pair. [Cache] stores the
// serialized result under a key built by a [Keyer]; [MemoryCache] is the
// only implementation that stores anything ([NullCache] is a no-op), since
// caching a resolved graph across separate
// process runs is out of scope (an engine run's results depend on the
// handler registry supplied at startup, which is not itself stable input).
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores byte-serialized results under string keys, with optional
// expiry.
type Cache interface {
	// Get retrieves the value for key. hit is false if the key is absent or
	// has expired.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key, if present.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer builds cache keys for the distinct things an engine run memoizes.
type Keyer interface {
	// ResultKey addresses a single CallSpec's result: the provider that
	// produced it, the concrete namespace spec it was resolved against, and
	// a hash of its resolved arguments (so two calls to the same provider
	// under the same namespace, but with different extra-args, don't
	// collide).
	ResultKey(provider, nsspec string, opts ResultKeyOpts) string

	// ConfigKey addresses a resolved namespace Stack for a given spec.
	ConfigKey(nsspec string) string

	// TemplateKey addresses a single rendered template target.
	TemplateKey(templateHash, targetName string) string
}

// ResultKeyOpts carries the parts of a CallSpec invocation that affect its
// result besides the provider name and namespace spec.
type ResultKeyOpts struct {
	ArgsHash string
}

// DefaultKeyer is the Keyer used when no other is configured.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default key scheme.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// ResultKey implements Keyer.
func (k *DefaultKeyer) ResultKey(provider, nsspec string, opts ResultKeyOpts) string {
	return hashKey("result:"+provider, nsspec, opts.ArgsHash)
}

// ConfigKey implements Keyer.
func (k *DefaultKeyer) ConfigKey(nsspec string) string {
	return hashKey("config", nsspec)
}

// TemplateKey implements Keyer.
func (k *DefaultKeyer) TemplateKey(templateHash, targetName string) string {
	return hashKey("template", templateHash, targetName)
}

// entry is a stored value with an optional expiry.
type entry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process, mutex-guarded Cache. It is the only Cache
// implementation the engine ships that stores entries ([NullCache] stores
// nothing): results only need to survive the lifetime of a single run.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() Cache {
	return &MemoryCache{entries: map[string]entry{}}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry{data: data, expiresAt: expiresAt}
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Close implements Cache.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	return nil
}

// Ensure MemoryCache implements Cache.
var _ Cache = (*MemoryCache)(nil)
