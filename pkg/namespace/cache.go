package namespace

import "sync"

// StackCache memoizes resolved stacks by spec, so that the many components
// resolving the same namespace path during a single run (the key resolver,
// collect providers, the template renderer) share one resolution rather than
// re-walking the document each time. It is scoped to a single engine run,
// not persisted across runs - see the cache-scope discussion in
// [github.com/matzehuels/reportengine/pkg/cache].
type StackCache struct {
	mu    sync.Mutex
	byKey map[string]*Stack
}

// NewStackCache creates an empty cache.
func NewStackCache() *StackCache {
	return &StackCache{byKey: map[string]*Stack{}}
}

// GetOrResolve returns the cached stack for spec if one has already been
// resolved against root, resolving and storing it otherwise.
func (c *StackCache) GetOrResolve(root Map, spec Spec) (*Stack, error) {
	key := spec.Key()

	c.mu.Lock()
	if s, ok := c.byKey[key]; ok {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	s, err := NewStack(root).Resolve(spec)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.byKey[key] = s
	c.mu.Unlock()
	return s, nil
}
