package config

import (
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// actionsKey is the input document key carrying the actions_ tree.
const actionsKey = "actions_"

// Config binds an input document's root mapping to a [Registry] of
// handlers, and is the entry point the resource builder resolves keys
// through.
type Config struct {
	Root     namespace.Map
	Registry *Registry
	resolver *Resolver
	cache    *namespace.StackCache
}

// New creates a Config over root, resolved through registry.
func New(root namespace.Map, registry *Registry) *Config {
	return &Config{
		Root:     root,
		Registry: registry,
		resolver: NewResolver(registry),
		cache:    namespace.NewStackCache(),
	}
}

// Resolve resolves key within the namespace reached by spec, writing any
// newly-computed value no shallower than spec's own depth.
func (c *Config) Resolve(spec namespace.Spec, key string) (namespace.Value, int, error) {
	ns, err := c.cache.GetOrResolve(c.Root, spec)
	if err != nil {
		return nil, 0, rerrors.Wrap(rerrors.ConfigError, err, "resolving namespace %s", spec)
	}
	return c.resolver.Resolve(ns, key, ns.Len()-1, nil)
}

// Actions parses the document's actions_ tree into a flat list of
// FuzzyTargets.
func (c *Config) Actions() ([]FuzzyTarget, error) {
	raw, ok := c.Root[actionsKey]
	if !ok {
		return nil, rerrors.New(rerrors.ConfigError, "input document has no %q key", actionsKey)
	}
	return ParseActions(raw)
}
