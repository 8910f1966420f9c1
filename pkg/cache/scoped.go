package cache

// ScopedKeyer wraps a Keyer with a prefix, so that a single process-wide
// [Cache] can be shared by independent engine runs (e.g. concurrent
// "serve" sessions) without their keys colliding.
//
// Example usage:
//
//	runKeyer := NewScopedKeyer(NewDefaultKeyer(), "run:"+runID+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed key for a CallSpec result.
func (k *ScopedKeyer) ResultKey(provider, nsspec string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(provider, nsspec, opts)
}

// ConfigKey generates a prefixed key for a resolved namespace.
func (k *ScopedKeyer) ConfigKey(nsspec string) string {
	return k.prefix + k.inner.ConfigKey(nsspec)
}

// TemplateKey generates a prefixed key for a rendered template target.
func (k *ScopedKeyer) TemplateKey(templateHash, targetName string) string {
	return k.prefix + k.inner.TemplateKey(templateHash, targetName)
}
