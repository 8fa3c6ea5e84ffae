package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants, or several
// versions of the engine, can share one backend without colliding:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v2:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey implements [Keyer].
func (k *ScopedKeyer) ResultKey(docHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(docHash, opts)
}

// RenderKey implements [Keyer].
func (k *ScopedKeyer) RenderKey(resultHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(resultHash, opts)
}
