package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several photobook
// instances (or users of one service) can share a Redis database.
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "album:summer-2024:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a Keyer that prepends prefix. A nil inner uses
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// BookKey implements Keyer.
func (k *ScopedKeyer) BookKey(photosHash string, opts BookKeyOpts) string {
	return k.prefix + k.inner.BookKey(photosHash, opts)
}

// FeaturesKey implements Keyer.
func (k *ScopedKeyer) FeaturesKey(path string) string {
	return k.prefix + k.inner.FeaturesKey(path)
}
