package store

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingStore is a write-through cache over another Store. It keeps the
// contents of the most recently read files in a bounded LRU cache.
// Directory listings are not cached.
type CachingStore struct {
	underlying Store
	cache      *lru.Cache[string, []byte]
	onLookup   func(hit bool)
}

var _ Store = (*CachingStore)(nil)

// NewCachingStore wraps underlying with a cache of at most size files.
// onLookup, if non-nil, is called for every ReadFile with the cache result.
func NewCachingStore(underlying Store, size int, onLookup func(hit bool)) (*CachingStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachingStore{
		underlying: underlying,
		cache:      cache,
		onLookup:   onLookup,
	}, nil
}

func (s *CachingStore) lookup(hit bool) {
	if s.onLookup != nil {
		s.onLookup(hit)
	}
}

func (s *CachingStore) ListFiles(dir string) ([]string, error) {
	return s.underlying.ListFiles(dir)
}

// ReadFile returns the cached contents of path or reads them from the
// underlying store. Callers must not modify the returned slice.
func (s *CachingStore) ReadFile(path string) ([]byte, error) {
	if bs, ok := s.cache.Get(path); ok {
		s.lookup(true)
		return bs, nil
	}
	s.lookup(false)
	bs, err := s.underlying.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.cache.Add(path, bs)
	return bs, nil
}

func (s *CachingStore) WriteFile(path string, contents []byte) error {
	if err := s.underlying.WriteFile(path, contents); err != nil {
		return err
	}
	s.cache.Add(path, append([]byte(nil), contents...))
	return nil
}

// Purge drops all cached contents, e.g. after the underlying source was
// refreshed.
func (s *CachingStore) Purge() {
	s.cache.Purge()
}

func (s *CachingStore) Len() int {
	return s.cache.Len()
}
