package bitmapcache

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/xflash-panda/bitmap-engine/pkg/bitmap"
)

// DefaultCacheSize is the default number of resident bitmaps.
const DefaultCacheSize = 64

// DefaultExtension is the filename extension a store appends to names.
const DefaultExtension = ".roaring"

// Store resolves names to serialized bitmap files under a directory,
// loading them on first use and evicting least-recently-used ones once the
// cache is full. Safe for concurrent use.
type Store struct {
	dir   string
	ext   string
	mu    sync.RWMutex
	cache *lru.Cache[string, *bitmap.Bitmap]
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	cacheSize int
	ext       string
}

// WithCacheSize bounds the number of bitmaps kept resident.
func WithCacheSize(size int) Option {
	return func(o *storeOptions) {
		o.cacheSize = size
	}
}

// WithExtension overrides the filename extension appended to names.
func WithExtension(ext string) Option {
	return func(o *storeOptions) {
		o.ext = ext
	}
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, opts ...Option) (*Store, error) {
	options := &storeOptions{
		cacheSize: DefaultCacheSize,
		ext:       DefaultExtension,
	}
	for _, opt := range opts {
		opt(options)
	}

	cache, err := lru.New[string, *bitmap.Bitmap](options.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}

	return &Store{
		dir:   dir,
		ext:   options.ext,
		cache: cache,
	}, nil
}

// path maps a name to its file, rejecting names that escape the directory.
func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid bitmap name %q", name)
	}
	return filepath.Join(s.dir, name+s.ext), nil
}

// Get returns the named bitmap, loading its file on a cache miss.
// The returned bitmap is shared; callers must treat it as read-only.
func (s *Store) Get(name string) (*bitmap.Bitmap, error) {
	s.mu.RLock()
	if bm, ok := s.cache.Get(name); ok {
		s.mu.RUnlock()
		return bm, nil
	}
	s.mu.RUnlock()

	file, err := s.path(name)
	if err != nil {
		return nil, err
	}
	bm, err := Open(file)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache.Add(name, bm)
	s.mu.Unlock()
	return bm, nil
}

// Contains reports whether the named bitmap holds x.
func (s *Store) Contains(name string, x uint32) (bool, error) {
	bm, err := s.Get(name)
	if err != nil {
		return false, err
	}
	return bm.Contains(x), nil
}

// Len returns the number of resident bitmaps.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache.Len()
}

// Purge evicts every resident bitmap.
func (s *Store) Purge() {
	s.mu.Lock()
	s.cache.Purge()
	s.mu.Unlock()
}
