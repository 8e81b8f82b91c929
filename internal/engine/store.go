package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"salesdash/internal/models"
)

// DefaultTTL is how long a loaded dataset is served before the source is read again.
const DefaultTTL = time.Hour

// Source loads a dataset from a path. *Loader is the production Source.
type Source interface {
	Load(ctx context.Context, path string) (*models.Dataset, error)
}

// CacheObserver receives cache events, typically to feed metrics.
type CacheObserver interface {
	CacheHit(source string)
	CacheMiss(source string)
	LoadFinished(source string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string) {}
func (nopObserver) CacheMiss(string) {}
func (nopObserver) LoadFinished(string, time.Duration, error) {}

type storeEntry struct {
	ds       *models.Dataset
	loadedAt time.Time
}

// Store keeps loaded datasets per source path for a fixed TTL. Entries are
// replaced whole on reload and never modified in place; failed loads are not kept.
type Store struct {
	src Source
	ttl time.Duration
	now func() time.Time
	obs CacheObserver

	mu      sync.Mutex
	entries map[string]storeEntry
	group   singleflight.Group
}

type StoreOption func(*Store)

// WithTTL sets the entry lifetime. A TTL <= 0 disables caching.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithObserver(obs CacheObserver) StoreOption {
	return func(s *Store) { s.obs = obs }
}

func NewStore(src Source, opts ...StoreOption) *Store {
	s := &Store{
		src:     src,
		ttl:     DefaultTTL,
		now:     time.Now,
		obs:     nopObserver{},
		entries: make(map[string]storeEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the dataset for path, loading it when absent or expired.
// Concurrent misses for the same path share one load, which is detached from
// the caller's cancellation so one departing client cannot fail the others.
func (s *Store) Get(ctx context.Context, path string) (*models.Dataset, error) {
	s.mu.Lock()
	e, ok := s.entries[path]
	s.mu.Unlock()
	if ok && s.ttl > 0 && s.now().Sub(e.loadedAt) < s.ttl {
		s.obs.CacheHit(path)
		return e.ds, nil
	}
	s.obs.CacheMiss(path)

	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(path, func() (any, error) {
		start := time.Now()
		ds, err := s.src.Load(loadCtx, path)
		s.obs.LoadFinished(path, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.entries[path] = storeEntry{ds: ds, loadedAt: s.now()}
		s.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Dataset), nil
}

// Invalidate drops the entry for path so the next Get reloads it.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.entries, path)
	s.mu.Unlock()
}
