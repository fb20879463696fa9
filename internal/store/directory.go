package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yazelin/jaba-ai/internal/backend"
)

const cacheKey = "jaba:stores"

// Loader fetches the authoritative store list.
type Loader func(ctx context.Context) ([]backend.Store, error)

// Filter narrows the directory to the stores the current operator may edit.
type Filter func([]backend.Store) []backend.Store

// Directory is the locally cached store list. Reads are synchronous and
// never hit the network; Refresh replaces the snapshot from the loader.
// The directory is read-only from the session's perspective.
type Directory struct {
	mu     sync.RWMutex
	stores []backend.Store

	loader Loader
	filter Filter
	cache  Cache
	ttl    time.Duration
	log    *zap.Logger
}

func NewDirectory(loader Loader, filter Filter, cache Cache, ttl time.Duration, logger *zap.Logger) *Directory {
	if filter == nil {
		filter = func(stores []backend.Store) []backend.Store { return stores }
	}
	return &Directory{
		loader: loader,
		filter: filter,
		cache:  cache,
		ttl:    ttl,
		log:    logger,
	}
}

// Stores returns the current snapshot.
func (d *Directory) Stores() []backend.Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]backend.Store, len(d.stores))
	copy(out, d.stores)
	return out
}

// Editable returns the snapshot narrowed by the editable-store filter.
func (d *Directory) Editable() []backend.Store {
	return d.filter(d.Stores())
}

// Find looks a store up by identifier.
func (d *Directory) Find(id string) (backend.Store, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.stores {
		if s.ID == id {
			return s, true
		}
	}
	return backend.Store{}, false
}

// Refresh replaces the snapshot from the loader and rewrites the redis
// snapshot. Called at startup and after a store creation.
func (d *Directory) Refresh(ctx context.Context) error {
	stores, err := d.loader(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.stores = stores
	d.mu.Unlock()

	if d.cache != nil {
		if data, err := json.Marshal(stores); err == nil {
			if err := d.cache.Set(ctx, cacheKey, string(data), d.ttl); err != nil {
				d.log.Warn("store snapshot cache write failed", zap.Error(err))
			}
		}
	}

	d.log.Info("store directory refreshed", zap.Int("stores", len(stores)))
	return nil
}

// WarmUp seeds the snapshot from the redis cache if possible, falling
// back to a full refresh.
func (d *Directory) WarmUp(ctx context.Context) error {
	if d.cache != nil {
		if data, err := d.cache.Get(ctx, cacheKey); err == nil && data != "" {
			var stores []backend.Store
			if err := json.Unmarshal([]byte(data), &stores); err == nil {
				d.mu.Lock()
				d.stores = stores
				d.mu.Unlock()
				d.log.Info("store directory warmed from cache", zap.Int("stores", len(stores)))
				return nil
			}
		}
	}
	return d.Refresh(ctx)
}
