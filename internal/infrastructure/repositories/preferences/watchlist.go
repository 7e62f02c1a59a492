package preferences

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/repositories/cache"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

const watchlistKey = "watchlist"

// WatchlistRepository keeps the ordered, duplicate-free set of favorite coin ids.
// The in-memory copy is authoritative for the session; every toggle is written
// through to the backend as a JSON array.
type WatchlistRepository struct {
	backend interfaces.Cache
	key     string

	mu  sync.RWMutex
	ids []string
}

// NewWatchlistRepository loads the persisted watchlist. An unreadable or
// corrupt entry starts an empty list.
func NewWatchlistRepository(ctx context.Context, backend interfaces.Cache, namespace string) *WatchlistRepository {
	r := &WatchlistRepository{
		backend: backend,
		key:     namespace + watchlistKey,
	}
	r.ids = r.load(ctx)
	return r
}

// List returns a copy of the watchlist in insertion order
func (r *WatchlistRepository) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.ids...)
}

// Contains reports whether id is in the watchlist
func (r *WatchlistRepository) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return indexOf(r.ids, id) >= 0
}

// Toggle adds id when absent and removes it when present. It returns the new
// list and whether id was added.
func (r *WatchlistRepository) Toggle(ctx context.Context, id string) ([]string, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false, fmt.Errorf("%w: coin id is required", entities.ErrInvalidDescriptor)
	}

	// el write al backend va dentro del lock: dos toggles concurrentes
	// persisten en el mismo orden en que mutaron la lista
	r.mu.Lock()
	defer r.mu.Unlock()

	added := false
	if i := indexOf(r.ids, id); i >= 0 {
		r.ids = append(r.ids[:i:i], r.ids[i+1:]...)
	} else {
		r.ids = append(r.ids, id)
		added = true
	}
	snapshot := append([]string(nil), r.ids...)
	r.persist(ctx, snapshot)
	return snapshot, added, nil
}

func (r *WatchlistRepository) load(ctx context.Context) []string {
	raw, err := r.backend.Get(ctx, r.key)
	if err != nil {
		if !cache.IsMiss(err) {
			logging.Cache().CacheError(ctx, "load", r.key, fmt.Errorf("%w: %w", entities.ErrStorage, err))
		}
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logging.Cache().CacheError(ctx, "load", r.key, fmt.Errorf("%w: decode watchlist: %w", entities.ErrStorage, err))
		return []string{}
	}

	// limpiar duplicados o vacíos que pudieran venir de versiones anteriores
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && indexOf(clean, id) < 0 {
			clean = append(clean, id)
		}
	}
	return clean
}

func (r *WatchlistRepository) persist(ctx context.Context, ids []string) {
	raw, err := json.Marshal(ids)
	if err != nil {
		logging.Cache().CacheError(ctx, "save", r.key, fmt.Errorf("%w: %w", entities.ErrStorage, err))
		return
	}
	if err := r.backend.Set(ctx, r.key, string(raw), 0); err != nil {
		logging.Cache().CacheError(ctx, "save", r.key, fmt.Errorf("%w: %w", entities.ErrStorage, err))
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
