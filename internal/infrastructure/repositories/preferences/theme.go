package preferences

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/repositories/cache"
	"context"
	"fmt"
	"sync"
)

const themeKey = "theme"

// ThemeRepository persists the dark/light preference as a bare string.
type ThemeRepository struct {
	backend interfaces.Cache
	key     string

	mu    sync.RWMutex
	theme entities.Theme
}

// NewThemeRepository loads the stored theme, defaulting to dark
func NewThemeRepository(ctx context.Context, backend interfaces.Cache, namespace string) *ThemeRepository {
	r := &ThemeRepository{
		backend: backend,
		key:     namespace + themeKey,
		theme:   entities.ThemeDark,
	}

	raw, err := backend.Get(ctx, r.key)
	switch {
	case err == nil:
		if theme, perr := entities.ParseTheme(raw); perr == nil {
			r.theme = theme
		}
	case !cache.IsMiss(err):
		logging.Cache().CacheError(ctx, "load", r.key, fmt.Errorf("%w: %w", entities.ErrStorage, err))
	}
	return r
}

func (r *ThemeRepository) Get() entities.Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.theme
}

// Set stores the theme; storage failures are logged and the in-memory value still changes
func (r *ThemeRepository) Set(ctx context.Context, theme entities.Theme) error {
	if _, err := entities.ParseTheme(string(theme)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.theme = theme

	if err := r.backend.Set(ctx, r.key, string(theme), 0); err != nil {
		logging.Cache().CacheError(ctx, "save", r.key, fmt.Errorf("%w: %w", entities.ErrStorage, err))
	}
	return nil
}
