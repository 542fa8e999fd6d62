package models

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/n0madic/go-oaiadapter/internal/types"
)

// cacheTTL is how long to cache the remote model list before background refresh.
const cacheTTL = 5 * time.Minute

// refreshTimeout bounds a background refresh, which outlives its request.
const refreshTimeout = 30 * time.Second

// Lister fetches the raw model list from the upstream.
type Lister interface {
	ListModels(ctx context.Context) ([]RemoteModel, error)
}

// Registry fetches and caches the classified model list from the upstream.
type Registry struct {
	mu        sync.RWMutex
	fetchMu   sync.Mutex // prevents concurrent initial fetches
	lister    Lister
	provider  string
	models    []types.ModelCard
	lastFetch time.Time
	now       func() time.Time
}

// NewRegistry creates a model registry backed by lister. Ids that match no
// known provider family are attributed to defaultProvider.
func NewRegistry(lister Lister, defaultProvider string) *Registry {
	return &Registry{lister: lister, provider: defaultProvider, now: time.Now}
}

// GetModels returns the cached model list, refreshing if needed.
// If no cache is available, first call blocks to fetch. On stale cache, refreshes
// in background and returns the cached value immediately. Falls back to the static
// catalog if the remote fetch fails or produces an empty list.
func (r *Registry) GetModels(ctx context.Context) []types.ModelCard {
	r.mu.RLock()
	age := r.now().Sub(r.lastFetch)
	cached := r.models
	r.mu.RUnlock()

	if len(cached) == 0 {
		// First call, synchronous fetch with deduplication.
		r.fetchMu.Lock()
		r.mu.RLock()
		cached = r.models
		r.mu.RUnlock()
		if len(cached) == 0 {
			if err := r.doFetch(ctx); err != nil {
				slog.Warn("models.fetch_failed", "error", err, "fallback", "static")
			}
			r.mu.RLock()
			cached = r.models
			r.mu.RUnlock()
		}
		r.fetchMu.Unlock()

		if len(cached) == 0 {
			return StaticFallback(r.provider)
		}
		return cached
	}

	if age >= cacheTTL {
		go func() {
			bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
			defer cancel()
			r.fetchMu.Lock()
			defer r.fetchMu.Unlock()
			if !r.isStale() {
				return
			}
			if err := r.doFetch(bg); err != nil {
				slog.Warn("models.refresh_failed", "error", err)
			}
		}()
	}

	return cached
}

// Refresh forces an immediate synchronous fetch and returns the result.
// Returns the fetched models on success, or the static fallback on error.
func (r *Registry) Refresh(ctx context.Context) ([]types.ModelCard, error) {
	r.fetchMu.Lock()
	defer r.fetchMu.Unlock()
	err := r.doFetch(ctx)
	r.mu.RLock()
	result := r.models
	r.mu.RUnlock()
	if len(result) == 0 {
		return StaticFallback(r.provider), err
	}
	return result, err
}

// IsPopulated reports whether the registry has remote data (not just static fallback).
func (r *Registry) IsPopulated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models) > 0
}

func (r *Registry) isStale() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.now().Sub(r.lastFetch) >= cacheTTL
}

// doFetch lists and classifies the upstream models. An empty list keeps the
// previous cache. Caller must hold fetchMu.
func (r *Registry) doFetch(ctx context.Context) error {
	if r.lister == nil {
		return errors.New("no upstream model lister configured")
	}
	list, err := r.lister.ListModels(ctx)
	if err != nil {
		return err
	}
	cards := Classify(list, r.provider)
	if len(cards) == 0 {
		return errors.New("upstream returned an empty model list")
	}

	r.mu.Lock()
	r.models = cards
	r.lastFetch = r.now()
	r.mu.Unlock()

	slog.Debug("models.fetched", "count", len(cards))
	return nil
}

// staticCatalog lists the models served when the upstream list is unavailable.
var staticCatalog = []string{
	"gpt-5",
	"gpt-5-mini",
	"gpt-5-nano",
	"gpt-5-pro",
	"gpt-5-codex",
	"gpt-4.1",
	"gpt-4.1-mini",
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4o-search-preview",
	"gpt-4o-mini-search-preview",
	"o1",
	"o1-pro",
	"o3",
	"o3-mini",
	"o3-pro",
	"o3-deep-research",
	"o4-mini",
	"codex-mini-latest",
	"computer-use-preview",
	"text-embedding-3-small",
	"text-embedding-3-large",
	"gpt-image-1",
	"tts-1",
	"whisper-1",
	"gpt-4o-realtime-preview",
}

// StaticFallback returns the classified static catalog.
func StaticFallback(defaultProvider string) []types.ModelCard {
	list := make([]RemoteModel, len(staticCatalog))
	for i, id := range staticCatalog {
		list[i] = RemoteModel{ID: id, OwnedBy: "openai"}
	}
	return Classify(list, defaultProvider)
}
