// Package pokemon resolves Pokémon for pages and the JSON API, reusing
// cached entries while they are fresh.
package pokemon

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/pokedex/internal/interfaces"
	"github.com/ternarybob/pokedex/internal/models"
	"github.com/ternarybob/pokedex/internal/services/pokeapi"
)

// prefetchConcurrency bounds parallel upstream fetches; the client's rate
// limiter still applies per request.
const prefetchConcurrency = 4

// Service provides cache-first Pokémon lookups.
type Service struct {
	client  interfaces.PokemonClient
	storage interfaces.PokemonStorage
	ttl     time.Duration
	logger  arbor.ILogger
	now     func() time.Time
}

// NewService creates a new pokemon service. A zero ttl disables cache reads;
// fetched entries are still stored so the index page can list them.
func NewService(client interfaces.PokemonClient, storage interfaces.PokemonStorage, ttl time.Duration, logger arbor.ILogger) *Service {
	return &Service{
		client:  client,
		storage: storage,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// IsFresh reports whether a cached entry can be served without refetching
func (s *Service) IsFresh(p *models.Pokemon) bool {
	if s.ttl <= 0 || p == nil || p.FetchedAt.IsZero() {
		return false
	}
	return s.now().Sub(p.FetchedAt) < s.ttl
}

// Get returns the Pokémon by name or dex number. Upstream errors are
// returned as-is; a stale cache entry is never served in their place.
func (s *Service) Get(ctx context.Context, name string) (*models.Pokemon, error) {
	normalized, err := pokeapi.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	if cached := s.lookup(ctx, normalized); cached != nil {
		if s.IsFresh(cached) {
			s.logger.Debug().Str("name", cached.Name).Msg("Serving pokemon from cache")
			return cached, nil
		}
		s.logger.Debug().Str("name", cached.Name).Msg("Cached pokemon is stale, refetching")
	}

	pokemon, err := s.client.GetPokemon(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get pokemon %s: %w", normalized, err)
	}

	if err := s.storage.Save(ctx, pokemon); err != nil {
		s.logger.Warn().Err(err).Str("name", pokemon.Name).Msg("Failed to cache pokemon")
	}

	return pokemon, nil
}

func (s *Service) lookup(ctx context.Context, normalized string) *models.Pokemon {
	var (
		cached *models.Pokemon
		err    error
	)

	if id, convErr := strconv.Atoi(normalized); convErr == nil {
		cached, err = s.storage.GetByID(ctx, id)
	} else {
		cached, err = s.storage.Get(ctx, normalized)
	}

	if err != nil {
		if !errors.Is(err, interfaces.ErrPokemonNotCached) {
			s.logger.Warn().Err(err).Str("name", normalized).Msg("Cache lookup failed")
		}
		return nil
	}

	return cached
}

// Cached lists every stored Pokémon ordered by dex number
func (s *Service) Cached(ctx context.Context) ([]*models.Pokemon, error) {
	return s.storage.List(ctx)
}

// Prefetch warms the cache for names. Individual failures are counted and
// logged; only context cancellation stops the run early.
func (s *Service) Prefetch(ctx context.Context, names []string) interfaces.PrefetchResult {
	result := interfaces.PrefetchResult{Requested: len(names)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)

	for _, name := range names {
		g.Go(func() error {
			_, err := s.Get(gctx, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, err.Error())
				s.logger.Warn().Err(err).Str("name", name).Msg("Prefetch failed")
				return nil
			}
			result.Fetched++
			return nil
		})
	}

	g.Wait()

	s.logger.Info().
		Int("requested", result.Requested).
		Int("fetched", result.Fetched).
		Int("failed", result.Failed).
		Msg("Prefetch complete")

	return result
}
