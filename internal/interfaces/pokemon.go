package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/pokedex/internal/models"
)

// ErrPokemonNotCached is returned when a Pokémon is not present in storage
var ErrPokemonNotCached = errors.New("pokemon not cached")

// PokemonClient fetches Pokémon from the upstream data source
type PokemonClient interface {
	// GetPokemon fetches a Pokémon by normalized name or numeric id
	GetPokemon(ctx context.Context, name string) (*models.Pokemon, error)
}

// PokemonStorage persists fetched Pokémon
type PokemonStorage interface {
	// Get returns ErrPokemonNotCached when the name is unknown
	Get(ctx context.Context, name string) (*models.Pokemon, error)

	// GetByID looks up by national dex number, same not-found semantics as Get
	GetByID(ctx context.Context, id int) (*models.Pokemon, error)

	Save(ctx context.Context, pokemon *models.Pokemon) error

	Delete(ctx context.Context, name string) error

	// List returns all stored Pokémon ordered by ID
	List(ctx context.Context) ([]*models.Pokemon, error)

	Count(ctx context.Context) (int, error)
}

// PokemonProvider resolves Pokémon for pages and API handlers
type PokemonProvider interface {
	Get(ctx context.Context, name string) (*models.Pokemon, error)
	Cached(ctx context.Context) ([]*models.Pokemon, error)
}

// PrefetchResult summarises a prefetch run
type PrefetchResult struct {
	Requested int      `json:"requested"`
	Fetched   int      `json:"fetched"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
