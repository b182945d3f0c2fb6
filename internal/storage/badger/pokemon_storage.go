package badger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/pokedex/internal/interfaces"
	"github.com/ternarybob/pokedex/internal/models"
)

// PokemonStorage implements the PokemonStorage interface for Badger.
// Entries are keyed by lowercase Pokémon name.
type PokemonStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPokemonStorage creates a new PokemonStorage instance
func NewPokemonStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PokemonStorage {
	return &PokemonStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PokemonStorage) normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get retrieves a Pokémon by name
func (s *PokemonStorage) Get(ctx context.Context, name string) (*models.Pokemon, error) {
	var pokemon models.Pokemon
	err := s.db.Store().Get(s.normalizeKey(name), &pokemon)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrPokemonNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pokemon: %w", err)
	}

	return &pokemon, nil
}

// GetByID retrieves a Pokémon by national dex number
func (s *PokemonStorage) GetByID(ctx context.Context, id int) (*models.Pokemon, error) {
	var results []models.Pokemon
	if err := s.db.Store().Find(&results, badgerhold.Where("ID").Eq(id).Limit(1)); err != nil {
		return nil, fmt.Errorf("failed to find pokemon by id: %w", err)
	}
	if len(results) == 0 {
		return nil, interfaces.ErrPokemonNotCached
	}

	return &results[0], nil
}

// Save inserts or replaces a Pokémon
func (s *PokemonStorage) Save(ctx context.Context, pokemon *models.Pokemon) error {
	if pokemon == nil || pokemon.Name == "" {
		return fmt.Errorf("pokemon name is required")
	}

	if err := s.db.Store().Upsert(s.normalizeKey(pokemon.Name), pokemon); err != nil {
		return fmt.Errorf("failed to save pokemon: %w", err)
	}

	s.logger.Debug().Str("name", pokemon.Name).Int("id", pokemon.ID).Msg("Pokemon cached")

	return nil
}

// Delete removes a Pokémon; deleting an unknown name is not an error
func (s *PokemonStorage) Delete(ctx context.Context, name string) error {
	err := s.db.Store().Delete(s.normalizeKey(name), models.Pokemon{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete pokemon: %w", err)
	}
	return nil
}

// List returns all cached Pokémon ordered by ID
func (s *PokemonStorage) List(ctx context.Context) ([]*models.Pokemon, error) {
	var results []models.Pokemon
	if err := s.db.Store().Find(&results, nil); err != nil {
		return nil, fmt.Errorf("failed to list pokemon: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })

	pokemon := make([]*models.Pokemon, len(results))
	for i := range results {
		pokemon[i] = &results[i]
	}

	return pokemon, nil
}

// Count returns the number of cached Pokémon
func (s *PokemonStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Pokemon{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count pokemon: %w", err)
	}
	return int(count), nil
}
