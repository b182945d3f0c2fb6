package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/common"
	"github.com/ternarybob/pokedex/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	pokemon interfaces.PokemonStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		pokemon: NewPokemonStorage(db, logger),
		logger:  logger,
	}

	logger.Debug().Msg("Badger storage manager initialized")

	return manager, nil
}

// PokemonStorage returns the Pokémon storage interface
func (m *Manager) PokemonStorage() interfaces.PokemonStorage {
	return m.pokemon
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
