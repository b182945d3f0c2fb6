package interfaces

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	PokemonStorage() PokemonStorage
	Close() error
}
