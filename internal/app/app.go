package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/common"
	"github.com/ternarybob/pokedex/internal/handlers"
	"github.com/ternarybob/pokedex/internal/interfaces"
	"github.com/ternarybob/pokedex/internal/pages"
	"github.com/ternarybob/pokedex/internal/render"
	"github.com/ternarybob/pokedex/internal/services/pokeapi"
	"github.com/ternarybob/pokedex/internal/services/pokemon"
	"github.com/ternarybob/pokedex/internal/services/scheduler"
	"github.com/ternarybob/pokedex/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Services
	PokeAPIClient    *pokeapi.Client
	PokemonService   *pokemon.Service
	SchedulerService *scheduler.Service

	// Page production
	PageBuilder *pages.Builder
	Renderer    *render.Renderer

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	PageHandler       *handlers.PageHandler
	PokemonAPIHandler *handlers.PokemonAPIHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	app.initHandlers()

	logger.Info().
		Str("pokeapi", cfg.PokeAPI.BaseURL).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Bool("prefetch_enabled", cfg.Prefetch.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Bool("in_memory", a.Config.Storage.Badger.InMemory).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes business services in dependency order:
// upstream client -> pokemon service -> page builder/renderer -> scheduler
func (a *App) initServices() error {
	var err error

	a.PokeAPIClient = pokeapi.NewClient(
		pokeapi.WithBaseURL(a.Config.PokeAPI.BaseURL),
		pokeapi.WithTimeout(a.Config.UpstreamTimeout()),
		pokeapi.WithRateLimit(a.Config.PokeAPI.RateLimit),
		pokeapi.WithUserAgent(a.Config.PokeAPI.UserAgent),
		pokeapi.WithLogger(a.Logger),
	)

	a.PokemonService = pokemon.NewService(
		a.PokeAPIClient,
		a.StorageManager.PokemonStorage(),
		a.Config.CacheTTL(),
		a.Logger,
	)

	a.PageBuilder = pages.NewBuilder(a.PokemonService, a.Config.Pages.DefaultPokemon, a.Logger)

	a.Renderer, err = render.NewRenderer(a.Logger, a.Config.Pages.ClientDebug)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	a.SchedulerService = scheduler.NewService(a.PokemonService, a.Config.Prefetch.Names, a.Logger)
	if a.Config.Prefetch.Enabled {
		if err := a.SchedulerService.Start(a.Config.Prefetch.Schedule); err != nil {
			return fmt.Errorf("failed to start prefetch scheduler: %w", err)
		}
	}

	return nil
}

// initHandlers creates the HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.PageHandler = handlers.NewPageHandler(a.PageBuilder, a.Renderer, a.Logger)
	a.PokemonAPIHandler = handlers.NewPokemonAPIHandler(a.PokemonService, a.SchedulerService, a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	// Stop scheduler service
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	// Close storage
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.StorageManager = nil
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
