package pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/interfaces"
	"github.com/ternarybob/pokedex/internal/services/pokeapi"
)

// DefaultPokemon is shown when a page is requested without a name
const DefaultPokemon = "bulbasaur"

// Builder produces page views from Pokémon data
type Builder struct {
	provider    interfaces.PokemonProvider
	defaultName string
	logger      arbor.ILogger
}

// NewBuilder creates a page builder. An empty defaultName falls back to DefaultPokemon.
func NewBuilder(provider interfaces.PokemonProvider, defaultName string, logger arbor.ILogger) *Builder {
	if strings.TrimSpace(defaultName) == "" {
		defaultName = DefaultPokemon
	}
	return &Builder{
		provider:    provider,
		defaultName: defaultName,
		logger:      logger,
	}
}

// DefaultName returns the Pokémon used when no name is given
func (b *Builder) DefaultName() string {
	return b.defaultName
}

// Page builds the default Pokémon page. It takes no parameters beyond the
// context; any retrieval error is returned unchanged apart from wrapping.
func (b *Builder) Page(ctx context.Context) (*View, error) {
	return b.PokemonPage(ctx, "")
}

// PokemonPage builds the page for a single Pokémon
func (b *Builder) PokemonPage(ctx context.Context, name string) (*View, error) {
	if strings.TrimSpace(name) == "" {
		name = b.defaultName
	}

	pokemon, err := b.provider.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("pokemon page %s: %w", name, err)
	}

	b.logger.Debug().Str("name", pokemon.Name).Msg("Built pokemon page")

	return &View{
		Template: TemplatePokemon,
		Title:    pokemon.DisplayName(),
		Data:     PokemonData{Pokemon: pokemon},
	}, nil
}

// IndexPage lists every cached Pokémon
func (b *Builder) IndexPage(ctx context.Context) (*View, error) {
	cached, err := b.provider.Cached(ctx)
	if err != nil {
		return nil, fmt.Errorf("index page: %w", err)
	}

	return &View{
		Template: TemplateIndex,
		Title:    "Pokédex",
		Data: IndexData{
			Pokemon:        cached,
			DefaultPokemon: b.defaultName,
		},
	}, nil
}

// ErrorPage builds the page shown when another page could not be built
func ErrorPage(err error) *View {
	return StatusPage(StatusFor(err))
}

// StatusPage builds an error page whose HTTP status and content agree
func StatusPage(status int) *View {
	heading := http.StatusText(status)
	message := "Something went wrong while loading this page."
	switch status {
	case http.StatusBadRequest:
		message = "That is not a valid Pokémon name."
	case http.StatusNotFound:
		heading = "Pokémon not found"
		message = "No Pokémon matches that name or number."
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		message = "The Pokémon data source is unavailable. Try again later."
	}

	return &View{
		Template: TemplateError,
		Title:    heading,
		Status:   status,
		Data: ErrorData{
			Status:  status,
			Heading: heading,
			Message: message,
		},
	}
}

// StatusFor maps a page-building error to an HTTP status
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, pokeapi.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, pokeapi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
