package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/models"
	"github.com/ternarybob/pokedex/internal/pokeapitest"
)

func newTestClient(t *testing.T) (*Client, *pokeapitest.Server) {
	t.Helper()
	upstream := pokeapitest.NewServer(t)
	client := NewClient(
		WithBaseURL(upstream.BaseURL()),
		WithLogger(arbor.NewLogger()),
		WithRateLimit(100),
		WithUserAgent("pokedex-test"),
	)
	return client, upstream
}

func TestGetPokemon_Bulbasaur(t *testing.T) {
	client, upstream := newTestClient(t)

	got, err := client.GetPokemon(context.Background(), "Bulbasaur ")
	require.NoError(t, err)

	want := &models.Pokemon{
		ID:             1,
		Name:           "bulbasaur",
		Height:         7,
		Weight:         69,
		BaseExperience: 64,
		Types:          []string{"grass", "poison"},
		Abilities: []models.Ability{
			{Name: "overgrow", Hidden: false},
			{Name: "chlorophyll", Hidden: true},
		},
		Stats: []models.Stat{
			{Name: "hp", Base: 45},
			{Name: "attack", Base: 49},
			{Name: "defense", Base: 49},
			{Name: "special-attack", Base: 65},
			{Name: "special-defense", Base: 65},
			{Name: "speed", Base: 45},
		},
		SpriteURL:  "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/1.png",
		Genus:      "Seed Pokémon",
		FlavorText: "A strange seed was planted on its back at birth. The plant sprouts and grows with this POKéMON.",
	}

	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(models.Pokemon{}, "FetchedAt")); diff != "" {
		t.Errorf("GetPokemon mismatch (-want +got):\n%s", diff)
	}
	assert.WithinDuration(t, time.Now(), got.FetchedAt, time.Minute)

	assert.Equal(t, 1, upstream.Requests("/pokemon/bulbasaur"))
	assert.Equal(t, 1, upstream.Requests("/pokemon-species/bulbasaur"))
}

func TestGetPokemon_SpriteFallback(t *testing.T) {
	client, _ := newTestClient(t)

	got, err := client.GetPokemon(context.Background(), "ivysaur")
	require.NoError(t, err)
	assert.Equal(t, "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/2.png", got.SpriteURL)
}

func TestGetPokemon_MissingSpeciesIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t)

	got, err := client.GetPokemon(context.Background(), "venusaur-mega")
	require.NoError(t, err)
	assert.Equal(t, 10033, got.ID)
	assert.Empty(t, got.Genus)
	assert.Empty(t, got.FlavorText)
}

func TestGetPokemon_NotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetPokemon(context.Background(), "agumon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetPokemon_InvalidName(t *testing.T) {
	client, upstream := newTestClient(t)

	for _, name := range []string{"", "   ", "../etc/passwd", "mr mime", "-bulbasaur"} {
		_, err := client.GetPokemon(context.Background(), name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
	assert.Zero(t, upstream.TotalRequests())
}

func TestGetPokemon_InvalidPayload(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetPokemon(context.Background(), "missingno")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pokemon payload")
}

func TestGetPokemon_UpstreamUnavailable(t *testing.T) {
	client, upstream := newTestClient(t)
	upstream.SetUnavailable(true)

	_, err := client.GetPokemon(context.Background(), "bulbasaur")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.False(t, errors.Is(err, ErrNotFound))

	// No retries: at most one request per resource
	assert.LessOrEqual(t, upstream.Requests("/pokemon/bulbasaur"), 1)
	assert.LessOrEqual(t, upstream.Requests("/pokemon-species/bulbasaur"), 1)
}

func TestGetPokemon_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPokemon(ctx, "bulbasaur")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCleanFlavorText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"newlines", "A strange seed\nwas planted", "A strange seed was planted"},
		{"form feed", "on its back.\fThe plant", "on its back. The plant"},
		{"soft hyphen line break", "photo\u00ad\nsynthesis", "photosynthesis"},
		{"extra spaces", "  lots   of\t space ", "lots of space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanFlavorText(tt.in))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	got, err := NormalizeName("  Mr-Mime ")
	require.NoError(t, err)
	assert.Equal(t, "mr-mime", got)

	got, err = NormalizeName("25")
	require.NoError(t, err)
	assert.Equal(t, "25", got)
}
