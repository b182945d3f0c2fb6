package render

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/models"
	"github.com/ternarybob/pokedex/internal/pages"
	"github.com/ternarybob/pokedex/internal/services/pokeapi"
)

func testPokemon() *models.Pokemon {
	return &models.Pokemon{
		ID:             1,
		Name:           "bulbasaur",
		Height:         7,
		Weight:         69,
		BaseExperience: 64,
		Types:          []string{"grass", "poison"},
		Abilities: []models.Ability{
			{Name: "overgrow"},
			{Name: "chlorophyll", Hidden: true},
		},
		Stats: []models.Stat{
			{Name: "hp", Base: 45},
			{Name: "special-attack", Base: 65},
		},
		SpriteURL:  "https://example.test/1.png",
		Genus:      "Seed Pokémon",
		FlavorText: "A strange seed was planted on its back at birth.",
	}
}

func newTestRenderer(t *testing.T, clientDebug bool) *Renderer {
	t.Helper()
	r, err := NewRenderer(arbor.NewNoOpLogger(), clientDebug)
	require.NoError(t, err)
	return r
}

func TestRenderScreen_PokemonPage(t *testing.T) {
	r := newTestRenderer(t, false)

	screen, err := r.RenderScreen(&pages.View{
		Template: pages.TemplatePokemon,
		Title:    "Bulbasaur",
		Data:     pages.PokemonData{Pokemon: testPokemon()},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bulbasaur - Pokédex", screen.Title())

	name, err := screen.GetByText("bulbasaur")
	require.NoError(t, err)
	assert.Equal(t, "pokemon-name", name.AttrOr("data-testid", ""))

	assert.NotNil(t, screen.QueryByText("#001 · Seed Pokémon"))
	assert.NotNil(t, screen.QueryByText("0.7 m"))
	assert.NotNil(t, screen.QueryByText("6.9 kg"))
	assert.NotNil(t, screen.QueryByText("Chlorophyll (hidden)"))
	assert.NotNil(t, screen.QueryByText("Special Attack"))
	assert.NotNil(t, screen.QueryByText("110"), "total of base stats")
	assert.Equal(t, 2, screen.Document().Find(".types .type").Length())
	assert.Equal(t, "https://example.test/1.png", screen.Document().Find("img.pokemon-sprite").AttrOr("src", ""))
	assert.Zero(t, screen.Document().Find("script").Length())
}

func TestRenderScreen_EscapesContent(t *testing.T) {
	r := newTestRenderer(t, false)

	p := testPokemon()
	p.FlavorText = `<script>alert("x")</script>`

	var buf bytes.Buffer
	err := r.Render(&buf, &pages.View{
		Template: pages.TemplatePokemon,
		Title:    "Bulbasaur",
		Data:     pages.PokemonData{Pokemon: p},
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), `<script>alert`)
	assert.Contains(t, buf.String(), `&lt;script&gt;`)
}

func TestRenderScreen_IndexPage(t *testing.T) {
	r := newTestRenderer(t, false)

	screen, err := r.RenderScreen(&pages.View{
		Template: pages.TemplateIndex,
		Title:    "Pokédex",
		Data:     pages.IndexData{Pokemon: []*models.Pokemon{testPokemon()}, DefaultPokemon: "bulbasaur"},
	})
	require.NoError(t, err)

	link, err := screen.GetByText("#001 Bulbasaur")
	require.NoError(t, err)
	assert.Equal(t, "/pokemon/bulbasaur", link.AttrOr("href", ""))

	empty, err := r.RenderScreen(&pages.View{
		Template: pages.TemplateIndex,
		Title:    "Pokédex",
		Data:     pages.IndexData{DefaultPokemon: "bulbasaur"},
	})
	require.NoError(t, err)
	assert.Contains(t, empty.Text(), "No Pokémon cached yet.")
}

func TestRenderScreen_ErrorPage(t *testing.T) {
	r := newTestRenderer(t, true)

	view := pages.ErrorPage(errors.Join(errors.New("lookup"), pokeapi.ErrNotFound))
	screen, err := r.RenderScreen(view)
	require.NoError(t, err)

	assert.NotNil(t, screen.QueryByText("Pokémon not found"))
	assert.Equal(t, "404", screen.Document().Find("section.error").AttrOr("data-status", ""))
	assert.Equal(t, 1, screen.Document().Find("script").Length(), "client debug script")
	assert.Equal(t, http.StatusNotFound, view.StatusCode())
}

func TestRender_Errors(t *testing.T) {
	r := newTestRenderer(t, false)

	var buf bytes.Buffer
	assert.Error(t, r.Render(&buf, nil))
	assert.Error(t, r.Render(&buf, &pages.View{Template: "missing.html"}))
	assert.Zero(t, buf.Len())
}
