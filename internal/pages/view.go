// Package pages builds the content descriptions for server-rendered pages.
// A View names a template and carries its data; rendering is done by the
// render package.
package pages

import (
	"net/http"

	"github.com/ternarybob/pokedex/internal/models"
)

// Template names understood by the renderer
const (
	TemplatePokemon = "pokemon.html"
	TemplateIndex   = "index.html"
	TemplateError   = "error.html"
)

// View describes a page to render
type View struct {
	Template string
	Title    string
	Status   int // HTTP status to send; zero means 200
	Data     interface{}
}

// StatusCode returns the HTTP status for the view
func (v *View) StatusCode() int {
	if v.Status == 0 {
		return http.StatusOK
	}
	return v.Status
}

// PokemonData is the data for TemplatePokemon
type PokemonData struct {
	Pokemon *models.Pokemon
}

// IndexData is the data for TemplateIndex
type IndexData struct {
	Pokemon        []*models.Pokemon
	DefaultPokemon string
}

// ErrorData is the data for TemplateError
type ErrorData struct {
	Status  int
	Heading string
	Message string
}
