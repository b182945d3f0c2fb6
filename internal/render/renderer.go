// Package render executes page views into HTML and exposes the result as a
// queryable Screen.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/models"
	"github.com/ternarybob/pokedex/internal/pages"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"titleCase": models.TitleCase,
}

// layoutData is what the layout template sees
type layoutData struct {
	Title       string
	Template    string
	ClientDebug bool
	Data        interface{}
}

// Renderer executes views with the embedded templates
type Renderer struct {
	templates   map[string]*template.Template
	logger      arbor.ILogger
	clientDebug bool
}

// NewRenderer parses the layout once per page template
func NewRenderer(logger arbor.ILogger, clientDebug bool) (*Renderer, error) {
	r := &Renderer{
		templates:   make(map[string]*template.Template),
		logger:      logger,
		clientDebug: clientDebug,
	}

	for _, name := range []string{pages.TemplatePokemon, pages.TemplateIndex, pages.TemplateError} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}

	return r, nil
}

// Render writes the view as a complete HTML document
func (r *Renderer) Render(w io.Writer, view *pages.View) error {
	if view == nil {
		return fmt.Errorf("render: nil view")
	}

	t, ok := r.templates[view.Template]
	if !ok {
		return fmt.Errorf("render: unknown template %q", view.Template)
	}

	data := layoutData{
		Title:       view.Title,
		Template:    view.Template,
		ClientDebug: r.clientDebug,
		Data:        view.Data,
	}

	// Render into a buffer so a template error never produces a partial page
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error().Err(err).Str("template", view.Template).Msg("Failed to render page")
		return fmt.Errorf("render %s: %w", view.Template, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// RenderScreen renders the view and parses the output into a Screen
func (r *Renderer) RenderScreen(view *pages.View) (*Screen, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, view); err != nil {
		return nil, err
	}
	return Parse(&buf)
}
