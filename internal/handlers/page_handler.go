package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/pages"
	"github.com/ternarybob/pokedex/internal/render"
)

const markdownSuffix = ".md"

// PageHandler serves the server-rendered HTML pages
type PageHandler struct {
	builder  *pages.Builder
	renderer *render.Renderer
	logger   arbor.ILogger
}

func NewPageHandler(builder *pages.Builder, renderer *render.Renderer, logger arbor.ILogger) *PageHandler {
	return &PageHandler{
		builder:  builder,
		renderer: renderer,
		logger:   logger,
	}
}

// PokemonPage serves GET /pokemon and GET /pokemon/{name}. A ".md" suffix
// returns the page as Markdown.
func (h *PageHandler) PokemonPage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	name := r.PathValue("name")
	name, markdown := strings.CutSuffix(name, markdownSuffix)

	view, err := h.builder.PokemonPage(r.Context(), name)
	if err != nil {
		h.logger.Warn().Err(err).Str("name", name).Msg("Failed to build pokemon page")
		view = pages.ErrorPage(err)
	}

	if markdown {
		h.writeMarkdown(w, r, view)
		return
	}

	h.writeView(w, view)
}

// IndexPage serves GET / with the list of cached Pokémon
func (h *PageHandler) IndexPage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	view, err := h.builder.IndexPage(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build index page")
		view = pages.StatusPage(http.StatusInternalServerError)
	}

	h.writeView(w, view)
}

// NotFound renders the HTML not-found page for unknown paths
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	view := &pages.View{
		Template: pages.TemplateError,
		Title:    "Page not found",
		Status:   http.StatusNotFound,
		Data: pages.ErrorData{
			Status:  http.StatusNotFound,
			Heading: "Page not found",
			Message: "There is nothing at " + r.URL.Path + ".",
		},
	}
	h.writeView(w, view)
}

func (h *PageHandler) writeView(w http.ResponseWriter, view *pages.View) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, view); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(view.StatusCode())
	buf.WriteTo(w)
}

func (h *PageHandler) writeMarkdown(w http.ResponseWriter, r *http.Request, view *pages.View) {
	screen, err := h.renderer.RenderScreen(view)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	out, err := render.Markdown(screen, baseURL(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to convert page to markdown")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(view.StatusCode())
	w.Write([]byte(out))
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
