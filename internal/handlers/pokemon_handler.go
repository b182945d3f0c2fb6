package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pokedex/internal/interfaces"
	"github.com/ternarybob/pokedex/internal/pages"
)

// PokemonAPIHandler serves Pokémon data as JSON
type PokemonAPIHandler struct {
	provider interfaces.PokemonProvider
	prefetch PrefetchTrigger
	logger   arbor.ILogger
}

func NewPokemonAPIHandler(provider interfaces.PokemonProvider, prefetch PrefetchTrigger, logger arbor.ILogger) *PokemonAPIHandler {
	return &PokemonAPIHandler{
		provider: provider,
		prefetch: prefetch,
		logger:   logger,
	}
}

// GetHandler handles GET /api/pokemon/{name}
func (h *PokemonAPIHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	name := r.PathValue("name")

	pokemon, err := h.provider.Get(r.Context(), name)
	if err != nil {
		status := pages.StatusFor(err)
		h.logger.Warn().Err(err).Str("name", name).Int("status", status).Msg("Failed to get pokemon")
		WriteError(w, status, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, pokemon)
}

// ListHandler handles GET /api/pokemon with every cached Pokémon
func (h *PokemonAPIHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cached, err := h.provider.Cached(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list cached pokemon")
		WriteError(w, http.StatusInternalServerError, "Failed to list cached pokemon")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(cached),
		"pokemon": cached,
	})
}

// PrefetchHandler handles POST /api/pokemon/prefetch (start a run) and
// GET /api/pokemon/prefetch (scheduler status)
func (h *PokemonAPIHandler) PrefetchHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, h.prefetch.Status())
	case http.MethodPost:
		h.prefetch.RunNow()
		WriteStarted(w, "Prefetch started")
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
