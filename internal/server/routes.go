package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// UI Page routes (HTML templates)
	mux.HandleFunc("/{$}", s.app.PageHandler.IndexPage)
	mux.HandleFunc("/pokemon", s.app.PageHandler.PokemonPage)
	mux.HandleFunc("/pokemon/{name}", s.app.PageHandler.PokemonPage) // {name}.md returns Markdown

	// API routes - Pokémon
	mux.HandleFunc("/api/pokemon", s.app.PokemonAPIHandler.ListHandler)
	mux.HandleFunc("/api/pokemon/prefetch", s.app.PokemonAPIHandler.PrefetchHandler) // GET status, POST run
	mux.HandleFunc("/api/pokemon/{name}", s.app.PokemonAPIHandler.GetHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handlers
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)
	mux.HandleFunc("/", s.app.PageHandler.NotFound)

	return mux
}
