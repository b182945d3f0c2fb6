// Package pokeapitest serves recorded PokeAPI fixtures over httptest for
// tests that need a deterministic upstream.
package pokeapitest

import (
	"embed"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// APIPrefix is the path prefix mirrored from pokeapi.co
const APIPrefix = "/api/v2"

// Server is a fake PokeAPI. Pokémon available: bulbasaur, ivysaur,
// venusaur-mega (no species resource) and missingno (invalid payload).
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	unavailable bool
	requests    map[string]int
}

// NewServer starts a fake PokeAPI that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{requests: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// BaseURL returns the value to configure as the PokeAPI base URL
func (s *Server) BaseURL() string {
	return s.URL + APIPrefix
}

// SetUnavailable makes every request fail with 503 until reset
func (s *Server) SetUnavailable(unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = unavailable
}

// Requests returns how many times a path (e.g. "/pokemon/bulbasaur") was requested
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// TotalRequests returns the number of requests served, including failures
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, APIPrefix), "/")

	s.mu.Lock()
	s.requests[path]++
	unavailable := s.unavailable
	s.mu.Unlock()

	if unavailable {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// "/pokemon/bulbasaur" -> "pokemon-bulbasaur.json"
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != 2 || (parts[0] != "pokemon" && parts[0] != "pokemon-species") {
		http.NotFound(w, r)
		return
	}

	data, err := fixtures.ReadFile("fixtures/" + parts[0] + "-" + parts[1] + ".json")
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(data)
}
