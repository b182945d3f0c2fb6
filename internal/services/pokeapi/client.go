// Package pokeapi provides a client for the PokeAPI REST service.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ternarybob/pokedex/internal/models"
)

const (
	// DefaultBaseURL is the base URL for PokeAPI v2.
	DefaultBaseURL = "https://pokeapi.co/api/v2"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// maxBodySize caps upstream responses; /pokemon payloads are a few hundred KB.
	maxBodySize = 4 * 1024 * 1024
)

var (
	// ErrNotFound is returned when PokeAPI has no resource for the name.
	ErrNotFound = errors.New("pokemon not found")

	// ErrInvalidName is returned for names that cannot be a PokeAPI identifier.
	ErrInvalidName = errors.New("invalid pokemon name")

	validName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// Client is a PokeAPI client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	validate   *validator.Validate
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP timeout on the default client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a new PokeAPI client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: "pokedex",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		validate: validator.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-404 error status from PokeAPI.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pokeapi error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// NormalizeName lowercases and trims a name, rejecting anything that is not
// a PokeAPI identifier.
func NormalizeName(name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if !validName.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return normalized, nil
}

// get performs a GET request to the API and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.logger != nil {
		c.logger.Debug().
			Str("url", reqURL).
			Msg("PokeAPI request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetPokemon fetches /pokemon/{name} and /pokemon-species/{name} concurrently
// and merges them. A missing species resource (alternate forms) leaves genus
// and flavor text empty; any other failure is returned without retry.
func (c *Client) GetPokemon(ctx context.Context, name string) (*models.Pokemon, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	var (
		pokemon pokemonResponse
		species speciesResponse
		noSpec  bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.get(gctx, "/pokemon/"+normalized, &pokemon); err != nil {
			return fmt.Errorf("failed to fetch pokemon %s: %w", normalized, err)
		}
		return nil
	})

	g.Go(func() error {
		err := c.get(gctx, "/pokemon-species/"+normalized, &species)
		if errors.Is(err, ErrNotFound) {
			noSpec = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to fetch species %s: %w", normalized, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := toModel(&pokemon)
	if !noSpec {
		applySpecies(result, &species)
	}

	if err := c.validate.Struct(result); err != nil {
		return nil, fmt.Errorf("invalid pokemon payload for %s: %w", normalized, err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("name", result.Name).
			Int("id", result.ID).
			Msg("Fetched pokemon from PokeAPI")
	}

	return result, nil
}

func toModel(r *pokemonResponse) *models.Pokemon {
	p := &models.Pokemon{
		ID:             r.ID,
		Name:           r.Name,
		Height:         r.Height,
		Weight:         r.Weight,
		BaseExperience: r.BaseExperience,
		SpriteURL:      r.Sprites.Other.OfficialArtwork.FrontDefault,
		FetchedAt:      time.Now().UTC(),
	}
	if p.SpriteURL == "" {
		p.SpriteURL = r.Sprites.FrontDefault
	}

	types := r.Types
	sort.SliceStable(types, func(i, j int) bool { return types[i].Slot < types[j].Slot })
	for _, t := range types {
		p.Types = append(p.Types, t.Type.Name)
	}

	abilities := r.Abilities
	sort.SliceStable(abilities, func(i, j int) bool { return abilities[i].Slot < abilities[j].Slot })
	for _, a := range abilities {
		p.Abilities = append(p.Abilities, models.Ability{Name: a.Ability.Name, Hidden: a.IsHidden})
	}

	for _, s := range r.Stats {
		p.Stats = append(p.Stats, models.Stat{Name: s.Stat.Name, Base: s.BaseStat})
	}

	return p
}

func applySpecies(p *models.Pokemon, s *speciesResponse) {
	for _, g := range s.Genera {
		if g.Language.Name == "en" {
			p.Genus = g.Genus
			break
		}
	}

	for _, f := range s.FlavorTextEntries {
		if f.Language.Name == "en" {
			p.FlavorText = CleanFlavorText(f.FlavorText)
			break
		}
	}
}

// CleanFlavorText collapses the form feeds, soft hyphens and line breaks
// found in game flavor text into single spaces.
func CleanFlavorText(s string) string {
	s = strings.NewReplacer("\f", " ", "\u00ad\n", "", "\u00ad", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
