package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Pokemon is the normalized view of a Pokémon assembled from the
// /pokemon and /pokemon-species upstream resources
type Pokemon struct {
	ID             int       `json:"id" validate:"required,min=1"`
	Name           string    `json:"name" validate:"required"`
	Height         int       `json:"height"` // Decimetres
	Weight         int       `json:"weight"` // Hectograms
	BaseExperience int       `json:"base_experience"`
	Types          []string  `json:"types" validate:"min=1,dive,required"` // Slot order
	Abilities      []Ability `json:"abilities"`
	Stats          []Stat    `json:"stats"`
	SpriteURL      string    `json:"sprite_url,omitempty"`
	Genus          string    `json:"genus,omitempty"`       // e.g. "Seed Pokémon"
	FlavorText     string    `json:"flavor_text,omitempty"` // English, whitespace normalized
	FetchedAt      time.Time `json:"fetched_at"`
}

// Ability is a Pokémon ability; hidden abilities are listed last upstream
type Ability struct {
	Name   string `json:"name"`
	Hidden bool   `json:"hidden"`
}

// Stat is a named base stat (hp, attack, defense, special-attack, ...)
type Stat struct {
	Name string `json:"name"`
	Base int    `json:"base"`
}

// DisplayName returns the name in title case with hyphens as spaces
func (p *Pokemon) DisplayName() string {
	return TitleCase(p.Name)
}

// HeightMetres converts the upstream decimetre height
func (p *Pokemon) HeightMetres() float64 {
	return float64(p.Height) / 10
}

// WeightKilograms converts the upstream hectogram weight
func (p *Pokemon) WeightKilograms() float64 {
	return float64(p.Weight) / 10
}

// TotalStats sums all base stats
func (p *Pokemon) TotalStats() int {
	total := 0
	for _, s := range p.Stats {
		total += s.Base
	}
	return total
}

// TitleCase turns "special-attack" into "Special Attack"
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "-", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
