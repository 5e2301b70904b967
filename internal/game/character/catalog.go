// Package character holds the catalog of selectable avatar characters.
// Character choices are 1-based indexes into the catalog.
package character

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skyjump/internal/game/rng"
)

// ErrEmptyCatalog is returned when a catalog file defines no characters.
var ErrEmptyCatalog = errors.New("character catalog is empty")

// Character is one selectable avatar.
type Character struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Catalog is an immutable, ordered list of characters.
type Catalog struct {
	characters []Character
}

type catalogFile struct {
	Characters []Character `yaml:"characters"`
}

var defaultCharacters = []Character{
	{ID: "frog", Name: "Frog"},
	{ID: "fox", Name: "Fox"},
	{ID: "bunny", Name: "Bunny"},
	{ID: "mask_dude", Name: "Mask Dude"},
	{ID: "pink_man", Name: "Pink Man"},
	{ID: "virtual_guy", Name: "Virtual Guy"},
	{ID: "knight", Name: "Knight"},
	{ID: "wizard", Name: "Wizard"},
	{ID: "robot", Name: "Robot"},
	{ID: "slime", Name: "Slime"},
	{ID: "ghost", Name: "Ghost"},
	{ID: "penguin", Name: "Penguin"},
	{ID: "cat", Name: "Cat"},
	{ID: "duck", Name: "Duck"},
	{ID: "skeleton", Name: "Skeleton"},
	{ID: "astronaut", Name: "Astronaut"},
	{ID: "pirate", Name: "Pirate"},
	{ID: "dino", Name: "Dino"},
}

// New creates a Catalog from characters in choice order.
//
// Precondition: characters must be non-empty and every ID unique and non-empty.
// Postcondition: Returns a Catalog or an error.
func New(characters []Character) (*Catalog, error) {
	if len(characters) == 0 {
		return nil, ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(characters))
	for i, c := range characters {
		if c.ID == "" {
			return nil, fmt.Errorf("character %d has no id", i+1)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate character id %q", c.ID)
		}
		seen[c.ID] = true
	}
	out := make([]Character, len(characters))
	copy(out, characters)
	return &Catalog{characters: out}, nil
}

// Default returns the built-in 18-character catalog.
func Default() *Catalog {
	c, err := New(defaultCharacters)
	if err != nil {
		panic(fmt.Sprintf("building default catalog: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file of the form:
//
//	characters:
//	  - id: frog
//	    name: Frog
//
// Precondition: path must be a readable file.
// Postcondition: Returns a non-empty Catalog or a non-nil error.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing character catalog %s: %w", path, err)
	}
	return New(f.Characters)
}

// Size returns the number of characters.
func (c *Catalog) Size() int {
	return len(c.characters)
}

// Clamp limits choice to the valid range [1, Size()].
func (c *Catalog) Clamp(choice int) int {
	if choice < 1 {
		return 1
	}
	if choice > len(c.characters) {
		return len(c.characters)
	}
	return choice
}

// Random returns a uniformly random choice in [1, Size()].
//
// Precondition: src must be non-nil.
func (c *Catalog) Random(src rng.Source) int {
	return rng.Between(src, 1, len(c.characters))
}

// Get returns the character for a 1-based choice.
//
// Postcondition: Returns (character, true) when choice is in range.
func (c *Catalog) Get(choice int) (Character, bool) {
	if choice < 1 || choice > len(c.characters) {
		return Character{}, false
	}
	return c.characters[choice-1], true
}
