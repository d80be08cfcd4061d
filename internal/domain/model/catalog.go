package model

import (
	"maps"
	"slices"
	"time"
)

// Source names where a catalog's data came from.
type Source string

// Catalog sources.
const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Meta describes how a catalog was obtained.
type Meta struct {
	Source   Source    `json:"source"`
	Advisory string    `json:"advisory,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Catalog is an immutable snapshot of games and categories for a session.
type Catalog struct {
	meta         Meta
	games        []Game
	categories   []Category
	descriptions map[string]string
	names        []string
	byName       map[string]int
}

// NewCatalog copies games and categories into a snapshot and builds the
// lookup tables. Duplicate category names resolve last-write-wins; a
// duplicate game name resolves to its first row.
func NewCatalog(games []Game, categories []Category, meta Meta) *Catalog {
	c := &Catalog{
		meta:         meta,
		games:        slices.Clone(games),
		categories:   slices.Clone(categories),
		descriptions: make(map[string]string, len(categories)),
		byName:       make(map[string]int, len(games)),
	}
	for _, cat := range c.categories {
		c.descriptions[cat.Name] = cat.Description
	}

	seen := make(map[string]struct{})
	for i, g := range c.games {
		if _, ok := c.byName[g.Name]; !ok {
			c.byName[g.Name] = i
		}
		for _, name := range g.Category {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			c.names = append(c.names, name)
		}
	}
	slices.Sort(c.names)
	return c
}

// Meta returns load metadata.
func (c *Catalog) Meta() Meta { return c.meta }

// Games returns a copy of all games in source order.
func (c *Catalog) Games() []Game { return slices.Clone(c.games) }

// Categories returns a copy of the category records in source order.
func (c *Catalog) Categories() []Category { return slices.Clone(c.categories) }

// Len returns the number of games.
func (c *Catalog) Len() int { return len(c.games) }

// Game looks a game up by name.
func (c *Catalog) Game(name string) (Game, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Game{}, false
	}
	return c.games[i], true
}

// CategoryDescriptions returns a name->description map.
func (c *Catalog) CategoryDescriptions() map[string]string {
	return maps.Clone(c.descriptions)
}

// CategoryDescription returns the description for one category.
func (c *Catalog) CategoryDescription(name string) (string, bool) {
	d, ok := c.descriptions[name]
	return d, ok
}

// CategoryNames returns the sorted, unique category names used by games.
func (c *Catalog) CategoryNames() []string { return slices.Clone(c.names) }
