// Package model contains domain models passed between layers.
package model

import "slices"

// Alternative is a game recommended in place of another.
type Alternative struct {
	Name        string `json:"name"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
}

// Commentary is the long-form review attached to a game.
type Commentary struct {
	Body         string        `json:"body"`
	Alternatives []Alternative `json:"alternatives"`
	Verdict      string        `json:"verdict"`
}

// Game is one catalog entry. Name is unique within a catalog.
//
// MinPlayers <= SuggestedMinPlayers <= MaxPlayers is expected of the source
// data but not enforced.
type Game struct {
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	LearningCurveRank   int         `json:"learning_curve_rank"`
	LearningCurveDesc   string      `json:"learning_curve_desc"`
	StrategicDepthRank  int         `json:"strategic_depth_rank"`
	StrategicDepthDesc  string      `json:"strategic_depth_desc"`
	ReplayabilityRank   Rank        `json:"replayability_rank"`
	ReplayabilityDesc   string      `json:"replayability_desc"`
	Category            []string    `json:"category"`
	PlaytimeMinutes     int         `json:"playtime_minutes"`
	GameplayStyle       string      `json:"gameplay_style,omitempty"`
	MinPlayers          int         `json:"min_players"`
	MaxPlayers          int         `json:"max_players"`
	SuggestedMinPlayers int         `json:"suggested_min_players"`
	PlayersDesc         string      `json:"players_desc"`
	SoldByOKG           bool        `json:"sold_by_okg"`
	Coop                bool        `json:"coop"`
	Commentary          *Commentary `json:"commentary_and_alternatives,omitempty"`
}

// HasCategory reports whether the game is tagged with name.
func (g Game) HasCategory(name string) bool {
	return slices.Contains(g.Category, name)
}

// Category describes one category tag.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
