// Package filter computes the visible game list from a catalog and a set of
// independent filter and sort criteria.
package filter

import (
	"slices"
	"strings"
)

// PlaytimeBucket coarsens playtime for filtering.
type PlaytimeBucket string

// Playtime buckets. Ranges are inclusive except Epic, which starts above 120.
const (
	PlaytimeAll      PlaytimeBucket = "all"
	PlaytimeQuick    PlaytimeBucket = "quick"    // 0-30
	PlaytimeStandard PlaytimeBucket = "standard" // 31-60
	PlaytimeExtended PlaytimeBucket = "extended" // 61-120
	PlaytimeEpic     PlaytimeBucket = "epic"     // 121+
)

// PlayerCount selects games by supported player count. Besides the named
// values below, any positive integer literal is a valid selector.
type PlayerCount string

// Player count selectors offered to users.
const (
	PlayersAny    PlayerCount = "any"
	PlayersOne    PlayerCount = "1"
	PlayersTwo    PlayerCount = "2"
	PlayersThree  PlayerCount = "3"
	PlayersFour   PlayerCount = "4"
	PlayersFivePl PlayerCount = "5+"
)

// CoopMode selects cooperative or competitive games.
type CoopMode string

// Cooperative mode selectors.
const (
	CoopAll         CoopMode = "all"
	CoopOnly        CoopMode = "coop"
	CoopCompetitive CoopMode = "competitive"
)

// SortKey names the ordering field.
type SortKey string

// Sort keys.
const (
	SortName           SortKey = "name"
	SortLearningCurve  SortKey = "learning_curve"
	SortStrategicDepth SortKey = "strategic_depth"
	SortReplayability  SortKey = "replayability"
	SortPlaytime       SortKey = "playtime"
)

// SortDirection is ascending or descending.
type SortDirection string

// Sort directions.
const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

var (
	playtimeBuckets = []PlaytimeBucket{PlaytimeAll, PlaytimeQuick, PlaytimeStandard, PlaytimeExtended, PlaytimeEpic}
	playerCounts    = []PlayerCount{PlayersAny, PlayersOne, PlayersTwo, PlayersThree, PlayersFour, PlayersFivePl}
	coopModes       = []CoopMode{CoopAll, CoopOnly, CoopCompetitive}
	sortKeys        = []SortKey{SortName, SortLearningCurve, SortStrategicDepth, SortReplayability, SortPlaytime}
)

// PlaytimeBuckets lists the buckets in display order.
func PlaytimeBuckets() []PlaytimeBucket { return slices.Clone(playtimeBuckets) }

// PlayerCounts lists the player count selectors in display order.
func PlayerCounts() []PlayerCount { return slices.Clone(playerCounts) }

// CoopModes lists the cooperative mode selectors.
func CoopModes() []CoopMode { return slices.Clone(coopModes) }

// SortKeys lists the sort keys.
func SortKeys() []SortKey { return slices.Clone(sortKeys) }

// ParsePlaytime returns the bucket named s.
func ParsePlaytime(s string) (PlaytimeBucket, bool) {
	b := PlaytimeBucket(strings.ToLower(strings.TrimSpace(s)))
	return b, slices.Contains(playtimeBuckets, b)
}

// ParsePlayerCount accepts "any", "5+" or a positive integer.
func ParsePlayerCount(s string) (PlayerCount, bool) {
	p := PlayerCount(strings.ToLower(strings.TrimSpace(s)))
	if p == PlayersAny || p == PlayersFivePl {
		return p, true
	}
	if _, ok := p.exact(); ok {
		return p, true
	}
	return "", false
}

// ParseCoopMode returns the mode named s.
func ParseCoopMode(s string) (CoopMode, bool) {
	m := CoopMode(strings.ToLower(strings.TrimSpace(s)))
	return m, slices.Contains(coopModes, m)
}

// ParseSortKey returns the key named s.
func ParseSortKey(s string) (SortKey, bool) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	return k, slices.Contains(sortKeys, k)
}

// ParseSortDirection returns the direction named s.
func ParseSortDirection(s string) (SortDirection, bool) {
	d := SortDirection(strings.ToLower(strings.TrimSpace(s)))
	return d, d == Asc || d == Desc
}

// State holds every filter and sort criterion. The zero value is not the
// default; use Default.
type State struct {
	Categories []string       `json:"categories"`
	Search     string         `json:"search"`
	Playtime   PlaytimeBucket `json:"playtime"`
	Players    PlayerCount    `json:"players"`
	SoldByOKG  bool           `json:"sold_by_okg"`
	Coop       CoopMode       `json:"coop"`
	SortKey    SortKey        `json:"sort_by"`
	SortDir    SortDirection  `json:"sort_direction"`
}

// Default returns the state with no filter applied, sorted by name ascending.
func Default() State {
	return State{
		Categories: []string{},
		Playtime:   PlaytimeAll,
		Players:    PlayersAny,
		Coop:       CoopAll,
		SortKey:    SortName,
		SortDir:    Asc,
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Categories = slices.Clone(s.Categories)
	if s.Categories == nil {
		s.Categories = []string{}
	}
	return s
}

// Equal reports whether two states select and order identically.
// Category order is ignored.
func (s State) Equal(o State) bool {
	if s.Search != o.Search || s.Playtime != o.Playtime || s.Players != o.Players ||
		s.SoldByOKG != o.SoldByOKG || s.Coop != o.Coop || s.SortKey != o.SortKey || s.SortDir != o.SortDir {
		return false
	}
	if len(s.Categories) != len(o.Categories) {
		return false
	}
	for _, c := range s.Categories {
		if !slices.Contains(o.Categories, c) {
			return false
		}
	}
	return true
}

// Active reports which criteria differ from Default.
type Active struct {
	Categories bool `json:"categories"`
	Search     bool `json:"search"`
	Playtime   bool `json:"playtime"`
	Players    bool `json:"players"`
	SoldByOKG  bool `json:"sold_by_okg"`
	Coop       bool `json:"coop"`
	Sort       bool `json:"sort"`
}

// Any reports whether any criterion is active.
func (a Active) Any() bool {
	return a.Categories || a.Search || a.Playtime || a.Players || a.SoldByOKG || a.Coop || a.Sort
}

// Active summarizes the non-default criteria of s.
func (s State) Active() Active {
	return Active{
		Categories: len(s.Categories) > 0,
		Search:     strings.TrimSpace(s.Search) != "",
		Playtime:   s.Playtime != PlaytimeAll,
		Players:    s.Players != PlayersAny,
		SoldByOKG:  s.SoldByOKG,
		Coop:       s.Coop != CoopAll,
		Sort:       s.SortKey != SortName || s.SortDir != Asc,
	}
}
