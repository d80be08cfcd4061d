package filter

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/shelf/internal/domain/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// HiddenUnlessSortedByName is left out of every result that is not sorted
// by name. Only this exact name is affected.
const HiddenUnlessSortedByName = "Existence"

// Playtime bucket bounds in minutes.
const (
	quickMax    = 30
	standardMax = 60
	extendedMax = 120
	fivePlus    = 5
)

// ComputeVisible returns the games matching every criterion of s, ordered
// by s.SortKey and s.SortDir. The input slice is not modified.
func ComputeVisible(games []model.Game, s State) []model.Game {
	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		if s.SortKey != SortName && g.Name == HiddenUnlessSortedByName {
			continue
		}
		if Matches(g, s) {
			out = append(out, g)
		}
	}

	compare := comparator(s.SortKey)
	mult := 1
	if s.SortDir == Desc {
		mult = -1
	}
	slices.SortStableFunc(out, func(a, b model.Game) int {
		return mult * compare(a, b)
	})
	return out
}

// Matches reports whether g passes every filter criterion of s. Sorting
// and the name-sort exclusion are not considered.
func Matches(g model.Game, s State) bool {
	return matchCategories(g, s.Categories) &&
		matchSearch(g, s.Search) &&
		s.Playtime.Contains(g.PlaytimeMinutes) &&
		s.Players.Fits(g) &&
		(!s.SoldByOKG || g.SoldByOKG) &&
		s.Coop.Matches(g)
}

// matchCategories requires every selected category, not any.
func matchCategories(g model.Game, selected []string) bool {
	for _, c := range selected {
		if !g.HasCategory(c) {
			return false
		}
	}
	return true
}

func matchSearch(g model.Game, search string) bool {
	if strings.TrimSpace(search) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(g.Name), strings.ToLower(search))
}

// Contains reports whether minutes falls in the bucket. Unknown buckets
// contain everything.
func (b PlaytimeBucket) Contains(minutes int) bool {
	switch b {
	case PlaytimeQuick:
		return minutes >= 0 && minutes <= quickMax
	case PlaytimeStandard:
		return minutes > quickMax && minutes <= standardMax
	case PlaytimeExtended:
		return minutes > standardMax && minutes <= extendedMax
	case PlaytimeEpic:
		return minutes > extendedMax
	default:
		return true
	}
}

// Fits reports whether g supports the selected player count. Unknown
// selectors fit every game.
func (p PlayerCount) Fits(g model.Game) bool {
	if p == PlayersFivePl {
		return g.MaxPlayers >= fivePlus
	}
	n, ok := p.exact()
	if !ok {
		return true
	}
	return g.MinPlayers <= n && n <= g.MaxPlayers
}

func (p PlayerCount) exact() (int, bool) {
	n, err := strconv.Atoi(string(p))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Matches reports whether g fits the mode. Unknown modes match everything.
func (m CoopMode) Matches(g model.Game) bool {
	switch m {
	case CoopOnly:
		return g.Coop
	case CoopCompetitive:
		return !g.Coop
	default:
		return true
	}
}

type compareFunc func(a, b model.Game) int

// comparator returns an ascending three-way comparison for key. Unknown
// keys compare everything equal so the input order is kept.
func comparator(key SortKey) compareFunc {
	switch key {
	case SortName:
		// Collators keep scratch buffers; one per call keeps ComputeVisible
		// safe for concurrent use.
		col := collate.New(language.English)
		return func(a, b model.Game) int {
			if c := col.CompareString(a.Name, b.Name); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		}
	case SortPlaytime:
		return func(a, b model.Game) int { return cmp.Compare(a.PlaytimeMinutes, b.PlaytimeMinutes) }
	case SortLearningCurve:
		return func(a, b model.Game) int { return cmp.Compare(a.LearningCurveRank, b.LearningCurveRank) }
	case SortStrategicDepth:
		return func(a, b model.Game) int { return cmp.Compare(a.StrategicDepthRank, b.StrategicDepthRank) }
	case SortReplayability:
		return func(a, b model.Game) int { return model.CompareRanks(a.ReplayabilityRank, b.ReplayabilityRank) }
	default:
		return func(model.Game, model.Game) int { return 0 }
	}
}
