package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Kind names an intent on the wire and in metrics.
type Kind string

// Intent kinds.
const (
	KindToggleCategory      Kind = "toggle_category"
	KindAddCategory         Kind = "add_category"
	KindSelectOnlyCategory  Kind = "select_only_category"
	KindRemoveCategory      Kind = "remove_category"
	KindSetSearch           Kind = "set_search"
	KindSetPlaytime         Kind = "set_playtime"
	KindSetPlayerCount      Kind = "set_player_count"
	KindToggleProvenance    Kind = "toggle_provenance"
	KindSetProvenance       Kind = "set_provenance"
	KindSetCoopMode         Kind = "set_coop_mode"
	KindSetSortKey          Kind = "set_sort_key"
	KindToggleSortDirection Kind = "toggle_sort_direction"
	KindSetSortDirection    Kind = "set_sort_direction"
	KindReset               Kind = "reset"
)

// Intent is a pure state transition requested by a client.
type Intent interface {
	Kind() Kind
	Apply(s State) State
}

// ToggleCategory adds Category to the selection, or removes it if present.
type ToggleCategory struct{ Category string }

// AddCategory adds Category to the selection unless it is already there.
type AddCategory struct{ Category string }

// SelectOnlyCategory replaces the selection with exactly Category.
type SelectOnlyCategory struct{ Category string }

// RemoveCategory drops Category from the selection.
type RemoveCategory struct{ Category string }

// SetSearch sets the name search text.
type SetSearch struct{ Text string }

// SetPlaytime selects a playtime bucket.
type SetPlaytime struct{ Bucket PlaytimeBucket }

// SetPlayerCount selects a player count.
type SetPlayerCount struct{ Count PlayerCount }

// ToggleProvenance flips the sold-by-OKG filter.
type ToggleProvenance struct{}

// SetProvenance sets the sold-by-OKG filter.
type SetProvenance struct{ On bool }

// SetCoopMode selects a cooperative mode.
type SetCoopMode struct{ Mode CoopMode }

// SetSortKey selects the sort key.
type SetSortKey struct{ Key SortKey }

// ToggleSortDirection flips between ascending and descending.
type ToggleSortDirection struct{}

// SetSortDirection sets the sort direction.
type SetSortDirection struct{ Dir SortDirection }

// Reset restores Default.
type Reset struct{}

func (ToggleCategory) Kind() Kind      { return KindToggleCategory }
func (AddCategory) Kind() Kind         { return KindAddCategory }
func (SelectOnlyCategory) Kind() Kind  { return KindSelectOnlyCategory }
func (RemoveCategory) Kind() Kind      { return KindRemoveCategory }
func (SetSearch) Kind() Kind           { return KindSetSearch }
func (SetPlaytime) Kind() Kind         { return KindSetPlaytime }
func (SetPlayerCount) Kind() Kind      { return KindSetPlayerCount }
func (ToggleProvenance) Kind() Kind    { return KindToggleProvenance }
func (SetProvenance) Kind() Kind       { return KindSetProvenance }
func (SetCoopMode) Kind() Kind         { return KindSetCoopMode }
func (SetSortKey) Kind() Kind          { return KindSetSortKey }
func (ToggleSortDirection) Kind() Kind { return KindToggleSortDirection }
func (SetSortDirection) Kind() Kind    { return KindSetSortDirection }
func (Reset) Kind() Kind               { return KindReset }

func (i ToggleCategory) Apply(s State) State {
	s = s.Clone()
	if i.Category == "" {
		return s
	}
	if idx := slices.Index(s.Categories, i.Category); idx >= 0 {
		s.Categories = slices.Delete(s.Categories, idx, idx+1)
		return s
	}
	s.Categories = append(s.Categories, i.Category)
	return s
}

func (i AddCategory) Apply(s State) State {
	s = s.Clone()
	if i.Category == "" || slices.Contains(s.Categories, i.Category) {
		return s
	}
	s.Categories = append(s.Categories, i.Category)
	return s
}

func (i SelectOnlyCategory) Apply(s State) State {
	s = s.Clone()
	if i.Category == "" {
		return s
	}
	s.Categories = []string{i.Category}
	return s
}

func (i RemoveCategory) Apply(s State) State {
	s = s.Clone()
	s.Categories = slices.DeleteFunc(s.Categories, func(c string) bool { return c == i.Category })
	return s
}

func (i SetSearch) Apply(s State) State {
	s = s.Clone()
	s.Search = i.Text
	return s
}

func (i SetPlaytime) Apply(s State) State {
	s = s.Clone()
	if slices.Contains(playtimeBuckets, i.Bucket) {
		s.Playtime = i.Bucket
	}
	return s
}

func (i SetPlayerCount) Apply(s State) State {
	s = s.Clone()
	if p, ok := ParsePlayerCount(string(i.Count)); ok && p == i.Count {
		s.Players = i.Count
	}
	return s
}

func (ToggleProvenance) Apply(s State) State {
	s = s.Clone()
	s.SoldByOKG = !s.SoldByOKG
	return s
}

func (i SetProvenance) Apply(s State) State {
	s = s.Clone()
	s.SoldByOKG = i.On
	return s
}

func (i SetCoopMode) Apply(s State) State {
	s = s.Clone()
	if slices.Contains(coopModes, i.Mode) {
		s.Coop = i.Mode
	}
	return s
}

func (i SetSortKey) Apply(s State) State {
	s = s.Clone()
	if slices.Contains(sortKeys, i.Key) {
		s.SortKey = i.Key
	}
	return s
}

func (ToggleSortDirection) Apply(s State) State {
	s = s.Clone()
	if s.SortDir == Desc {
		s.SortDir = Asc
	} else {
		s.SortDir = Desc
	}
	return s
}

func (i SetSortDirection) Apply(s State) State {
	s = s.Clone()
	if i.Dir == Asc || i.Dir == Desc {
		s.SortDir = i.Dir
	}
	return s
}

func (Reset) Apply(State) State { return Default() }

// ApplyAll folds intents over s in order.
func ApplyAll(s State, intents ...Intent) State {
	for _, i := range intents {
		s = i.Apply(s)
	}
	return s
}

// Decode builds an intent from its wire form. value is ignored by kinds
// that take no argument.
func Decode(kind, value string) (Intent, error) {
	i, err := decode(kind, value)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func decode(kind, value string) (Intent, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindToggleCategory:
		return ToggleCategory{Category: strings.TrimSpace(value)}, requireValue(kind, value)
	case KindAddCategory:
		return AddCategory{Category: strings.TrimSpace(value)}, requireValue(kind, value)
	case KindSelectOnlyCategory:
		return SelectOnlyCategory{Category: strings.TrimSpace(value)}, requireValue(kind, value)
	case KindRemoveCategory:
		return RemoveCategory{Category: strings.TrimSpace(value)}, requireValue(kind, value)
	case KindSetSearch:
		return SetSearch{Text: value}, nil
	case KindSetPlaytime:
		b, ok := ParsePlaytime(value)
		return SetPlaytime{Bucket: b}, invalidUnless(ok, kind, value)
	case KindSetPlayerCount:
		p, ok := ParsePlayerCount(value)
		return SetPlayerCount{Count: p}, invalidUnless(ok, kind, value)
	case KindToggleProvenance:
		return ToggleProvenance{}, nil
	case KindSetProvenance:
		on, err := strconv.ParseBool(strings.TrimSpace(value))
		return SetProvenance{On: on}, invalidUnless(err == nil, kind, value)
	case KindSetCoopMode:
		m, ok := ParseCoopMode(value)
		return SetCoopMode{Mode: m}, invalidUnless(ok, kind, value)
	case KindSetSortKey:
		k, ok := ParseSortKey(value)
		return SetSortKey{Key: k}, invalidUnless(ok, kind, value)
	case KindToggleSortDirection:
		return ToggleSortDirection{}, nil
	case KindSetSortDirection:
		d, ok := ParseSortDirection(value)
		return SetSortDirection{Dir: d}, invalidUnless(ok, kind, value)
	case KindReset:
		return Reset{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, kind)
}

func requireValue(kind, value string) error {
	return invalidUnless(strings.TrimSpace(value) != "", kind, value)
}

func invalidUnless(ok bool, kind, value string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s %q", ErrInvalidValue, kind, value)
}
