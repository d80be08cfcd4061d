package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Rank is a 0-100 score that degraded source data may carry as free text.
// The zero value is the number 0.
type Rank struct {
	n      int
	text   string
	isText bool
}

// NumericRank returns a Rank holding v.
func NumericRank(v int) Rank { return Rank{n: v} }

// TextRank returns a Rank holding s verbatim.
func TextRank(s string) Rank { return Rank{text: s, isText: true} }

// ParseRank coerces a raw cell. Values without a leading integer keep the
// original string.
func ParseRank(raw string) Rank {
	if v, ok := ParseInt(raw); ok {
		return NumericRank(v)
	}
	return TextRank(raw)
}

// Int returns the numeric value and whether the rank is numeric.
func (r Rank) Int() (int, bool) { return r.n, !r.isText }

// IsNumeric reports whether the rank holds a number.
func (r Rank) IsNumeric() bool { return !r.isText }

// String renders the rank for display.
func (r Rank) String() string {
	if r.isText {
		return r.text
	}
	return strconv.Itoa(r.n)
}

// CompareRanks orders a before b. Text ranks sort below every numeric
// rank and tie with each other, so sorting never depends on their content.
func CompareRanks(a, b Rank) int {
	switch {
	case a.isText && b.isText:
		return 0
	case a.isText:
		return -1
	case b.isText:
		return 1
	}
	switch {
	case a.n < b.n:
		return -1
	case a.n > b.n:
		return 1
	}
	return 0
}

// MarshalJSON writes numbers as JSON numbers and text as JSON strings.
func (r Rank) MarshalJSON() ([]byte, error) {
	if r.isText {
		return json.Marshal(r.text)
	}
	return []byte(strconv.Itoa(r.n)), nil
}

// UnmarshalJSON accepts a number, a string or null. Strings go through
// ParseRank so "85" and 85 decode alike.
func (r *Rank) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = Rank{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("rank: %w", err)
		}
		*r = ParseRank(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	*r = NumericRank(int(f))
	return nil
}

// ParseInt reads the leading base-10 integer of s, the way spreadsheet
// exports are usually read: surrounding space is skipped, a sign is
// allowed and anything after the digits is ignored ("45 min" is 45,
// "7.5" is 7). ok is false when s has no leading digits.
func ParseInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
