package sheets

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/okian/shelf/internal/domain/model"
	"github.com/okian/shelf/pkg/metrics"
)

const categorySeparator = ";"

// coerceInt reads the leading integer of raw, or 0. Blank cells are not
// counted as fallbacks.
func coerceInt(field, raw string) int {
	v, ok := model.ParseInt(raw)
	if !ok {
		if strings.TrimSpace(raw) != "" {
			metrics.RecordCoercionFallback(field)
		}
		return 0
	}
	return v
}

// coerceRank keeps raw verbatim when it has no leading integer.
func coerceRank(field, raw string) model.Rank {
	r := model.ParseRank(raw)
	if !r.IsNumeric() && strings.TrimSpace(raw) != "" {
		metrics.RecordCoercionFallback(field)
	}
	return r
}

func coerceBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "TRUE")
}

// splitCategories splits on ";" and trims each token. Empty tokens and
// repeats are dropped; first occurrence order is kept.
func splitCategories(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	for _, tok := range strings.Split(raw, categorySeparator) {
		tok = strings.TrimSpace(tok)
		if tok == "" || slices.Contains(out, tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// coerceCommentary decodes the embedded JSON. Spreadsheet exports often
// wrap it in quotes and double the inner ones, so that form is tried
// first, then the raw cell. Anything undecodable, or JSON null, is absent.
func coerceCommentary(raw string) *model.Commentary {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if c, ok := decodeCommentary(unescapeCSVQuotes(raw)); ok {
		return c
	}
	if c, ok := decodeCommentary(raw); ok {
		return c
	}
	metrics.RecordCoercionFallback(colCommentary)
	return nil
}

func unescapeCSVQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}

func decodeCommentary(s string) (*model.Commentary, bool) {
	var c *model.Commentary
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, false
	}
	return c, true
}
