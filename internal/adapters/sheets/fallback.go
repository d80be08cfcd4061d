package sheets

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/shelf/internal/domain/model"
)

//go:embed data/games.json
var snapshotGames []byte

//go:embed data/game_categories.json
var snapshotCategories []byte

// Snapshot decodes the bundled tables. The same name rule as the CSV
// exports applies, and category lists are normalized the same way.
func Snapshot() ([]model.Game, []model.Category, error) {
	return decodeSnapshot(snapshotGames, snapshotCategories)
}

func decodeSnapshot(gamesJSON, categoriesJSON []byte) ([]model.Game, []model.Category, error) {
	var rawGames []model.Game
	if err := json.Unmarshal(gamesJSON, &rawGames); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrSnapshot, tableGames, err)
	}
	var rawCats []model.Category
	if err := json.Unmarshal(categoriesJSON, &rawCats); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrSnapshot, tableCategories, err)
	}

	games := make([]model.Game, 0, len(rawGames))
	for _, g := range rawGames {
		if !validName(g.Name) {
			continue
		}
		g.Category = normalizeCategories(g.Category)
		games = append(games, g)
	}
	cats := make([]model.Category, 0, len(rawCats))
	for _, c := range rawCats {
		if validName(c.Name) {
			cats = append(cats, c)
		}
	}
	return games, cats, nil
}

// normalizeCategories applies the CSV token rules to a decoded list.
func normalizeCategories(in []string) []string {
	return splitCategories(strings.Join(in, categorySeparator))
}
