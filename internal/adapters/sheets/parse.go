package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/shelf/internal/domain/model"
	"github.com/okian/shelf/pkg/metrics"
)

// Column names shared by the CSV exports and the bundled snapshot.
const (
	colName                = "name"
	colDescription         = "description"
	colLearningCurveRank   = "learning_curve_rank"
	colLearningCurveDesc   = "learning_curve_desc"
	colStrategicDepthRank  = "strategic_depth_rank"
	colStrategicDepthDesc  = "strategic_depth_desc"
	colReplayabilityRank   = "replayability_rank"
	colReplayabilityDesc   = "replayability_desc"
	colCategory            = "category"
	colPlaytimeMinutes     = "playtime_minutes"
	colGameplayStyle       = "gameplay_style"
	colMinPlayers          = "min_players"
	colMaxPlayers          = "max_players"
	colSuggestedMinPlayers = "suggested_min_players"
	colPlayersDesc         = "players_desc"
	colSoldByOKG           = "sold_by_okg"
	colCoop                = "coop"
	colCommentary          = "commentary_and_alternatives"
)

const (
	tableGames      = "games"
	tableCategories = "categories"
	utf8BOM         = "\ufeff"
)

// row maps header names to cell values. Missing cells read as "".
type row map[string]string

// ParseGames reads a header-row CSV of games. Rows without a name are
// dropped; every other field is coerced and never rejects a row. The only
// errors come from the underlying reader.
func ParseGames(r io.Reader) ([]model.Game, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", tableGames, err)
	}

	games := make([]model.Game, 0, len(rows))
	for _, rw := range rows {
		if !validName(rw[colName]) {
			continue
		}
		games = append(games, gameFromRow(rw))
	}
	metrics.RecordRowsDropped(tableGames, len(rows)-len(games))
	return games, nil
}

// ParseCategories reads a header-row CSV of category records.
func ParseCategories(r io.Reader) ([]model.Category, error) {
	rows, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", tableCategories, err)
	}

	cats := make([]model.Category, 0, len(rows))
	for _, rw := range rows {
		if !validName(rw[colName]) {
			continue
		}
		cats = append(cats, model.Category{Name: rw[colName], Description: rw[colDescription]})
	}
	metrics.RecordRowsDropped(tableCategories, len(rows)-len(cats))
	return cats, nil
}

func validName(name string) bool {
	return strings.TrimSpace(name) != ""
}

func gameFromRow(rw row) model.Game {
	return model.Game{
		Name:                rw[colName],
		Description:         rw[colDescription],
		LearningCurveRank:   coerceInt(colLearningCurveRank, rw[colLearningCurveRank]),
		LearningCurveDesc:   rw[colLearningCurveDesc],
		StrategicDepthRank:  coerceInt(colStrategicDepthRank, rw[colStrategicDepthRank]),
		StrategicDepthDesc:  rw[colStrategicDepthDesc],
		ReplayabilityRank:   coerceRank(colReplayabilityRank, rw[colReplayabilityRank]),
		ReplayabilityDesc:   rw[colReplayabilityDesc],
		Category:            splitCategories(rw[colCategory]),
		PlaytimeMinutes:     coerceInt(colPlaytimeMinutes, rw[colPlaytimeMinutes]),
		GameplayStyle:       rw[colGameplayStyle],
		MinPlayers:          coerceInt(colMinPlayers, rw[colMinPlayers]),
		MaxPlayers:          coerceInt(colMaxPlayers, rw[colMaxPlayers]),
		SuggestedMinPlayers: coerceInt(colSuggestedMinPlayers, rw[colSuggestedMinPlayers]),
		PlayersDesc:         rw[colPlayersDesc],
		SoldByOKG:           coerceBool(rw[colSoldByOKG]),
		Coop:                coerceBool(rw[colCoop]),
		Commentary:          coerceCommentary(rw[colCommentary]),
	}
}

// readTable reads every record after the header. Ragged rows are
// tolerated: extra cells are ignored and missing cells read as "".
func readTable(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		rw := make(row, len(cols))
		for i, v := range rec {
			if i < len(cols) && cols[i] != "" {
				rw[cols[i]] = v
			}
		}
		rows = append(rows, rw)
	}
	return rows, nil
}
