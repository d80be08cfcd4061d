package filter_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/shelf/internal/domain/filter"
	"github.com/okian/shelf/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func names(games []model.Game) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.Name
	}
	return out
}

func fixture() []model.Game {
	return []model.Game{
		{Name: "Wingspan", Category: []string{"Engine Building", "Family"}, PlaytimeMinutes: 70, MinPlayers: 1, MaxPlayers: 5,
			LearningCurveRank: 40, StrategicDepthRank: 65, ReplayabilityRank: model.NumericRank(80), SoldByOKG: true},
		{Name: "Azul", Category: []string{"Abstract", "Family"}, PlaytimeMinutes: 30, MinPlayers: 2, MaxPlayers: 4,
			LearningCurveRank: 20, StrategicDepthRank: 50, ReplayabilityRank: model.NumericRank(70)},
		{Name: "Spirit Island", Category: []string{"Cooperative", "Strategy"}, PlaytimeMinutes: 120, MinPlayers: 1, MaxPlayers: 4,
			LearningCurveRank: 90, StrategicDepthRank: 95, ReplayabilityRank: model.NumericRank(90), Coop: true, SoldByOKG: true},
		{Name: "Existence", Category: []string{"Strategy"}, PlaytimeMinutes: 45, MinPlayers: 2, MaxPlayers: 6,
			LearningCurveRank: 50, StrategicDepthRank: 50, ReplayabilityRank: model.NumericRank(50)},
		{Name: "Twilight Imperium", Category: []string{"Strategy", "Epic"}, PlaytimeMinutes: 240, MinPlayers: 3, MaxPlayers: 6,
			LearningCurveRank: 95, StrategicDepthRank: 100, ReplayabilityRank: model.TextRank("Endless")},
		{Name: "Codenames", Category: []string{"Party"}, PlaytimeMinutes: 15, MinPlayers: 2, MaxPlayers: 8,
			LearningCurveRank: 10, StrategicDepthRank: 30, ReplayabilityRank: model.NumericRank(60)},
		{Name: "The Crew", Category: []string{"Cooperative", "Card Game"}, PlaytimeMinutes: 20, MinPlayers: 2, MaxPlayers: 5,
			LearningCurveRank: 25, StrategicDepthRank: 60, ReplayabilityRank: model.TextRank(""), Coop: true, SoldByOKG: true},
	}
}

func TestComputeVisibleDefaults(t *testing.T) {
	Convey("Given the default state", t, func() {
		games := fixture()
		got := filter.ComputeVisible(games, filter.Default())

		Convey("Then every game is visible, sorted by name", func() {
			want := []string{"Azul", "Codenames", "Existence", "Spirit Island", "The Crew", "Twilight Imperium", "Wingspan"}
			So(cmp.Diff(want, names(got)), ShouldBeEmpty)
		})

		Convey("Then the input is not mutated", func() {
			So(cmp.Diff(names(fixture()), names(games)), ShouldBeEmpty)
		})

		Convey("Then repeated calls give identical output", func() {
			s := filter.ApplyAll(filter.Default(),
				filter.SetSortKey{Key: filter.SortReplayability},
				filter.SetSortDirection{Dir: filter.Desc},
				filter.SetPlayerCount{Count: filter.PlayersTwo},
			)
			first := filter.ComputeVisible(games, s)
			second := filter.ComputeVisible(games, s)
			So(cmp.Diff(first, second, cmp.AllowUnexported(model.Rank{})), ShouldBeEmpty)
		})
	})
}

func TestCategoryFilter(t *testing.T) {
	Convey("Given a game tagged A and B", t, func() {
		games := []model.Game{{Name: "AB", Category: []string{"A", "B"}}}
		visible := func(cats ...string) bool {
			s := filter.Default()
			s.Categories = cats
			return len(filter.ComputeVisible(games, s)) == 1
		}

		Convey("Then selection must be fully contained", func() {
			So(visible("A"), ShouldBeTrue)
			So(visible("A", "B"), ShouldBeTrue)
			So(visible("A", "C"), ShouldBeFalse)
			So(visible(), ShouldBeTrue)
		})
	})
}

func TestSearchFilter(t *testing.T) {
	Convey("Given a search string", t, func() {
		games := fixture()

		Convey("When it differs only in case", func() {
			got := filter.ComputeVisible(games, filter.SetSearch{Text: "SPIRIT"}.Apply(filter.Default()))

			Convey("Then it matches by substring", func() {
				So(names(got), ShouldResemble, []string{"Spirit Island"})
			})
		})

		Convey("When it is only whitespace", func() {
			got := filter.ComputeVisible(games, filter.SetSearch{Text: "   "}.Apply(filter.Default()))

			Convey("Then nothing is filtered", func() {
				So(len(got), ShouldEqual, len(games))
			})
		})
	})
}

func TestPlaytimeBuckets(t *testing.T) {
	Convey("Given bucket boundaries", t, func() {
		So(filter.PlaytimeQuick.Contains(0), ShouldBeTrue)
		So(filter.PlaytimeQuick.Contains(30), ShouldBeTrue)
		So(filter.PlaytimeQuick.Contains(31), ShouldBeFalse)
		So(filter.PlaytimeStandard.Contains(31), ShouldBeTrue)
		So(filter.PlaytimeStandard.Contains(60), ShouldBeTrue)
		So(filter.PlaytimeExtended.Contains(61), ShouldBeTrue)
		So(filter.PlaytimeExtended.Contains(120), ShouldBeTrue)
		So(filter.PlaytimeEpic.Contains(120), ShouldBeFalse)
		So(filter.PlaytimeEpic.Contains(121), ShouldBeTrue)
		So(filter.PlaytimeAll.Contains(100000), ShouldBeTrue)
		So(filter.PlaytimeBucket("marathon").Contains(5), ShouldBeTrue)
	})
}

func TestPlayerCountFilter(t *testing.T) {
	Convey("Given player count selectors", t, func() {
		solo := model.Game{MinPlayers: 1, MaxPlayers: 1}
		big := model.Game{MinPlayers: 6, MaxPlayers: 10}
		small := model.Game{MinPlayers: 2, MaxPlayers: 4}

		Convey("Then 5+ only looks at the maximum", func() {
			So(filter.PlayersFivePl.Fits(big), ShouldBeTrue)
			So(filter.PlayersFivePl.Fits(small), ShouldBeFalse)
		})

		Convey("Then literal counts are inclusive", func() {
			So(filter.PlayersTwo.Fits(small), ShouldBeTrue)
			So(filter.PlayersFour.Fits(small), ShouldBeTrue)
			So(filter.PlayersOne.Fits(small), ShouldBeFalse)
			So(filter.PlayersOne.Fits(solo), ShouldBeTrue)
			So(filter.PlayerCount("7").Fits(big), ShouldBeTrue)
		})

		Convey("Then any and unknown selectors pass", func() {
			So(filter.PlayersAny.Fits(solo), ShouldBeTrue)
			So(filter.PlayerCount("lots").Fits(solo), ShouldBeTrue)
		})
	})
}

func TestProvenanceAndCoop(t *testing.T) {
	Convey("Given the fixture", t, func() {
		games := fixture()

		Convey("When the provenance toggle is on", func() {
			got := filter.ComputeVisible(games, filter.ToggleProvenance{}.Apply(filter.Default()))

			Convey("Then every result is sold by OKG", func() {
				So(len(got), ShouldEqual, 3)
				for _, g := range got {
					So(g.SoldByOKG, ShouldBeTrue)
				}
			})
		})

		Convey("When the provenance toggle is off", func() {
			got := filter.ComputeVisible(games, filter.Default())

			Convey("Then all games are eligible", func() {
				So(len(got), ShouldEqual, len(games))
			})
		})

		Convey("When filtering by coop mode", func() {
			coop := filter.ComputeVisible(games, filter.SetCoopMode{Mode: filter.CoopOnly}.Apply(filter.Default()))
			comp := filter.ComputeVisible(games, filter.SetCoopMode{Mode: filter.CoopCompetitive}.Apply(filter.Default()))

			Convey("Then the two modes partition the catalog", func() {
				So(names(coop), ShouldResemble, []string{"Spirit Island", "The Crew"})
				So(len(coop)+len(comp), ShouldEqual, len(games))
				So(filter.CoopMode("bogus").Matches(games[0]), ShouldBeTrue)
			})
		})
	})
}

func TestSorting(t *testing.T) {
	Convey("Given three names", t, func() {
		games := []model.Game{{Name: "Zoo"}, {Name: "Ant"}, {Name: "Mid"}}

		Convey("Then ascending name order is alphabetical", func() {
			So(names(filter.ComputeVisible(games, filter.Default())), ShouldResemble, []string{"Ant", "Mid", "Zoo"})
		})

		Convey("Then descending reverses it", func() {
			s := filter.ToggleSortDirection{}.Apply(filter.Default())
			So(names(filter.ComputeVisible(games, s)), ShouldResemble, []string{"Zoo", "Mid", "Ant"})
		})
	})

	Convey("Given names differing in case", t, func() {
		games := []model.Game{{Name: "bohnanza"}, {Name: "Azul"}, {Name: "Carcassonne"}}

		Convey("Then the collator orders them as a reader would", func() {
			So(names(filter.ComputeVisible(games, filter.Default())), ShouldResemble, []string{"Azul", "bohnanza", "Carcassonne"})
		})
	})

	Convey("Given the fixture sorted by playtime", t, func() {
		s := filter.SetSortKey{Key: filter.SortPlaytime}.Apply(filter.Default())
		got := filter.ComputeVisible(fixture(), s)

		Convey("Then games are ordered by minutes and Existence is gone", func() {
			So(names(got), ShouldResemble, []string{"Codenames", "The Crew", "Azul", "Wingspan", "Spirit Island", "Twilight Imperium"})
		})
	})

	Convey("Given the fixture sorted by strategic depth descending", t, func() {
		s := filter.ApplyAll(filter.Default(), filter.SetSortKey{Key: filter.SortStrategicDepth}, filter.ToggleSortDirection{})
		got := filter.ComputeVisible(fixture(), s)

		Convey("Then the deepest game comes first", func() {
			So(got[0].Name, ShouldEqual, "Twilight Imperium")
			So(got[len(got)-1].Name, ShouldEqual, "Codenames")
		})
	})

	Convey("Given equal ranks", t, func() {
		games := []model.Game{
			{Name: "B", LearningCurveRank: 10},
			{Name: "A", LearningCurveRank: 10},
			{Name: "C", LearningCurveRank: 5},
		}
		s := filter.SetSortKey{Key: filter.SortLearningCurve}.Apply(filter.Default())

		Convey("Then ties keep collection order", func() {
			So(names(filter.ComputeVisible(games, s)), ShouldResemble, []string{"C", "B", "A"})
		})
	})
}

func TestReplayabilityCoercion(t *testing.T) {
	Convey("Given replayability ranks mixing numbers and text", t, func() {
		games := []model.Game{
			{Name: "High", ReplayabilityRank: model.NumericRank(90)},
			{Name: "Text A", ReplayabilityRank: model.TextRank("n/a")},
			{Name: "Low", ReplayabilityRank: model.NumericRank(0)},
			{Name: "Text B", ReplayabilityRank: model.TextRank("Endless")},
		}
		s := filter.SetSortKey{Key: filter.SortReplayability}.Apply(filter.Default())

		Convey("When ascending", func() {
			got := filter.ComputeVisible(games, s)

			Convey("Then text ranks come first, in collection order", func() {
				So(names(got), ShouldResemble, []string{"Text A", "Text B", "Low", "High"})
			})
		})

		Convey("When descending", func() {
			got := filter.ComputeVisible(games, filter.ToggleSortDirection{}.Apply(s))

			Convey("Then text ranks come last", func() {
				So(names(got), ShouldResemble, []string{"High", "Low", "Text A", "Text B"})
			})
		})
	})
}

func TestExistenceExclusion(t *testing.T) {
	Convey("Given a catalog containing Existence", t, func() {
		games := fixture()

		Convey("Then it is hidden for every non-name sort key", func() {
			for _, key := range filter.SortKeys() {
				s := filter.SetSortKey{Key: key}.Apply(filter.Default())
				got := names(filter.ComputeVisible(games, s))
				if key == filter.SortName {
					So(got, ShouldContain, "Existence")
				} else {
					So(got, ShouldNotContain, "Existence")
				}
			}
		})

		Convey("Then it stays hidden under playtime sort whatever the filters", func() {
			s := filter.ApplyAll(filter.Default(),
				filter.SetSortKey{Key: filter.SortPlaytime},
				filter.SetSearch{Text: "exist"},
				filter.ToggleCategory{Category: "Strategy"},
			)
			So(filter.ComputeVisible(games, s), ShouldBeEmpty)
		})

		Convey("Then only that exact name is affected", func() {
			s := filter.SetSortKey{Key: filter.SortPlaytime}.Apply(filter.Default())
			got := filter.ComputeVisible([]model.Game{{Name: "existence"}, {Name: "Existence 2"}}, s)
			So(len(got), ShouldEqual, 2)
		})
	})
}

func TestUnknownSelectors(t *testing.T) {
	Convey("Given a state built with unrecognized values", t, func() {
		s := filter.State{
			Playtime: "forever",
			Players:  "many",
			Coop:     "teams",
			SortKey:  "weight",
			SortDir:  "sideways",
		}
		games := fixture()

		Convey("Then filters pass and input order is kept", func() {
			got := filter.ComputeVisible(games, s)
			want := names(games)
			want = append(want[:3], want[4:]...)
			So(cmp.Diff(want, names(got)), ShouldBeEmpty)
		})
	})
}
