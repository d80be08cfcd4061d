// Command shelfctl loads the catalog the same way the server does and
// prints filtered views of it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/okian/shelf/internal/adapters/sheets"
	"github.com/okian/shelf/internal/config"
	"github.com/okian/shelf/internal/domain/filter"
	"github.com/okian/shelf/internal/domain/model"
	"github.com/okian/shelf/pkg/logger"
	"github.com/spf13/cobra"
)

const loadTimeout = 60 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	verbose bool
	asJSON  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "shelfctl",
		Short:        "Browse the board game catalog from the terminal",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log catalog loading")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(newGamesCmd(opts), newCategoriesCmd(opts))
	return root
}

type gamesOptions struct {
	categories []string
	search     string
	playtime   string
	players    string
	okg        bool
	coop       string
	sort       string
	desc       bool
}

func newGamesCmd(root *rootOptions) *cobra.Command {
	opts := &gamesOptions{}
	cmd := &cobra.Command{
		Use:   "games",
		Short: "List games matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			intents, err := opts.intents(cmd)
			if err != nil {
				return err
			}
			res, err := loadCatalog(cmd.Context(), root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			state := filter.ApplyAll(filter.Default(), intents...)
			games := filter.ComputeVisible(res.Games, state)
			if root.asJSON {
				return writeJSON(cmd.OutOrStdout(), games)
			}
			return writeGames(cmd.OutOrStdout(), games)
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&opts.categories, "category", "c", nil, "require a category (repeatable)")
	f.StringVarP(&opts.search, "search", "s", "", "case-insensitive name search")
	f.StringVar(&opts.playtime, "playtime", string(filter.PlaytimeAll), "all, quick, standard, extended or epic")
	f.StringVar(&opts.players, "players", string(filter.PlayersAny), "any, 5+ or a player count")
	f.BoolVar(&opts.okg, "okg", false, "only games sold by OKG")
	f.StringVar(&opts.coop, "coop", string(filter.CoopAll), "all, coop or competitive")
	f.StringVar(&opts.sort, "sort", string(filter.SortName), "name, learning_curve, strategic_depth, replayability or playtime")
	f.BoolVar(&opts.desc, "desc", false, "sort descending")
	return cmd
}

// intents decodes the flags through the same path the HTTP API uses, so
// invalid values are rejected identically. Only flags set by the user are
// applied.
func (o *gamesOptions) intents(cmd *cobra.Command) ([]filter.Intent, error) {
	var wire [][2]string
	for _, c := range o.categories {
		wire = append(wire, [2]string{string(filter.KindAddCategory), c})
	}
	set := func(flag string, kind filter.Kind, value string) {
		if cmd.Flags().Changed(flag) {
			wire = append(wire, [2]string{string(kind), value})
		}
	}
	set("search", filter.KindSetSearch, o.search)
	set("playtime", filter.KindSetPlaytime, o.playtime)
	set("players", filter.KindSetPlayerCount, o.players)
	set("okg", filter.KindSetProvenance, fmt.Sprint(o.okg))
	set("coop", filter.KindSetCoopMode, o.coop)
	set("sort", filter.KindSetSortKey, o.sort)
	if o.desc {
		wire = append(wire, [2]string{string(filter.KindSetSortDirection), string(filter.Desc)})
	}

	out := make([]filter.Intent, 0, len(wire))
	for _, w := range wire {
		i, err := filter.Decode(w[0], w[1])
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

func newCategoriesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories and their descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := loadCatalog(cmd.Context(), root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if root.asJSON {
				return writeJSON(cmd.OutOrStdout(), res.Categories)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDESCRIPTION")
			for _, c := range res.Categories {
				fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Description)
			}
			return tw.Flush()
		},
	}
}

// loadCatalog reads configuration and runs the loader once. The advisory,
// if any, goes to errOut.
func loadCatalog(ctx context.Context, root *rootOptions, errOut io.Writer) (sheets.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return sheets.Result{}, err
	}

	log := logger.Nop()
	if root.verbose {
		if err := logger.InitWithWriter(errOut); err != nil {
			return sheets.Result{}, err
		}
		_ = logger.SetLevelString(cfg.LogLevel)
		log = logger.Named("shelfctl")
	}

	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	loader := sheets.NewLoader(
		sheets.WithURLs(cfg.GamesCSVURL, cfg.CategoriesCSVURL),
		sheets.WithFetcher(sheets.NewClient(sheets.WithRate(cfg.FetchRatePerSec))),
		sheets.WithLogger(log),
	)
	res := loader.Load(ctx)
	if res.Advisory != "" {
		fmt.Fprintln(errOut, "note:", res.Advisory)
	}
	return res, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeGames(w io.Writer, games []model.Game) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPLAYERS\tMINUTES\tCOOP\tCATEGORIES")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%d-%d\t%d\t%t\t%s\n",
			g.Name, g.MinPlayers, g.MaxPlayers, g.PlaytimeMinutes, g.Coop, strings.Join(g.Category, ", "))
	}
	fmt.Fprintf(tw, "\n%d game(s)\n", len(games))
	return tw.Flush()
}
