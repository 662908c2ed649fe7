package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "github.com/okian/lookalike/internal/app"
	"github.com/okian/lookalike/internal/domain/types"
)

type similarOptions struct {
	maxAge   int
	leagues  []string
	maxValue float64
	maxWage  float64
	k        int
	json     bool
}

func newSimilarCmd(root *rootOptions) *cobra.Command {
	opts := &similarOptions{}

	cmd := &cobra.Command{
		Use:   "similar <player>",
		Short: "Rank the players most similar to a target",
		Long: `Rank the players most similar to a target among those that share one of
its positions and fit the age, league, value and wage limits.

Examples:
  lookalike-cli similar "Pedri" -k 10
  lookalike-cli similar "Jadon Sancho" --league All --max-value 50000000
  lookalike-cli similar "Dani Olmo" --json | jq '.matches[].player.name'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := opts.query(cmd, root)
			svc, err := root.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Similar(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeTable(cmd.OutOrStdout(), res)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.maxAge, "max-age", 0, "Maximum candidate age (defaults to default_max_age)")
	flags.StringSliceVar(&opts.leagues, "league", nil, `Accepted league, repeatable; "All" disables the filter (defaults to default_leagues)`)
	flags.Float64Var(&opts.maxValue, "max-value", 0, "Maximum transfer value in EUR (defaults to default_max_value)")
	flags.Float64Var(&opts.maxWage, "max-wage", 0, "Maximum weekly wage in EUR (defaults to default_max_wage)")
	flags.IntVarP(&opts.k, "k", "k", 0, "Number of players to return (defaults to default_k)")
	flags.BoolVar(&opts.json, "json", false, "Output results as JSON")
	return cmd
}

// query merges explicitly set flags over the configured defaults.
func (o *similarOptions) query(cmd *cobra.Command, root *rootOptions) app.Query {
	cfg := root.cfg
	q := app.Query{
		MaxAge:   cfg.DefaultMaxAge,
		Leagues:  cfg.DefaultLeagues,
		MaxValue: cfg.DefaultMaxValue,
		MaxWage:  cfg.DefaultMaxWage,
		K:        cfg.DefaultK,
	}
	flags := cmd.Flags()
	if flags.Changed("max-age") {
		q.MaxAge = o.maxAge
	}
	if flags.Changed("league") {
		q.Leagues = o.leagues
	}
	if flags.Changed("max-value") {
		q.MaxValue = o.maxValue
	}
	if flags.Changed("max-wage") {
		q.MaxWage = o.maxWage
	}
	if flags.Changed("k") {
		q.K = o.k
	}
	return q
}

func writeJSON(w io.Writer, res app.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(types.SimilarResponse{
		Target:  types.NewPlayerView(res.Target, false),
		Matches: types.NewMatches(res.Matches, res.Distances),
	})
}

func writeTable(w io.Writer, res app.Result) error {
	t := res.Target
	fmt.Fprintf(w, "Target: %s (%d, %s, %s)\n\n", t.Name, t.Age, t.League, positions(types.NewPlayerView(t, false)))
	if len(res.Matches) == 0 {
		fmt.Fprintln(w, "No players match the given constraints.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tAGE\tLEAGUE\tPOSITIONS\tVALUE\tWAGE\tCONTRACT\tDISTANCE")
	for _, m := range types.NewMatches(res.Matches, res.Distances) {
		p := m.Player
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%.2f\n",
			m.Rank, p.Name, p.Age, p.League, positions(p), formatMoney(p.Value), formatMoney(p.Wage), p.Contract, m.Distance)
	}
	return tw.Flush()
}

func positions(v types.PlayerView) string {
	return strings.Join(v.Positions, ",")
}

// formatMoney renders EUR amounts the way player sites show them: €7.5M, €50K.
func formatMoney(v float64) string {
	switch {
	case v >= 1_000_000:
		return "€" + trimFloat(v/1_000_000) + "M"
	case v >= 1_000:
		return "€" + trimFloat(v/1_000) + "K"
	default:
		return "€" + trimFloat(v)
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
