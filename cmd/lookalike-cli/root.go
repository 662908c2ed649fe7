package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	app "github.com/okian/lookalike/internal/app"
	"github.com/okian/lookalike/internal/config"
	"github.com/okian/lookalike/pkg/logger"
)

var errNoDataset = errors.New("no dataset: pass --dataset or set LOOKALIKE_DATASET_PATH")

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	dataset  string
	index    string
	seed     uint64
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "lookalike-cli",
		Short: "Find players similar to a target player",
		Long: `lookalike-cli loads a player dataset from CSV and ranks the players
most similar to a target by their skill attributes.

Defaults come from the same configuration as the server: an optional YAML
file named by LOOKALIKE_CONFIG and LOOKALIKE_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.dataset, "dataset", "d", "", "Path to the players CSV (defaults to dataset_path)")
	flags.StringVar(&opts.index, "index", "", "Index kind: forest or exact (defaults to index_kind)")
	flags.Uint64Var(&opts.seed, "seed", 0, "Forest seed (defaults to index_seed)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(newSimilarCmd(opts), newLeaguesCmd(opts))
	return root
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(o.logLevel); err != nil {
		return err
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if o.dataset != "" {
		cfg.DatasetPath = o.dataset
	}
	if o.index != "" {
		cfg.IndexKind = o.index
	}
	if cmd.Flags().Changed("seed") {
		cfg.IndexSeed = o.seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DatasetPath == "" {
		return errNoDataset
	}
	o.cfg = cfg
	return nil
}

// service builds a service over the configured dataset.
func (o *rootOptions) service(ctx context.Context) (*app.Service, error) {
	cfg := o.cfg
	svc := app.New(
		app.WithLogger(logger.Named("cli")),
		app.WithIndexKind(cfg.IndexKind),
		app.WithTrees(cfg.IndexTrees),
		app.WithLeafSize(cfg.IndexLeafSize),
		app.WithSearchK(cfg.IndexSearchK),
		app.WithSeed(cfg.IndexSeed),
		app.WithExactThreshold(cfg.IndexExactThreshold),
		app.WithWorkers(cfg.BuildWorkers),
		app.WithMaxK(cfg.MaxK),
		app.WithCacheSize(0),
	)
	if err := svc.LoadFile(ctx, cfg.DatasetPath); err != nil {
		return nil, err
	}
	return svc, nil
}
