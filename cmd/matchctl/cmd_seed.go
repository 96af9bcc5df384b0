package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	natsadapter "github.com/samirrijal/geomatch/internal/adapters/nats"
	"github.com/samirrijal/geomatch/internal/adapters/postgres"
	"github.com/samirrijal/geomatch/internal/adapters/upstream"
	"github.com/samirrijal/geomatch/internal/core/domain"
)

type seedOptions struct {
	kinds   []string
	timeout time.Duration
	dryRun  bool
}

func newSeedCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copies candidates from the upstream REST API into the candidates table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return seed(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.kinds, "kind", "k", nil, "kinds to seed (default all)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall seed timeout")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "fetch and count without writing")
	return cmd
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}

func seed(ctx context.Context, opts seedOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	kinds, err := parseKinds(opts.kinds)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	src := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.TimeoutDuration(), upstream.DefaultEndpoints)

	fetched := make(map[domain.Kind][]domain.CandidateRecord, len(kinds))
	total := 0
	for _, kind := range kinds {
		records, err := src.FetchRecords(ctx, kind)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", kind, err)
		}
		slog.Info("fetched upstream records", "kind", kind, "records", len(records))
		fetched[kind] = records
		total += len(records)
	}

	if opts.dryRun {
		fmt.Printf("%d records fetched, nothing written\n", total)
		return nil
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	repo := postgres.NewCandidateRepo(db)

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Seeding candidates"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, kind := range kinds {
		if err := repo.UpsertBatch(ctx, kind, fetched[kind]); err != nil {
			return fmt.Errorf("upsert %s: %w", kind, err)
		}
		if bar != nil {
			_ = bar.Add(len(fetched[kind]))
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if cfg.NATS.Enabled {
		notifyChanged(ctx, cfg.NATS.URL, kinds)
	}

	fmt.Printf("Seeded %d records across %d kinds.\n", total, len(kinds))
	return nil
}

// notifyChanged tells running API instances to drop their snapshots.
func notifyChanged(ctx context.Context, url string, kinds []domain.Kind) {
	pub, err := natsadapter.NewPublisher(url)
	if err != nil {
		slog.Warn("nats unavailable, snapshots expire on their own", "error", err)
		return
	}
	defer pub.Close()

	for _, kind := range kinds {
		if err := pub.PublishCandidateChanged(ctx, kind); err != nil {
			slog.Warn("publish candidate changed", "kind", kind, "error", err)
		}
	}
}

func parseKinds(names []string) ([]domain.Kind, error) {
	if len(names) == 0 {
		return domain.Kinds, nil
	}
	kinds := make([]domain.Kind, 0, len(names))
	seen := make(map[domain.Kind]bool, len(names))
	for _, n := range names {
		k, err := domain.ParseKind(n)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}
