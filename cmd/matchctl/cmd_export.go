package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/export"
)

type exportOptions struct {
	near     string
	category string
	output   string
	timeout  time.Duration
}

func newExportCmd() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export <worker|architect|merchant>",
		Short: "Writes candidates of a kind to an .xlsx workbook",
		Long: `
Without --near every normalized candidate of the kind is exported. With --near
only the candidates matched around that location are exported, with distances.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}
			return exportKind(cmd.Context(), kind, opts)
		},
	}
	cmd.Flags().StringVar(&opts.near, "near", "", "only export candidates near this location")
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "service category to match with --near")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <kind>s.xlsx)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall export timeout")
	return cmd
}

func init() {
	rootCmd.AddCommand(newExportCmd())
}

func exportKind(ctx context.Context, kind domain.Kind, opts exportOptions) error {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	svc, err := services(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	var candidates []domain.Candidate
	if opts.near != "" {
		candidates, err = svc.Matches.Nearby(ctx, domain.Query{Kind: kind, Location: opts.near, Category: opts.category})
		if err != nil {
			return err
		}
	} else {
		candidates = svc.Candidates.Fetch(ctx, kind)
	}

	path := opts.output
	if path == "" {
		path = kind.Plural() + ".xlsx"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCandidates(f, kind.Plural(), candidates); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Exported %d %s to %s\n", len(candidates), kind.Plural(), path)
	return nil
}
