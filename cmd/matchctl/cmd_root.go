package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geomatch/internal/bootstrap"
	"github.com/samirrijal/geomatch/internal/pkg/config"
	"github.com/samirrijal/geomatch/internal/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "operate the geomatch candidate store and query it from the shell",
	Long: `
matchctl seeds the candidate database from the upstream REST API, exports
candidate lists as spreadsheets and runs nearby, geocode and navigation
queries with the same configuration as the API server.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads GEOMATCH_* settings and routes logs to stderr so stdout stays parseable.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load("geomatch-matchctl")
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text"))
	return cfg, nil
}

// services wires the full query stack; the maps key is required.
func services(ctx context.Context) (*bootstrap.Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateMaps(); err != nil {
		return nil, err
	}
	return bootstrap.Build(ctx, cfg)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
