// Command trendctl runs the trend pipeline from the command line: scrape the
// live feed to CSV, summarise a CSV snapshot, or style a boundary file.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/config"
	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/EmpoweredVote/LSG-Trends/internal/trends"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	timeout    time.Duration
	dataDir    string
	configFile string
	domain     config.Domain
)

var rootCmd = &cobra.Command{
	Use:   "trendctl",
	Short: "Kerala local body election trend tools",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		if err := logger.Setup(level, "console"); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		d, err := config.LoadFile(configFile)
		if err != nil {
			return err
		}
		domain = d
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load(".env.local")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", envOr("DATA_DIR", config.DefaultDataDir), "Root of csv/, topojson/ and geojson/")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"), "YAML domain tables")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(styleCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadRegistry() (*registry.Registry, error) {
	return registry.LoadDir(filepath.Join(dataDir, "csv"))
}

// derive runs one derivation over a trend CSV.
func derive(ctx context.Context, reg *registry.Registry, trendCSV string) (*trends.Derivation, error) {
	rows, err := trends.FileTrendSource{Path: trendCSV}.Rows(ctx)
	if err != nil {
		return nil, err
	}
	id, err := trends.SnapshotID(rows)
	if err != nil {
		return nil, err
	}
	return trends.Derive(ctx, reg, results.BuildSnapshot(rows, domain.Classifier()), id, time.Now())
}

func defaultTrendCSV() string {
	return envOr("TREND_CSV", filepath.Join(dataDir, "csv", "trend_detailed.csv"))
}
