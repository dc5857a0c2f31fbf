package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/EmpoweredVote/LSG-Trends/internal/config"
	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/EmpoweredVote/LSG-Trends/internal/trendfeed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scrapeBaseURL   string
	scrapeOut       string
	scrapeDistricts []string
	scrapeRPS       float64
	scrapeWorkers   int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the live trend feed into a detailed trend CSV",
	Example: `  trendctl scrape --out public/data/csv/trend_detailed.csv
  trendctl scrape --district D02001 --district D03001`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeBaseURL, "base-url", envOr("FEED_BASE_URL", config.DefaultFeedBaseURL), "Trend feed host")
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "", "Output CSV (default stdout)")
	scrapeCmd.Flags().StringSliceVar(&scrapeDistricts, "district", nil, "District code to scrape (repeatable, default all)")
	scrapeCmd.Flags().Float64Var(&scrapeRPS, "rps", 20, "Feed requests per second")
	scrapeCmd.Flags().IntVar(&scrapeWorkers, "workers", 5, "Local bodies scraped in parallel")
}

func runScrape(cmd *cobra.Command, args []string) error {
	districts, err := selectDistricts(scrapeDistricts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := trendfeed.NewClient(scrapeBaseURL,
		trendfeed.WithRateLimit(scrapeRPS, 5),
		trendfeed.WithWorkers(scrapeWorkers),
	)
	defer client.Close()

	rows, err := client.Scrape(ctx, districts)
	if err != nil {
		return err
	}
	logger.L().Info("scrape complete", zap.Int("districts", len(districts)), zap.Int("rows", len(rows)))

	var w io.Writer = cmd.OutOrStdout()
	if scrapeOut != "" {
		f, err := os.Create(scrapeOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return results.WriteTrendCSV(w, rows)
}

func selectDistricts(codes []string) ([]trendfeed.District, error) {
	if len(codes) == 0 {
		return trendfeed.Districts, nil
	}
	var out []trendfeed.District
	for _, code := range codes {
		i := slices.IndexFunc(trendfeed.Districts, func(d trendfeed.District) bool { return d.Code == code })
		if i < 0 {
			return nil, fmt.Errorf("unknown district code %q", code)
		}
		out = append(out, trendfeed.Districts[i])
	}
	return out, nil
}
