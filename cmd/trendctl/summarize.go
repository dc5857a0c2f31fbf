package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/EmpoweredVote/LSG-Trends/internal/rollup"
	"github.com/EmpoweredVote/LSG-Trends/internal/view"
	"github.com/spf13/cobra"
)

var (
	summarizeTrendCSV string
	summarizeDistrict string
	summarizeTab      string
	summarizeJSON     bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Derive local body summaries and tier statistics from a trend CSV",
	Args:  cobra.NoArgs,
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeTrendCSV, "trends", "", "Detailed trend CSV (default $TREND_CSV or <data-dir>/csv/trend_detailed.csv)")
	summarizeCmd.Flags().StringVar(&summarizeDistrict, "district", "", "Limit to one district")
	summarizeCmd.Flags().StringVar(&summarizeTab, "tab", string(view.TabDistrict), "Tier tab ordering: district, block or grama")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "Print summaries as JSON")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	tab, err := view.ParseTab(summarizeTab)
	if err != nil {
		return err
	}
	if summarizeTrendCSV == "" {
		summarizeTrendCSV = defaultTrendCSV()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	d, err := derive(ctx, reg, summarizeTrendCSV)
	if err != nil {
		return err
	}

	summaries := d.Summaries
	stats := d.State
	if summarizeDistrict != "" {
		name := domain.Districts().Canonical(summarizeDistrict)
		ds, ok := d.Districts[name]
		if !ok {
			return fmt.Errorf("unknown district %q", summarizeDistrict)
		}
		summaries = d.InDistrict(reg, name)
		stats = ds
	}

	if summarizeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "snapshot\t%s\n", d.SnapshotID)
	fmt.Fprintf(w, "bodies\t%d\n", len(summaries))
	fmt.Fprintf(w, "wards\t%d\n\n", d.Wards)
	fmt.Fprintln(w, "TIER\tBODIES\tWARDS\tLDF\tUDF\tNDA\tIND\tHUNG\tOTHERS")
	for _, t := range rollup.Ordered(stats, tab) {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			t.Label, t.TotalBodies, t.TotalWards,
			t.BodiesLed["LDF"], t.BodiesLed["UDF"], t.BodiesLed["NDA"], t.BodiesLed["IND"],
			t.BodiesLed["Hung"], t.BodiesLed[rollup.Others],
		)
	}
	return w.Flush()
}
