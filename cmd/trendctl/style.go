package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/EmpoweredVote/LSG-Trends/internal/config"
	"github.com/EmpoweredVote/LSG-Trends/internal/geo"
	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/view"
	"github.com/spf13/cobra"
)

var (
	styleTrendCSV string
	styleState    string
	styleDistrict string
	styleTab      string
	styleHideMuni bool
	styleHideCorp bool
	styleOut      string
)

var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Colour a state or district boundary file by leading front",
	Example: `  trendctl style --tab grama
  trendctl style --district Kollam --tab block --hide-muni -o kollam.geojson`,
	Args: cobra.NoArgs,
	RunE: runStyle,
}

func init() {
	styleCmd.Flags().StringVar(&styleTrendCSV, "trends", "", "Detailed trend CSV (default $TREND_CSV or <data-dir>/csv/trend_detailed.csv)")
	styleCmd.Flags().StringVar(&styleState, "state", envOr("STATE_NAME", config.DefaultState), "State directory under topojson/")
	styleCmd.Flags().StringVar(&styleDistrict, "district", "", "District map instead of the state map")
	styleCmd.Flags().StringVar(&styleTab, "tab", string(view.TabDistrict), "Tier tab: district, block or grama")
	styleCmd.Flags().BoolVar(&styleHideMuni, "hide-muni", false, "Drop municipality features")
	styleCmd.Flags().BoolVar(&styleHideCorp, "hide-corp", false, "Drop corporation features")
	styleCmd.Flags().StringVarP(&styleOut, "out", "o", "", "Output GeoJSON (default stdout)")
}

func runStyle(cmd *cobra.Command, args []string) error {
	tab, err := view.ParseTab(styleTab)
	if err != nil {
		return err
	}
	var mode view.Mode = view.StateView{Tab: tab}
	if styleDistrict != "" {
		mode = view.DistrictView{District: domain.Districts().Canonical(styleDistrict), Tab: tab}
	}
	if styleTrendCSV == "" {
		styleTrendCSV = defaultTrendCSV()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	d, err := derive(ctx, reg, styleTrendCSV)
	if err != nil {
		return err
	}

	fc, err := geo.Load(ctx, geo.FileSource{Root: dataDir, State: styleState}, mode)
	if err != nil {
		return err
	}
	vis := geo.Visibility{ShowMunicipalities: !styleHideMuni, ShowCorporations: !styleHideCorp}
	styled := domain.Joiner().JoinAndStyle(fc, d.Summaries, vis)
	logger.GeoJoin(mode.Key(), styled.Matched, styled.Unmatched, styled.Dropped)

	out := cmd.OutOrStdout()
	if styleOut != "" {
		f, err := os.Create(styleOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := json.NewEncoder(out).Encode(styled.Features); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "matched=%d unmatched=%d dropped=%d hidden=%d\n",
		styled.Matched, styled.Unmatched, styled.Dropped, styled.Hidden)
	return nil
}
