package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report local bodies whose ward count disagrees with their ward rows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		mismatches := reg.ValidateWardCounts()
		if len(mismatches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "ward counts consistent")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LB_CODE\tWARD_COUNT\tWARD_ROWS")
		for _, m := range mismatches {
			fmt.Fprintf(w, "%s\t%d\t%d\n", m.LBCode, m.WardCount, m.WardRows)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return fmt.Errorf("%d local bodies with mismatched ward counts", len(mismatches))
	},
}
