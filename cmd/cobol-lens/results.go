// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cobol-lens/internal/results"
)

var resultsCmd = &cobra.Command{
	Use:   "results <conversion-id>...",
	Short: "Fetch finished conversions and write them to disk",
	Long: `Results downloads each conversion from the backend and writes pseudocode.md,
explanation.md, the flowchart, and a result.yaml summary under
<results-dir>/<conversion-id>/. Conversions already on disk are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		batch := results.ExportBatch(cmd.Context(), a.client, args, a.cfg.ResultsDir, cmd.OutOrStdout())
		if batch.HasFailures() {
			return fmt.Errorf("%d of %d conversions failed", batch.Failed, batch.Total())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}
