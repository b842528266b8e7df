package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/export"
	"github.com/behonest/leads-cli/internal/score"
)

var (
	scoreIn  string
	scoreOut string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute scores for an exported CSV without refetching",
	RunE: func(cmd *cobra.Command, args []string) error {
		leads, err := export.ReadFile(scoreIn)
		if err != nil {
			return eris.Wrapf(err, "read %s", scoreIn)
		}

		score.Apply(leads, time.Now())

		out := scoreOut
		if out == "" {
			out = scoreIn
		}
		if err := export.WriteFile(out, leads); err != nil {
			return eris.Wrapf(err, "write %s", out)
		}

		zap.L().Info("rescore complete",
			zap.Int("leads", len(leads)),
			zap.String("output", out),
		)
		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreIn, "in", "", "input CSV path (required)")
	scoreCmd.Flags().StringVar(&scoreOut, "out", "", "output CSV path (default: overwrite input)")
	_ = scoreCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(scoreCmd)
}
