package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/export"
	"github.com/behonest/leads-cli/internal/pipeline"
	"github.com/behonest/leads-cli/pkg/supabase"
)

var syncIn string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upsert an exported CSV to the downstream store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Supabase.URL == "" || cfg.Supabase.Key == "" {
			return eris.New("supabase url and key are required (LEADS_SUPABASE_URL, LEADS_SUPABASE_KEY)")
		}

		leads, err := export.ReadFile(syncIn)
		if err != nil {
			return eris.Wrapf(err, "read %s", syncIn)
		}

		client := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key,
			supabase.WithTable(cfg.Supabase.Table),
			supabase.WithBatchSize(cfg.Supabase.BatchSize),
		)

		rows := pipeline.LeadRows(leads)
		if err := client.UpsertLeads(cmd.Context(), rows); err != nil {
			return eris.Wrap(err, "upsert leads")
		}

		zap.L().Info("sync complete",
			zap.Int("rows", len(rows)),
			zap.String("table", cfg.Supabase.Table),
		)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncIn, "in", "", "input CSV path (required)")
	_ = syncCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(syncCmd)
}
