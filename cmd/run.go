package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/pipeline"
	"github.com/behonest/leads-cli/internal/resilience"
	"github.com/behonest/leads-cli/pkg/ibge"
	"github.com/behonest/leads-cli/pkg/sults"
	"github.com/behonest/leads-cli/pkg/supabase"
)

var (
	runOut     string
	runTimeout time.Duration
	runNoSync  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full acquisition pipeline once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runTimeout)
			defer cancel()
		}

		if cfg.Sults.Token == "" {
			return eris.New("sults token is required (LEADS_SULTS_TOKEN)")
		}
		if runOut != "" {
			cfg.Export.Path = runOut
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		p := pipeline.New(cfg, st, initSults(), initIBGE(), initSupabase())

		result, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
			zap.String("run_id", result.RunID),
			zap.Int("exported", result.Summary.Exported),
			zap.String("output", result.OutputPath),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func initSults() sults.Client {
	policy := resilience.Policy{
		MaxAttempts: cfg.Sults.MaxRetries,
		BaseDelay:   cfg.Sults.RetryDelay(),
		OnRetry:     resilience.RetryLogger("sults", "request"),
	}
	return sults.NewClient(cfg.Sults.Token,
		sults.WithBaseURL(cfg.Sults.BaseURL),
		sults.WithRetryPolicy(policy),
	)
}

func initIBGE() ibge.Client {
	return ibge.NewClient(ibge.WithBaseURL(cfg.IBGE.BaseURL))
}

// initSupabase returns nil when the downstream store is not configured or
// sync is disabled; the pipeline skips the sync stage for a nil client.
func initSupabase() supabase.Client {
	if runNoSync || cfg.Supabase.URL == "" || cfg.Supabase.Key == "" {
		return nil
	}
	return supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key,
		supabase.WithTable(cfg.Supabase.Table),
		supabase.WithBatchSize(cfg.Supabase.BatchSize),
	)
}

func init() {
	runCmd.Flags().StringVar(&runOut, "out", "", "CSV output path (default from config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort the run after this duration (0 = no limit)")
	runCmd.Flags().BoolVar(&runNoSync, "no-sync", false, "skip the downstream sync stage")
	rootCmd.AddCommand(runCmd)
}
