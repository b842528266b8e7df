package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/pipeline"
	"github.com/behonest/leads-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trigger API server",
	Long:  "Exposes POST /api/refresh to trigger a pipeline run, GET /api/status for the run state, and GET /api/health.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Sults.Token == "" {
			return eris.New("sults token is required (LEADS_SULTS_TOKEN)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		last, err := st.LastRun(ctx)
		if err != nil {
			zap.L().Warn("serve: could not load last run", zap.Error(err))
		}
		status := pipeline.NewStatus(last)

		p := pipeline.New(cfg, st, initSults(), initIBGE(), initSupabase())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctx, p, st, status, cfg.Server.RunTimeout()),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the trigger API routes. The base context outlives
// individual requests so a triggered run survives its trigger request.
func newRouter(base context.Context, p *pipeline.Pipeline, st store.Store, status *pipeline.Status, runTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, status.Snapshot())
	})

	r.Post("/api/refresh", func(w http.ResponseWriter, req *http.Request) {
		if !status.TryStart() {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": "a refresh is already running",
			})
			return
		}

		go func() {
			runCtx, cancel := context.WithTimeout(base, runTimeout)
			defer cancel()

			result, err := p.Run(runCtx)
			if err != nil {
				zap.L().Error("serve: triggered run failed", zap.Error(err))
			}

			last, lastErr := st.LastRun(runCtx)
			if lastErr != nil {
				zap.L().Warn("serve: could not reload last run", zap.Error(lastErr))
			}
			status.Finish(last)

			if result != nil {
				zap.L().Info("serve: triggered run finished",
					zap.String("run_id", result.RunID),
					zap.Int("exported", result.Summary.Exported),
				)
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
