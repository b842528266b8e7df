// Package pipeline orchestrates the lead acquisition run: collect from the
// CRM, filter, enrich, dedup, score, export to CSV, and sync downstream.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/collect"
	"github.com/behonest/leads-cli/internal/config"
	"github.com/behonest/leads-cli/internal/export"
	"github.com/behonest/leads-cli/internal/filter"
	"github.com/behonest/leads-cli/internal/model"
	"github.com/behonest/leads-cli/internal/score"
	"github.com/behonest/leads-cli/internal/store"
	"github.com/behonest/leads-cli/pkg/ibge"
	"github.com/behonest/leads-cli/pkg/sults"
	"github.com/behonest/leads-cli/pkg/supabase"
)

// Result summarizes a completed run.
type Result struct {
	RunID      string           `json:"run_id"`
	Summary    model.RunSummary `json:"summary"`
	OutputPath string           `json:"output_path"`
	Duration   time.Duration    `json:"duration_ms"`
}

// Pipeline runs the full acquisition flow end to end.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	sults    sults.Client
	ibge     ibge.Client
	supabase supabase.Client
}

// New creates a Pipeline. The Supabase client may be nil, in which case the
// sync stage is skipped.
func New(cfg *config.Config, st store.Store, sultsClient sults.Client, ibgeClient ibge.Client, sbClient supabase.Client) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		sults:    sultsClient,
		ibge:     ibgeClient,
		supabase: sbClient,
	}
}

// Run executes one full acquisition run and records it in the store. Stages
// run strictly in order; any stage error aborts the run and marks it failed.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := zap.L()
	log.Info("pipeline: starting run")

	run, err := p.store.CreateRun(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	result := &Result{RunID: run.ID, OutputPath: p.cfg.Export.Path}

	summary, runErr := p.execute(ctx, result)
	result.Summary = summary
	result.Duration = time.Since(start)

	success := runErr == nil
	message := fmt.Sprintf("exported %d leads", summary.Exported)
	if runErr != nil {
		message = runErr.Error()
	}
	if err := p.store.CompleteRun(ctx, run.ID, success, message, summary); err != nil {
		log.Warn("pipeline: failed to record run outcome", zap.Error(err))
	}

	if runErr != nil {
		log.Error("pipeline: run failed",
			zap.String("run_id", run.ID),
			zap.Duration("duration", result.Duration),
			zap.Error(runErr),
		)
		return result, runErr
	}

	log.Info("pipeline: run complete",
		zap.String("run_id", run.ID),
		zap.Int("collected", summary.Collected),
		zap.Int("exported", summary.Exported),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, result *Result) (model.RunSummary, error) {
	var summary model.RunSummary

	// Stage 1: gazetteer. The run proceeds without it; location resolution
	// then falls back to title scanning and the alias tables.
	gazetteer := p.loadGazetteer(ctx)

	// Stage 2: collect deals from the CRM listing.
	deals, err := p.stageDeals(ctx)
	if err != nil {
		return summary, err
	}
	summary.Collected = len(deals)

	// Stage 3: pre-filter before the expensive per-deal fetches.
	deals = p.stagePreFilter(deals)
	summary.Filtered = len(deals)

	// Stage 4: enrich with timelines, investment, location.
	leads, err := p.stageEnrich(ctx, deals, gazetteer)
	if err != nil {
		return summary, err
	}
	summary.Enriched = len(leads)

	// Stage 5: post-filter, dedup, origin normalization.
	leads = p.stageClean(leads)
	summary.Deduped = len(leads)

	// Stage 6: score.
	score.Apply(leads, time.Now())

	// Stage 7: export CSV.
	if err := p.stageExport(leads); err != nil {
		return summary, err
	}
	summary.Exported = len(leads)

	// Stage 8: downstream sync.
	synced, err := p.stageSync(ctx, leads)
	if err != nil {
		return summary, err
	}
	summary.Synced = synced

	return summary, nil
}

func (p *Pipeline) loadGazetteer(ctx context.Context) map[string]string {
	if p.ibge == nil {
		return nil
	}
	start := time.Now()
	gazetteer, err := p.ibge.Municipalities(ctx)
	if err != nil {
		zap.L().Warn("pipeline: gazetteer unavailable, continuing without it", zap.Error(err))
		return nil
	}
	zap.L().Info("pipeline: gazetteer stage complete",
		zap.Int("municipalities", len(gazetteer)),
		zap.Duration("duration", time.Since(start)),
	)
	return gazetteer
}

func (p *Pipeline) stageDeals(ctx context.Context) ([]sults.Deal, error) {
	start := time.Now()
	collector := collect.NewCollector(p.sults, p.cfg.Sults.PageSize)
	deals, err := collector.Collect(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: collect")
	}
	zap.L().Info("pipeline: collect stage complete",
		zap.Int("deals", len(deals)),
		zap.Duration("duration", time.Since(start)),
	)
	return deals, nil
}

func (p *Pipeline) stagePreFilter(deals []sults.Deal) []sults.Deal {
	kept := deals[:0]
	for i := range deals {
		if !filter.ExcludeDeal(&deals[i]) {
			kept = append(kept, deals[i])
		}
	}
	zap.L().Info("pipeline: pre-filter stage complete",
		zap.Int("kept", len(kept)),
		zap.Int("dropped", len(deals)-len(kept)),
	)
	return kept
}

func (p *Pipeline) stageEnrich(ctx context.Context, deals []sults.Deal, gazetteer map[string]string) ([]model.Lead, error) {
	start := time.Now()
	enricher := collect.NewEnricher(p.sults, gazetteer, p.cfg.Sults.MaxConcurrent)
	leads, err := enricher.Enrich(ctx, deals)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: enrich")
	}
	zap.L().Info("pipeline: enrich stage complete",
		zap.Int("leads", len(leads)),
		zap.Duration("duration", time.Since(start)),
	)
	return leads, nil
}

func (p *Pipeline) stageClean(leads []model.Lead) []model.Lead {
	kept := leads[:0]
	for i := range leads {
		if filter.ExcludeLossReason(leads[i].LossReason) {
			continue
		}
		leads[i].Origin = filter.NormalizeOrigin(leads[i].Origin)
		kept = append(kept, leads[i])
	}

	deduped := filter.DedupByPhone(kept)
	zap.L().Info("pipeline: clean stage complete",
		zap.Int("kept", len(deduped)),
		zap.Int("dropped", len(leads)-len(deduped)),
	)
	return deduped
}

func (p *Pipeline) stageExport(leads []model.Lead) error {
	if err := export.WriteFile(p.cfg.Export.Path, leads); err != nil {
		return eris.Wrap(err, "pipeline: export")
	}
	zap.L().Info("pipeline: export stage complete",
		zap.String("path", p.cfg.Export.Path),
		zap.Int("leads", len(leads)),
	)
	return nil
}

func (p *Pipeline) stageSync(ctx context.Context, leads []model.Lead) (int, error) {
	if p.supabase == nil {
		zap.L().Info("pipeline: sync stage skipped, no downstream configured")
		return 0, nil
	}

	start := time.Now()
	rows := LeadRows(leads)
	if err := p.supabase.UpsertLeads(ctx, rows); err != nil {
		return 0, eris.Wrap(err, "pipeline: sync")
	}
	zap.L().Info("pipeline: sync stage complete",
		zap.Int("rows", len(rows)),
		zap.Duration("duration", time.Since(start)),
	)
	return len(rows), nil
}

// LeadRows converts scored leads to downstream rows, guarding numeric fields
// against NaN and Inf.
func LeadRows(leads []model.Lead) []supabase.LeadRow {
	rows := make([]supabase.LeadRow, 0, len(leads))
	for i := range leads {
		l := &leads[i]

		var created string
		if l.HasCreatedAt() {
			created = l.CreatedAt.Format("2006-01-02")
		}

		rows = append(rows, supabase.LeadRow{
			ID:              l.ID,
			CreatedAt:       created,
			Title:           l.Title,
			Name:            l.Name,
			Email:           l.Email,
			Phone:           l.Phone,
			Origin:          l.Origin,
			City:            l.City,
			State:           l.State,
			Tags:            l.Tags,
			Situation:       l.Stage,
			LossReason:      l.LossReason,
			Investment:      supabase.Num(l.Investment),
			LocationIndex:   supabase.Num(l.LocationIndex),
			InvestmentIndex: supabase.Num(l.InvestmentIndex),
			RecencyIndex:    supabase.Num(l.RecencyIndex),
			Score:           supabase.Num(l.Score),
			Tier:            l.Tier,
		})
	}
	return rows
}
