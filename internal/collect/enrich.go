package collect

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/behonest/leads-cli/internal/extract"
	"github.com/behonest/leads-cli/internal/model"
	"github.com/behonest/leads-cli/internal/resilience"
	"github.com/behonest/leads-cli/pkg/sults"
)

// DefaultMaxInFlight caps simultaneous timeline fetches.
const DefaultMaxInFlight = 10

// Enricher performs the per-deal detail fetch (the N+1 pattern) and maps
// deals to leads.
type Enricher struct {
	client    sults.Client
	gazetteer map[string]string
	limit     int
}

// NewEnricher creates an Enricher over the given gazetteer. limit <= 0 uses
// the default in-flight cap.
func NewEnricher(client sults.Client, gazetteer map[string]string, limit int) *Enricher {
	if limit <= 0 {
		limit = DefaultMaxInFlight
	}
	return &Enricher{client: client, gazetteer: gazetteer, limit: limit}
}

// Enrich fetches every deal's timeline concurrently, bounded by the
// in-flight cap, and builds the lead records. Results land in a positional
// slice so collection order survives arbitrary completion order; correlation
// is by deal, never by arrival. A timeline fetch that degrades to no data
// leaves the investment at zero; the lead still advances.
func (e *Enricher) Enrich(ctx context.Context, deals []sults.Deal) ([]model.Lead, error) {
	leads := make([]model.Lead, len(deals))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i := range deals {
		g.Go(func() error {
			deal := &deals[i]
			lead := buildLead(deal)

			items, err := e.client.Timeline(gCtx, deal.ID)
			if err != nil {
				if !errors.Is(err, resilience.ErrNoData) {
					return err
				}
				zap.L().Warn("enrich: timeline unavailable, investment unknown",
					zap.Int64("deal_id", deal.ID),
				)
			}

			var payloads []string
			for j := range items {
				payloads = append(payloads, items[j].HTMLPayloads()...)
			}
			lead.Investment = extract.InvestmentFromHTML(payloads)

			lead.City, lead.State = extract.ResolveLocation(deal.City, deal.State, deal.Title, e.gazetteer)

			leads[i] = lead
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return leads, nil
}

// buildLead maps the static deal fields onto a lead.
func buildLead(d *sults.Deal) model.Lead {
	contact := d.PrimaryContact()

	var tags []string
	for _, t := range d.Tags {
		tags = append(tags, t.Name)
	}

	return model.Lead{
		ID:         d.ID,
		CreatedAt:  parseCreatedAt(d.CreatedAt),
		Title:      d.Title,
		Name:       contact.Name,
		Email:      contact.Email,
		Phone:      contact.Phone,
		Origin:     d.OriginName(),
		Tags:       strings.Join(tags, ", "),
		Stage:      d.SituationName(),
		LossReason: d.LossReasonText(),
	}
}

// parseCreatedAt keeps the date part of the CRM's ISO timestamp. Anything
// unparseable yields the zero time.
func parseCreatedAt(s string) time.Time {
	datePart, _, _ := strings.Cut(s, "T")
	t, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return time.Time{}
	}
	return t
}
