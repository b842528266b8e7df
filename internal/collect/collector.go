// Package collect walks the CRM listing page by page and enriches each
// accepted deal with its timeline under bounded concurrency.
package collect

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/resilience"
	"github.com/behonest/leads-cli/pkg/sults"
)

// DefaultPageSize is the listing page size.
const DefaultPageSize = 100

// Collector accumulates franchise-funnel deals from the paginated listing.
type Collector struct {
	client   sults.Client
	pageSize int
}

// NewCollector creates a Collector. pageSize <= 0 uses the default.
func NewCollector(client sults.Client, pageSize int) *Collector {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Collector{client: client, pageSize: pageSize}
}

// Collect walks pages sequentially until the source reports no further pages
// or returns an empty one, keeping only deals in the franchise funnel. A
// first page that yields no data ends the run with zero leads; that is a
// legitimate outcome of this source, not an error.
func (c *Collector) Collect(ctx context.Context) ([]sults.Deal, error) {
	var deals []sults.Deal

	for page := 0; ; page++ {
		zap.L().Info("collect: fetching page", zap.Int("page", page))

		resp, err := c.client.ListDeals(ctx, page, c.pageSize)
		if err != nil {
			if errors.Is(err, resilience.ErrNoData) {
				zap.L().Warn("collect: page yielded no data, stopping pagination",
					zap.Int("page", page),
				)
				break
			}
			return deals, err
		}

		if len(resp.Data) == 0 {
			zap.L().Info("collect: empty page, end of pagination", zap.Int("page", page))
			break
		}

		for _, d := range resp.Data {
			if d.ID == 0 {
				// Structural defect: skip the record, keep the run.
				zap.L().Warn("collect: skipping deal without id", zap.String("title", d.Title))
				continue
			}
			if d.InFranchiseFunnel() {
				deals = append(deals, d)
			}
		}

		if page+1 >= resp.TotalPage {
			break
		}
	}

	zap.L().Info("collect: pagination complete", zap.Int("deals", len(deals)))
	return deals, nil
}
