// Package supabase pushes the scored lead set to the Supabase PostgREST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/resilience"
)

// DefaultBatchSize is how many rows go into one upsert request.
const DefaultBatchSize = 100

// LeadRow is one row of the downstream leads table. Numeric fields are
// pointers so absent values serialize as explicit JSON null; NaN or Inf must
// never reach the wire.
type LeadRow struct {
	ID              int64    `json:"id"`
	CreatedAt       string   `json:"data_criacao"`
	Title           string   `json:"titulo"`
	Name            string   `json:"nome"`
	Email           string   `json:"email"`
	Phone           string   `json:"celular"`
	Origin          string   `json:"origem"`
	City            string   `json:"cidade"`
	State           string   `json:"estado"`
	Tags            string   `json:"etiquetas"`
	Situation       string   `json:"situacao"`
	LossReason      string   `json:"motivo_perda"`
	Investment      *float64 `json:"valor_disponivel_para_investimento"`
	LocationIndex   *float64 `json:"localizacao_index"`
	InvestmentIndex *float64 `json:"investimento_index"`
	RecencyIndex    *float64 `json:"tempo_index"`
	Score           *float64 `json:"score_index"`
	Tier            string   `json:"classificacao_index"`
}

// Num converts a float to a nullable JSON number, mapping NaN and Inf to
// null.
func Num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Client upserts lead rows into the downstream store.
type Client interface {
	// UpsertLeads writes the rows in batches, keyed by lead id.
	UpsertLeads(ctx context.Context, rows []LeadRow) error
}

// Option configures the Supabase client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithBatchSize overrides the upsert batch size.
func WithBatchSize(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithTable overrides the destination table name.
func WithTable(table string) Option {
	return func(c *httpClient) {
		c.table = table
	}
}

type httpClient struct {
	baseURL   string
	key       string
	table     string
	batchSize int
	http      *http.Client
}

// NewClient creates a Supabase REST client for the given project URL and
// service key.
func NewClient(baseURL, key string, opts ...Option) Client {
	c := &httpClient{
		baseURL:   baseURL,
		key:       key,
		table:     "leads",
		batchSize: DefaultBatchSize,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) UpsertLeads(ctx context.Context, rows []LeadRow) error {
	for start := 0; start < len(rows); start += c.batchSize {
		end := min(start+c.batchSize, len(rows))
		if err := c.upsertBatch(ctx, rows[start:end]); err != nil {
			return eris.Wrapf(err, "supabase: upsert batch at offset %d", start)
		}
		zap.L().Debug("supabase: batch upserted",
			zap.Int("offset", start),
			zap.Int("rows", end-start),
		)
	}
	return nil
}

func (c *httpClient) upsertBatch(ctx context.Context, batch []LeadRow) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return eris.Wrap(err, "marshal rows")
	}

	url := c.baseURL + "/rest/v1/" + c.table

	return resilience.Do(ctx, resilience.DefaultPolicy(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return eris.Wrap(err, "create request")
		}
		req.Header.Set("apikey", c.key)
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "resolution=merge-duplicates")

		resp, err := c.http.Do(req)
		if err != nil {
			return resilience.NewTransientError(err, 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return resilience.NewTransientError(
					eris.Errorf("status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
			}
			return eris.Errorf("status %d: %s", resp.StatusCode, string(body))
		}

		return nil
	})
}
