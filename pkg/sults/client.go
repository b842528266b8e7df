// Package sults provides a client for the Sults CRM expansion API.
package sults

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/behonest/leads-cli/internal/resilience"
)

// Client defines the Sults expansion API operations used by the pipeline.
type Client interface {
	// ListDeals fetches one page of the deal listing. start is a zero-based
	// page index.
	ListDeals(ctx context.Context, start, limit int) (*DealPage, error)

	// Timeline fetches the chronological item array for a deal.
	Timeline(ctx context.Context, dealID int64) ([]TimelineItem, error)
}

// Option configures the Sults client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) {
		c.policy = p
	}
}

// WithRateLimit replaces the request rate limiter.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = limiter
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	policy  resilience.Policy
	limiter *rate.Limiter
}

// NewClient creates a Sults API client. The token is sent verbatim in the
// Authorization header on every request.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.sults.com.br/api/v1/expansao",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		policy:  resilience.DefaultPolicy(),
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs one GET with the fetch policy: 200 returns the body, 429
// backs off exponentially, 5xx and transport errors back off flat, any other
// 4xx fails without retry. Exhausted retries surface as resilience.ErrNoData.
func (c *httpClient) get(ctx context.Context, url string) ([]byte, error) {
	return resilience.DoVal(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrap(err, "sults: create request")
		}
		req.Header.Set("Authorization", c.token)
		req.Header.Set("Content-Type", "application/json;charset=UTF-8")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, resilience.NewTransientError(readErr, resp.StatusCode)
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &resilience.ThrottleError{URL: url}
		case resp.StatusCode >= 500:
			return nil, resilience.NewTransientError(
				eris.Errorf("sults: status %d from %s", resp.StatusCode, url),
				resp.StatusCode,
			)
		default:
			// Other 4xx: retrying will not help.
			return nil, eris.Errorf("sults: status %d from %s", resp.StatusCode, url)
		}
	})
}

func (c *httpClient) ListDeals(ctx context.Context, start, limit int) (*DealPage, error) {
	url := fmt.Sprintf("%s/negocio?start=%d&limit=%d", c.baseURL, start, limit)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	// The API intermittently answers 200 with an empty or truncated body.
	// That is an end-of-data signal, not a fatal condition.
	var page DealPage
	if err := json.Unmarshal(body, &page); err != nil {
		zap.L().Warn("sults: unparseable deal page body, treating as no data",
			zap.Int("start", start),
			zap.Error(err),
		)
		return nil, resilience.ErrNoData
	}

	return &page, nil
}

func (c *httpClient) Timeline(ctx context.Context, dealID int64) ([]TimelineItem, error) {
	url := c.baseURL + "/negocio/" + strconv.FormatInt(dealID, 10) + "/timeline"

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp timelineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		zap.L().Warn("sults: unparseable timeline body, treating as no data",
			zap.Int64("deal_id", dealID),
			zap.Error(err),
		)
		return nil, resilience.ErrNoData
	}

	return resp.Data, nil
}
