// Package ibge loads the IBGE municipality gazetteer used as the
// city-to-state region reference.
package ibge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/extract"
	"github.com/behonest/leads-cli/internal/resilience"
)

// Client fetches the municipality gazetteer.
type Client interface {
	// Municipalities returns a map of normalized municipality name to state
	// code, loaded in one bulk request.
	Municipalities(ctx context.Context) (map[string]string, error)
}

// Option configures the IBGE client.
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

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an IBGE localities client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://servicodados.ibge.gov.br/api/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// municipality mirrors the nested IBGE payload down to the state code.
type municipality struct {
	Name        string `json:"nome"`
	Microregion *struct {
		Mesoregion *struct {
			UF *struct {
				Code string `json:"sigla"`
			} `json:"UF"`
		} `json:"mesorregiao"`
	} `json:"microrregiao"`
}

func (m *municipality) stateCode() string {
	if m.Microregion == nil || m.Microregion.Mesoregion == nil || m.Microregion.Mesoregion.UF == nil {
		return ""
	}
	return m.Microregion.Mesoregion.UF.Code
}

func (c *httpClient) Municipalities(ctx context.Context) (map[string]string, error) {
	body, err := resilience.DoVal(ctx, resilience.DefaultPolicy(), func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/localidades/municipios", nil)
		if err != nil {
			return nil, eris.Wrap(err, "ibge: create request")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(
					eris.Errorf("ibge: status %d", resp.StatusCode), resp.StatusCode)
			}
			return nil, eris.Errorf("ibge: status %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}

	var items []municipality
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, eris.Wrap(err, "ibge: unmarshal municipalities")
	}

	gazetteer := make(map[string]string, len(items))
	for _, m := range items {
		uf := m.stateCode()
		if m.Name == "" || uf == "" {
			continue
		}
		gazetteer[extract.Normalize(m.Name)] = uf
	}

	zap.L().Info("ibge: gazetteer loaded", zap.Int("municipalities", len(gazetteer)))
	return gazetteer, nil
}
