package sults

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behonest/leads-cli/internal/resilience"
)

func fastPolicy() resilience.Policy {
	return resilience.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestListDeals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/negocio", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "secret-token", r.Header.Get("Authorization"))

		w.Write([]byte(`{
			"data": [
				{"id": 1, "titulo": "Franquia BH", "cidade": "Belo Horizonte", "uf": "MG",
				 "contatoPessoa": [{"nome": "Maria", "email": "m@x.com", "phone": "31999990001"}],
				 "origem": {"id": 3, "nome": "Meta Ads"},
				 "etapa": {"id": 10, "nome": "Novo", "funil": {"id": 1, "nome": "Expansão"}}}
			],
			"totalPage": 2
		}`))
	}))
	defer srv.Close()

	c := NewClient("secret-token", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	page, err := c.ListDeals(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPage)
	require.Len(t, page.Data, 1)

	d := page.Data[0]
	assert.Equal(t, int64(1), d.ID)
	assert.True(t, d.InFranchiseFunnel())
	assert.Equal(t, "Maria", d.PrimaryContact().Name)
	assert.Equal(t, "Meta Ads", d.OriginName())
}

func TestListDeals_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data": [], "totalPage": 1}`))
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	page, err := c.ListDeals(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int32(3), calls.Load())
}

func TestListDeals_ExhaustionDegradesToNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	_, err := c.ListDeals(context.Background(), 0, 100)
	assert.ErrorIs(t, err, resilience.ErrNoData)
}

func TestListDeals_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	_, err := c.ListDeals(context.Background(), 0, 100)
	assert.ErrorIs(t, err, resilience.ErrNoData)
	assert.Equal(t, int32(1), calls.Load())
}

func TestListDeals_ThrottleRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data": [], "totalPage": 1}`))
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	_, err := c.ListDeals(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListDeals_EmptyBodyIsNoData(t *testing.T) {
	// The API sometimes answers 200 with a zero-byte body; the page counts as
	// absent and pagination ends cleanly, it is not a fatal error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	_, err := c.ListDeals(context.Background(), 0, 100)
	assert.ErrorIs(t, err, resilience.ErrNoData)
}

func TestListDeals_MalformedBodyIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error page</html>`))
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	_, err := c.ListDeals(context.Background(), 0, 100)
	assert.ErrorIs(t, err, resilience.ErrNoData)
}

func TestTimeline_MalformedBodyIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	_, err := c.Timeline(context.Background(), 42)
	assert.ErrorIs(t, err, resilience.ErrNoData)
}

func TestTimeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/negocio/42/timeline", r.URL.Path)
		w.Write([]byte(`{
			"data": [
				{"descricaoHtml": "<p>Investimento: 60 mil</p>"},
				{"atividade": {"descricaoHtml": "<p>ligar amanhã</p>"}},
				{"anotacao": {"descricaoHtml": "nota"}, "checkpoint": {"descricaoHtml": "cp"}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(fastPolicy()))

	items, err := c.Timeline(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, []string{"<p>Investimento: 60 mil</p>"}, items[0].HTMLPayloads())
	assert.Equal(t, []string{"<p>ligar amanhã</p>"}, items[1].HTMLPayloads())
	assert.Equal(t, []string{"nota", "cp"}, items[2].HTMLPayloads())
}

func TestLossReasonText(t *testing.T) {
	d := Deal{
		LossReason:     &Named{Name: "Sem capital"},
		LossReasonNote: "abaixo do mínimo",
	}
	assert.Equal(t, "Sem capital - abaixo do mínimo", d.LossReasonText())

	assert.Equal(t, "Sem capital", (&Deal{LossReason: &Named{Name: "Sem capital"}}).LossReasonText())
	assert.Equal(t, "só nota", (&Deal{LossReasonNote: "só nota"}).LossReasonText())
	assert.Equal(t, "", (&Deal{}).LossReasonText())
}
