package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/behonest/leads-cli/internal/model"
)

func TestLocationIndex(t *testing.T) {
	tests := []struct {
		name  string
		city  string
		state string
		want  float64
	}{
		{"df is covered as a whole", "Qualquer Cidade", "DF", 1},
		{"mg franchise city", "Belo Horizonte", "MG", 1},
		{"mg franchise city accented", "Poços de Caldas", "MG", 1},
		{"mg non-franchise city", "Uberlândia", "MG", 0},
		{"go franchise city", "Goiânia", "GO", 1},
		{"go non-franchise city", "Rio Verde", "GO", 0},
		{"unsupported state", "São Paulo", "SP", 0},
		{"franchise city name under unsupported state", "Goiânia", "SP", 0},
		{"unknown state sentinel", "Belo Horizonte", "null", 0},
		{"decorated variant partial match", "Contagem - Região Metropolitana", "MG", 1},
		{"abbreviation contained in list name", "Belo Horiz", "MG", 1},
		// Bidirectional containment makes an empty locality match any list
		// name under a covered state. Intentional, pinned here.
		{"empty city under mg", "", "MG", 1},
		{"empty city under go", "", "GO", 1},
		{"empty city under unsupported state", "", "SP", 0},
		{"empty city under unknown state", "", "null", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationIndex(tt.city, tt.state))
		})
	}
}

func TestInvestmentIndex(t *testing.T) {
	assert.Equal(t, 0.0, InvestmentIndex(0))
	assert.Equal(t, 0.0, InvestmentIndex(-5))
	assert.Equal(t, 0.3, InvestmentIndex(60000))
	assert.Equal(t, 0.75, InvestmentIndex(150000))
	assert.Equal(t, 1.0, InvestmentIndex(200000))
	assert.Equal(t, 1.0, InvestmentIndex(500000))
}

func TestComposite(t *testing.T) {
	assert.Equal(t, 5.5, Composite(1, 1, 1))
	assert.Equal(t, 0.0, Composite(0, 0, 0))
	assert.Equal(t, 3.75, Composite(1, 0.25, 0.5))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{5.5, TierMQLPlus},
		{4.09, TierMQLPlus},
		{4.08, TierMQL},
		{3.58, TierMQL},
		{3.57, TierLeadPlus},
		{3.00, TierLeadPlus},
		{2.99, TierLead},
		{0.62, TierLead},
		{0.61, TierDisqualified},
		{0, TierDisqualified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestApplyRecency(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return now.AddDate(0, 0, -d) }

	leads := []model.Lead{
		{CreatedAt: day(0)},  // newest
		{CreatedAt: day(5)},  // middle
		{CreatedAt: day(10)}, // oldest
		{},                   // no creation date
	}
	ApplyRecency(leads, now)

	assert.Equal(t, 1.0, leads[0].RecencyIndex)
	assert.Equal(t, 0.5, leads[1].RecencyIndex)
	assert.Equal(t, 0.0, leads[2].RecencyIndex)
	assert.Equal(t, 0.0, leads[3].RecencyIndex)
}

func TestApplyRecency_SingleAge(t *testing.T) {
	now := time.Now()
	leads := []model.Lead{
		{CreatedAt: now.AddDate(0, 0, -3)},
		{CreatedAt: now.AddDate(0, 0, -3)},
	}
	ApplyRecency(leads, now)
	assert.Equal(t, 1.0, leads[0].RecencyIndex)
	assert.Equal(t, 1.0, leads[1].RecencyIndex)
}

func TestApply_FullBatch(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	leads := []model.Lead{
		{
			City:       "Belo Horizonte",
			State:      "MG",
			Investment: 200000,
			CreatedAt:  now,
		},
		{
			City:       "São Paulo",
			State:      "SP",
			Investment: 0,
			CreatedAt:  now.AddDate(0, 0, -30),
		},
	}
	Apply(leads, now)

	// 3*1 + 2*1 + 0.5*1 = 5.5
	assert.Equal(t, 5.5, leads[0].Score)
	assert.Equal(t, TierMQLPlus, leads[0].Tier)

	// 3*0 + 2*0 + 0.5*0 = 0
	assert.Equal(t, 0.0, leads[1].Score)
	assert.Equal(t, TierDisqualified, leads[1].Tier)
}
