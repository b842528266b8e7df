package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/behonest/leads-cli/internal/model"
)

func TestResolveLocation(t *testing.T) {
	gazetteer := map[string]string{
		"contagem":       "MG",
		"belo horizonte": "MG",
		"goiania":        "GO",
		"brasilia":       "DF",
	}

	tests := []struct {
		name      string
		city      string
		state     string
		title     string
		wantCity  string
		wantState string
	}{
		{
			"explicit state trusted as-is",
			"Goiânia", "go", "",
			"Goiânia", "GO",
		},
		{
			"uf suffix stripped and gazetteer resolves",
			"Contagem/MG", "", "",
			"Contagem", "MG",
		},
		{
			"uf space suffix stripped",
			"Belo Horizonte MG", "", "",
			"Belo Horizonte", "MG",
		},
		{
			"alias expands to canonical city",
			"bh", "", "",
			"Belo Horizonte", "MG",
		},
		{
			"df alias resolves city and state",
			"df", "", "",
			"Brasília", "DF",
		},
		{
			"title uf fallback",
			"", "", "Interessado em franquia - MG",
			"", "MG",
		},
		{
			"title city fallback",
			"", "", "Lead Brasilia centro",
			"", "DF",
		},
		{
			"nothing resolves to sentinel",
			"", "", "sem pistas",
			"", model.UnknownState,
		},
		{
			"title casing applied to unknown city",
			"cidade ocidental", "", "",
			"Cidade Ocidental", model.UnknownState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, state := ResolveLocation(tt.city, tt.state, tt.title, gazetteer)
			assert.Equal(t, tt.wantCity, city)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestResolveLocation_NilGazetteer(t *testing.T) {
	city, state := ResolveLocation("Contagem", "", "Contato Contagem/MG", nil)
	assert.Equal(t, "Contagem", city)
	assert.Equal(t, "MG", state)
}

func TestStateFromText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Franquia em Uberlândia/MG", "MG"},
		{"Interessado (DF) urgente", "DF"},
		{"Proposta - GO", "GO"},
		{"Contato de Goiania", "GO"},
		{"Lead BH novo", "MG"},
		{"nada aqui", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StateFromText(tt.in), "input %q", tt.in)
	}
}
