// Package model defines the lead records flowing through the pipeline.
package model

import "time"

// UnknownState is the sentinel recorded when every state-resolution fallback
// fails. It is distinct from an empty field: downstream consumers key off it.
const UnknownState = "null"

// Lead is one business opportunity pulled from the CRM franchise funnel,
// enriched with the signals extracted from its timeline and the scoring
// indices computed over the batch.
type Lead struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"-"`
	Title      string    `json:"titulo"`
	Name       string    `json:"nome"`
	Email      string    `json:"email"`
	Phone      string    `json:"celular"`
	Origin     string    `json:"origem"`
	City       string    `json:"cidade"`
	State      string    `json:"estado"`
	Tags       string    `json:"etiquetas"`
	Stage      string    `json:"situacao"`
	LossReason string    `json:"motivo_perda"`

	// Investment is the investable capital parsed from the timeline,
	// in BRL. Zero means unknown/unspecified.
	Investment float64 `json:"valor_disponivel_para_investimento"`

	// Scoring indices. LocationIndex is binary membership, the others are
	// in [0,1]; Score is the weighted composite in [0, 5.5].
	LocationIndex   float64 `json:"localizacao_index"`
	InvestmentIndex float64 `json:"investimento_index"`
	RecencyIndex    float64 `json:"tempo_index"`
	Score           float64 `json:"score_index"`
	Tier            string  `json:"classificacao_index"`
}

// HasCreatedAt reports whether the creation date was parseable.
func (l *Lead) HasCreatedAt() bool {
	return !l.CreatedAt.IsZero()
}
