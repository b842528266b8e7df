package sults

// DealPage is one page of the paginated listing endpoint.
type DealPage struct {
	Data      []Deal `json:"data"`
	TotalPage int    `json:"totalPage"`
}

// Deal is a business opportunity as returned by the expansion API.
type Deal struct {
	ID        int64     `json:"id"`
	Title     string    `json:"titulo"`
	CreatedAt string    `json:"dtCadastro"`
	City      string    `json:"cidade"`
	State     string    `json:"uf"`
	Contacts  []Contact `json:"contatoPessoa"`
	Origin    *Named    `json:"origem"`
	Tags      []Named   `json:"etiqueta"`
	Situation *Named    `json:"situacao"`
	Stage     *Stage    `json:"etapa"`

	LossReason     *Named `json:"situacaoPerdaMotivo"`
	LossReasonNote string `json:"situacaoPerdaMotivoObservacao"`
}

// Contact is a person attached to a deal. The first entry is the primary
// contact.
type Contact struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Named is the API's recurring {id, nome} shape.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"nome"`
}

// Stage carries the funnel a deal belongs to.
type Stage struct {
	ID     int64   `json:"id"`
	Name   string  `json:"nome"`
	Funnel *Funnel `json:"funil"`
}

// Funnel is the CRM's sales-stage grouping. Only FunnelFranchise is in scope.
type Funnel struct {
	ID   int64  `json:"id"`
	Name string `json:"nome"`
}

// FunnelFranchise is the id of the franchise expansion funnel.
const FunnelFranchise int64 = 1

// InFranchiseFunnel reports whether the deal belongs to the franchise funnel.
func (d *Deal) InFranchiseFunnel() bool {
	return d.Stage != nil && d.Stage.Funnel != nil && d.Stage.Funnel.ID == FunnelFranchise
}

// PrimaryContact returns the first contact, or a zero Contact when the deal
// has none.
func (d *Deal) PrimaryContact() Contact {
	if len(d.Contacts) == 0 {
		return Contact{}
	}
	return d.Contacts[0]
}

// OriginName returns the origin tag name, or "".
func (d *Deal) OriginName() string {
	if d.Origin == nil {
		return ""
	}
	return d.Origin.Name
}

// SituationName returns the funnel-stage name, or "".
func (d *Deal) SituationName() string {
	if d.Situation == nil {
		return ""
	}
	return d.Situation.Name
}

// LossReasonText combines the coded loss reason with its free-text note.
func (d *Deal) LossReasonText() string {
	name := ""
	if d.LossReason != nil {
		name = d.LossReason.Name
	}
	if d.LossReasonNote == "" {
		return name
	}
	if name == "" {
		return d.LossReasonNote
	}
	return name + " - " + d.LossReasonNote
}

// timelineResponse wraps the chronological item array.
type timelineResponse struct {
	Data []TimelineItem `json:"data"`
}

// TimelineItem is one entry of a deal's timeline. The HTML description may
// sit on the item itself or nested under its activity, note, or checkpoint.
type TimelineItem struct {
	DescriptionHTML string    `json:"descricaoHtml"`
	Activity        *Described `json:"atividade"`
	Note            *Described `json:"anotacao"`
	Checkpoint      *Described `json:"checkpoint"`
}

// Described is any nested timeline object carrying an HTML description.
type Described struct {
	DescriptionHTML string `json:"descricaoHtml"`
}

// HTMLPayloads collects every HTML description present on the item, in a
// fixed order.
func (t *TimelineItem) HTMLPayloads() []string {
	var payloads []string
	if t.DescriptionHTML != "" {
		payloads = append(payloads, t.DescriptionHTML)
	}
	for _, d := range []*Described{t.Activity, t.Note, t.Checkpoint} {
		if d != nil && d.DescriptionHTML != "" {
			payloads = append(payloads, d.DescriptionHTML)
		}
	}
	return payloads
}
