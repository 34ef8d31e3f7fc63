// internal/api/types/response.go
package types

import (
	"cardflow/internal/domain"
	"cardflow/internal/repository"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CardPageResponse is one page of masked card views.
type CardPageResponse struct {
	Items      []domain.CardView `json:"items"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
}

// NewCardPageResponse masks every card in the page.
func NewCardPageResponse(p *repository.Paged) CardPageResponse {
	items := make([]domain.CardView, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, p.Items[i].MaskedView())
	}
	return CardPageResponse{
		Items:      items,
		TotalCount: p.TotalCount,
		Page:       p.Number,
		Size:       p.Size,
	}
}
