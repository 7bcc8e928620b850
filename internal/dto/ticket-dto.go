package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"ticket-desk/internal/entities"
)

type CreateTicketDTO struct {
	Title             string            `json:"title" validate:"required,notblank,max=255"`
	Description       string            `json:"description" validate:"required,notblank"`
	Category          string            `json:"category" validate:"required,max=100"`
	Priority          string            `json:"priority" validate:"required,max=50"`
	ExtractedEntities map[string]string `json:"extracted_entities"`
}

// ReviewTicketDTO leaves the range check to the service so that an
// out-of-range rating reports the domain error.
type ReviewTicketDTO struct {
	Rating int `json:"rating"`
}

type TicketListQuery struct {
	Skip  *int `query:"skip"`
	Limit *int `query:"limit"`
}

type TicketResponseDTO struct {
	ID                   uint64            `json:"id"`
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	Category             string            `json:"category"`
	Priority             string            `json:"priority"`
	ExtractedEntities    map[string]string `json:"extracted_entities"`
	Status               string            `json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
	Rating               null.Int          `json:"rating"`
	FirstResponseSeconds null.Int          `json:"first_response_seconds"`
	OwnerID              uint64            `json:"owner_id"`
	OwnerName            *string           `json:"owner_name,omitempty"`
}

// NewTicketResponse projects a stored ticket for the caller. The owner's
// display name is included only when withOwner is set.
func NewTicketResponse(t *entities.Ticket, withOwner bool) TicketResponseDTO {
	extracted := t.ExtractedEntities
	if extracted == nil {
		extracted = map[string]string{}
	}
	resp := TicketResponseDTO{
		ID:                   t.ID,
		Title:                t.Title,
		Description:          t.Description,
		Category:             t.Category,
		Priority:             t.Priority,
		ExtractedEntities:    extracted,
		Status:               t.Status,
		CreatedAt:            t.CreatedAt,
		Rating:               null.IntFromPtr(t.Rating),
		FirstResponseSeconds: null.IntFromPtr(t.FirstResponseSeconds),
		OwnerID:              t.OwnerID,
	}
	if withOwner {
		name := t.OwnerName
		resp.OwnerName = &name
	}
	return resp
}

func NewTicketResponses(tickets []entities.Ticket, withOwner bool) []TicketResponseDTO {
	out := make([]TicketResponseDTO, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i], withOwner))
	}
	return out
}
