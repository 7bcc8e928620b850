package entities

import "time"

const (
	TicketStatusNew      = "New"
	TicketStatusResolved = "Resolved"

	MinRating = 1
	MaxRating = 5
)

type Ticket struct {
	ID                   uint64            `json:"id" db:"id"`
	Title                string            `json:"title" db:"title"`
	Description          string            `json:"description" db:"description"`
	Category             string            `json:"category" db:"category"`
	Priority             string            `json:"priority" db:"priority"`
	ExtractedEntities    map[string]string `json:"extracted_entities" db:"extracted_entities"`
	Status               string            `json:"status" db:"status"`
	CreatedAt            time.Time         `json:"created_at" db:"created_at"`
	Rating               *int              `json:"rating" db:"rating"`
	FirstResponseSeconds *int              `json:"first_response_seconds" db:"first_response_seconds"`
	OwnerID              uint64            `json:"owner_id" db:"owner_id"`

	// OwnerName is filled by queries that join users; it is not a column.
	OwnerName string `json:"-" db:"-"`
}

// TicketStats is the aggregate view served to administrators. RatingSum and
// RatedTickets are raw; the service derives the average rating from them.
type TicketStats struct {
	TotalTickets             uint64
	OpenTickets              uint64
	ResolvedTickets          uint64
	RatedTickets             uint64
	RatingSum                uint64
	TotalUsers               uint64
	AverageFirstResponseSecs float64
	ByCategory               map[string]uint64
	ByPriority               map[string]uint64
}
