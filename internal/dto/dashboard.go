package dto

type AdminStatsDTO struct {
	TotalTickets             uint64            `json:"total_tickets"`
	OpenTickets              uint64            `json:"open_tickets"`
	ResolvedTickets          uint64            `json:"resolved_tickets"`
	RatedTickets             uint64            `json:"rated_tickets"`
	TotalUsers               uint64            `json:"total_users"`
	AverageRating            float64           `json:"average_rating"`
	AverageFirstResponseSecs float64           `json:"average_first_response_seconds"`
	ByCategory               map[string]uint64 `json:"by_category"`
	ByPriority               map[string]uint64 `json:"by_priority"`
}
