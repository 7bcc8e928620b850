package dto

type PredictRequestDTO struct {
	Text string `json:"text" validate:"required,notblank"`
}

type PredictResponseDTO struct {
	Category          string            `json:"category"`
	Priority          string            `json:"priority"`
	ExtractedEntities map[string]string `json:"extracted_entities"`
}
