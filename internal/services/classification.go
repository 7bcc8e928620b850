package services

import (
	"context"

	"go.uber.org/zap"

	"ticket-desk/internal/classifier"
	"ticket-desk/internal/dto"
	apperrors "ticket-desk/pkg/errors"
	"ticket-desk/pkg/metrics"
)

// Classifier is satisfied by *classifier.Classifier.
type Classifier interface {
	Predict(text string) (classifier.Prediction, error)
	ExtractEntities(text string) map[string]string
	Mode() string
}

type ClassificationServiceInterface interface {
	Predict(ctx context.Context, payload dto.PredictRequestDTO) (*dto.PredictResponseDTO, error)
	Mode() string
}

type ClassificationService struct {
	classifier Classifier
	logger     *zap.Logger
}

func NewClassificationService(c Classifier, logger *zap.Logger) ClassificationServiceInterface {
	return &ClassificationService{classifier: c, logger: logger}
}

func (s *ClassificationService) Predict(_ context.Context, payload dto.PredictRequestDTO) (*dto.PredictResponseDTO, error) {
	mode := s.classifier.Mode()
	prediction, err := s.classifier.Predict(payload.Text)
	if err != nil {
		metrics.PredictionFailuresTotal.Inc()
		s.logger.Error("prediction failed", zap.String("mode", mode), zap.Error(err))
		return nil, apperrors.ErrPredictionFailed
	}
	metrics.PredictionsTotal.WithLabelValues(mode).Inc()

	return &dto.PredictResponseDTO{
		Category:          prediction.Category,
		Priority:          prediction.Priority,
		ExtractedEntities: s.classifier.ExtractEntities(payload.Text),
	}, nil
}

func (s *ClassificationService) Mode() string {
	return s.classifier.Mode()
}
