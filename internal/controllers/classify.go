package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-desk/internal/dto"
	"ticket-desk/internal/services"
	apperrors "ticket-desk/pkg/errors"
	"ticket-desk/pkg/utils"
)

type ClassifyController struct {
	classificationService services.ClassificationServiceInterface
	logger                *zap.Logger
}

func NewClassifyController(classificationService services.ClassificationServiceInterface, logger *zap.Logger) *ClassifyController {
	return &ClassifyController{classificationService: classificationService, logger: logger}
}

// Root is the liveness endpoint.
func (c *ClassifyController) Root(ctx echo.Context) error {
	body := map[string]string{"mode": c.classificationService.Mode()}
	return utils.SuccessResponse(ctx, body, "Ticket classification API is running", http.StatusOK)
}

func (c *ClassifyController) Predict(ctx echo.Context) error {
	var payload dto.PredictRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	resp, err := c.classificationService.Predict(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, resp, "Successfully", http.StatusOK)
}
