package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-desk/internal/dto"
	"ticket-desk/internal/services"
	apperrors "ticket-desk/pkg/errors"
	"ticket-desk/pkg/utils"
)

type TicketController struct {
	ticketService services.TicketServiceInterface
	logger        *zap.Logger
}

func NewTicketController(ticketService services.TicketServiceInterface, logger *zap.Logger) *TicketController {
	return &TicketController{ticketService: ticketService, logger: logger}
}

func (c *TicketController) CreateTicket(ctx echo.Context) error {
	var payload dto.CreateTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ticket, err := c.ticketService.CreateTicket(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, ticket, "ticket created", http.StatusCreated)
}

func (c *TicketController) GetTickets(ctx echo.Context) error {
	var query dto.TicketListQuery
	var err error
	params := ctx.QueryParams()
	if query.Skip, err = utils.QueryInt(params, "skip"); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if query.Limit, err = utils.QueryInt(params, "limit"); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	tickets, err := c.ticketService.GetTickets(ctx.Request().Context(), query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, tickets, "Successfully", http.StatusOK)
}

func (c *TicketController) ReviewTicket(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("invalid ticket id"), c.logger)
	}

	var payload dto.ReviewTicketDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil), c.logger)
	}

	ticket, err := c.ticketService.ReviewTicket(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, ticket, "review saved", http.StatusOK)
}
