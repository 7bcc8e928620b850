package routes

import (
	"github.com/labstack/echo/v4"

	"ticket-desk/internal/controllers"
	"ticket-desk/pkg/middleware"
)

func runTicketRouter(
	e *echo.Echo,
	ticketCtrl *controllers.TicketController,
	classifyCtrl *controllers.ClassifyController,
	authMW *middleware.AuthMiddleware,
) {
	e.POST("/predict", classifyCtrl.Predict, authMW.Auth)

	tickets := e.Group("/tickets", authMW.Auth)
	tickets.POST("", ticketCtrl.CreateTicket)
	tickets.GET("", ticketCtrl.GetTickets)
	tickets.POST("/:id/review", ticketCtrl.ReviewTicket)
}
