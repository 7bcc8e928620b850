package routes

import (
	"github.com/labstack/echo/v4"

	"ticket-desk/internal/controllers"
	"ticket-desk/pkg/middleware"
)

func runAdminRouter(
	e *echo.Echo,
	dashboardCtrl *controllers.DashboardController,
	reportCtrl *controllers.ReportController,
	authMW *middleware.AuthMiddleware,
) {
	admin := e.Group("/admin", authMW.Auth, authMW.RequireAdmin)
	admin.GET("/users", dashboardCtrl.GetUsers)
	admin.GET("/stats", dashboardCtrl.GetStats)
	admin.GET("/tickets/export", reportCtrl.ExportTickets)
}
