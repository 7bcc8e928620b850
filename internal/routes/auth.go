package routes

import (
	"github.com/labstack/echo/v4"

	"ticket-desk/internal/controllers"
	"ticket-desk/pkg/middleware"
)

func runAuthRouter(e *echo.Echo, authCtrl *controllers.AuthController, authMW *middleware.AuthMiddleware) {
	e.POST("/register", authCtrl.Register)
	e.POST("/token", authCtrl.Login)

	e.GET("/users/me", authCtrl.Me, authMW.Auth)
}
