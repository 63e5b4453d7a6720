package server

import (
	"github.com/labstack/echo/v4"

	"example.com/paisa-sahayogi/backend/internal/handlers"
)

func registerRoutes(e *echo.Echo, advisorHandler *handlers.AdvisorHandler, identity echo.MiddlewareFunc) {
	e.GET("/", handlers.Root)
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1", identity)
	api.POST("/advice", advisorHandler.Advice)
	api.POST("/feedback", advisorHandler.Feedback)
}
