package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	serviceName    = "Paisa Ko Sahayogi API - Nepal's Smartest Finance Advisor"
	serviceVersion = "1.0.0"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// Root returns the service banner.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{Message: serviceName, Version: serviceVersion})
}

// Health returns a plain liveness status.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
