package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const missingKeyMessage = "GEMINI_API_KEY environment variable is not set or is invalid. Please set it before making requests."

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: message})
}

func serverError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: message})
}
