package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/paisa-sahayogi/backend/internal/advisor"
	"example.com/paisa-sahayogi/backend/internal/ai"
	"example.com/paisa-sahayogi/backend/internal/auth"
)

// FeedbackRequest is the body of POST /api/v1/feedback. Month is a free-form "YYYY-MM" label.
type FeedbackRequest struct {
	UserID   *string            `json:"user_id" validate:"required"`
	Month    *string            `json:"month" validate:"required"`
	Expenses map[string]float64 `json:"expenses" validate:"required"`
}

// Feedback reviews one month of expenses.
func (h *AdvisorHandler) Feedback(c echo.Context) error {
	var req FeedbackRequest
	typeErrors, verr := decodeJSON(c, &req)
	if verr != nil {
		return unprocessable(c, verr)
	}

	if req.UserID == nil {
		if callerID, ok := auth.UserIDFromContext(c); ok {
			req.UserID = &callerID
		}
	}

	if verr = validateRequest(c, &req, typeErrors); verr != nil {
		return unprocessable(c, verr)
	}

	response, err := h.Service.Feedback(c.Request().Context(), advisor.FeedbackInput{
		UserID:   deref(req.UserID),
		Month:    deref(req.Month),
		Expenses: req.Expenses,
	})
	if err != nil {
		if ai.IsAuthError(err) {
			h.Logger.ErrorContext(c.Request().Context(), "upstream rejected credentials", slog.String("error", err.Error()))
			return serverError(c, missingKeyMessage)
		}
		return serverError(c, "Error generating feedback: "+err.Error())
	}

	return c.JSON(http.StatusOK, response)
}
