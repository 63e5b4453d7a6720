package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/paisa-sahayogi/backend/internal/advisor"
	"example.com/paisa-sahayogi/backend/internal/ai"
	"example.com/paisa-sahayogi/backend/internal/auth"
)

type AdvisorHandler struct {
	Service *advisor.Service
	Logger  *slog.Logger
}

func NewAdvisorHandler(service *advisor.Service, logger *slog.Logger) *AdvisorHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AdvisorHandler{
		Service: service,
		Logger:  logger,
	}
}

// AdviceRequest is the body of POST /api/v1/advice. Pointers mark fields whose presence is checked.
type AdviceRequest struct {
	Category        *string            `json:"category" validate:"required"`
	Message         *string            `json:"message" validate:"required"`
	MonthlyIncome   *float64           `json:"monthly_income_npr" validate:"required,gte=0"`
	MonthlyExpenses map[string]float64 `json:"monthly_expenses_npr" validate:"required,min=1,dive,gte=0"`
	CurrentSavings  *float64           `json:"current_savings_npr"`
	Location        string             `json:"location"`
	ExtraProfile    map[string]any     `json:"extra_profile"`
	Mode            string             `json:"mode" validate:"mode"`
	IsPremium       bool               `json:"is_premium"`
	UserID          string             `json:"user_id"`
}

func (r AdviceRequest) toInput(callerID string) advisor.AdviceInput {
	mode, _ := advisor.ParseMode(r.Mode)

	input := advisor.AdviceInput{
		Category:        deref(r.Category),
		Message:         deref(r.Message),
		MonthlyExpenses: r.MonthlyExpenses,
		Location:        r.Location,
		ExtraProfile:    r.ExtraProfile,
		Mode:            mode,
		UserID:          r.UserID,
	}
	if r.MonthlyIncome != nil {
		input.MonthlyIncome = *r.MonthlyIncome
	}
	if r.CurrentSavings != nil {
		input.CurrentSavings = *r.CurrentSavings
	}
	if input.UserID == "" {
		input.UserID = callerID
	}

	return input
}

// Advice answers a categorized financial question.
func (h *AdvisorHandler) Advice(c echo.Context) error {
	var req AdviceRequest
	typeErrors, verr := decodeJSON(c, &req)
	if verr != nil {
		return unprocessable(c, verr)
	}
	if verr = validateRequest(c, &req, typeErrors); verr != nil {
		return unprocessable(c, verr)
	}

	callerID, _ := auth.UserIDFromContext(c)
	response, err := h.Service.Advice(c.Request().Context(), req.toInput(callerID))
	if err != nil {
		switch {
		case errors.Is(err, advisor.ErrUnknownCategory):
			return badRequest(c, "Invalid category")
		case errors.Is(err, advisor.ErrReplyMalformed), errors.Is(err, advisor.ErrReplyIncomplete):
			return serverError(c, "Invalid JSON response from AI: "+err.Error())
		case ai.IsAuthError(err):
			h.Logger.ErrorContext(c.Request().Context(), "upstream rejected credentials", slog.String("error", err.Error()))
			return serverError(c, missingKeyMessage)
		default:
			return serverError(c, "Error generating advice: "+err.Error())
		}
	}

	return c.JSON(http.StatusOK, response)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
