package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/paisa-sahayogi/backend/internal/advisor"
	"example.com/paisa-sahayogi/backend/internal/ai"
	"example.com/paisa-sahayogi/backend/internal/auth"
	"example.com/paisa-sahayogi/backend/internal/config"
)

type recordingClient struct {
	reply  string
	prompt string
}

func (r *recordingClient) Chat(_ context.Context, messages []ai.Message) (string, error) {
	r.prompt = messages[len(messages)-1].Content
	return r.reply, nil
}

func testConfig() config.Config {
	return config.Config{
		Auth:   config.AuthConfig{JWTSecret: "test-secret"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}},
		Access: config.AccessConfig{Tier: config.TierPremium},
		AI: config.AIConfig{
			Provider:        config.ProviderOpenAI,
			APIKey:          "key",
			BaseURL:         "http://127.0.0.1:1",
			Model:           "test-model",
			Timeout:         time.Second,
			MaxRetries:      1,
			RetryBackoff:    time.Millisecond,
			MaxOutputTokens: 256,
		},
	}
}

func newTestEcho(t *testing.T, client ai.Client) *echo.Echo {
	t.Helper()

	registry, err := advisor.LoadRegistry()
	require.NoError(t, err)

	return New(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)), client, registry)
}

// TestRootAndHealth checks the public root and health endpoints.
func TestRootAndHealth(t *testing.T) {
	e := newTestEcho(t, &recordingClient{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.0.0"`)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

// TestUnknownRoute checks that framework errors use the detail key.
func TestUnknownRoute(t *testing.T) {
	e := newTestEcho(t, &recordingClient{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "Not Found"}`, rec.Body.String())
}

// TestAdviceRouteWithToken checks the advice route end to end, with and without a bearer token.
func TestAdviceRouteWithToken(t *testing.T) {
	client := &recordingClient{reply: `{"response_np": "a", "response_en": "b", "months_needed": 2, "target_amount_npr": 1000,
		"realistic_monthly_savings_npr": 500, "progress_percent": 10, "tips": [], "alternatives": []}`}
	e := newTestEcho(t, client)

	token, _, err := auth.NewTokenManager("test-secret", "").Issue("user-1", time.Hour)
	require.NoError(t, err)

	body := `{"category": "festival", "message": "Dashain budget", "monthly_income_npr": 50000, "monthly_expenses_npr": {"food": 20000}}`
	for _, header := range []string{"Bearer " + token, "Bearer invalid", ""} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"is_premium":true`)
	}

	assert.Contains(t, client.prompt, "NPR 25500.00")
}

// TestCORS checks the configured allow-list.
func TestCORS(t *testing.T) {
	e := newTestEcho(t, &recordingClient{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/advice", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

// TestNewAIClient checks provider selection.
func TestNewAIClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig().AI

	client, err := NewAIClient(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &ai.RetryClient{}, client)

	cfg.Provider = config.ProviderGemini
	cfg.BaseURL = ""
	client, err = NewAIClient(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &ai.RetryClient{}, client)

	cfg.Provider = "llama"
	_, err = NewAIClient(context.Background(), cfg, logger)
	assert.Error(t, err)
}

// TestNewHTTPServer checks the listen address and timeouts.
func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(config.ServerConfig{Host: "127.0.0.1", Port: 8000, ReadTimeout: time.Second}, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:8000", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
}
