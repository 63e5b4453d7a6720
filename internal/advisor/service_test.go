package advisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/paisa-sahayogi/backend/internal/ai"
)

type stubClient struct {
	reply    string
	err      error
	calls    int
	messages []ai.Message
}

func (s *stubClient) Chat(_ context.Context, messages []ai.Message) (string, error) {
	s.calls++
	s.messages = messages
	return s.reply, s.err
}

func newTestService(t *testing.T, client ai.Client, tier Tier) *Service {
	t.Helper()

	registry, err := LoadRegistry()
	require.NoError(t, err)

	return NewService(client, registry, tier, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestServiceAdvice runs the advice pipeline against a stubbed model.
func TestServiceAdvice(t *testing.T) {
	client := &stubClient{reply: "```json\n" + motorbikeReply + "\n```"}
	service := newTestService(t, client, TierPremium)

	response, err := service.Advice(context.Background(), motorbikeInput())
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	require.Len(t, client.messages, 1)
	assert.Equal(t, "user", client.messages[0].Role)
	assert.Contains(t, client.messages[0].Content, "35000.00")
	assert.Contains(t, client.messages[0].Content, "38250.00")

	assert.Equal(t, int64(4), response.MonthsNeeded)
	assert.True(t, response.IsPremium)
	require.NotNil(t, response.Visualization)
	assert.Equal(t, "Progress: 40% towards goal of NPR 150,000", response.Visualization.Description)
}

// TestServiceAdviceUnknownCategory checks that the model is never called for unknown categories.
func TestServiceAdviceUnknownCategory(t *testing.T) {
	client := &stubClient{reply: motorbikeReply}
	service := newTestService(t, client, TierPremium)

	input := motorbikeInput()
	input.Category = "crypto"

	_, err := service.Advice(context.Background(), input)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Zero(t, client.calls)
}

// TestServiceAdviceErrors checks that upstream and reply errors keep their identity.
func TestServiceAdviceErrors(t *testing.T) {
	authErr := &ai.UpstreamError{Provider: "gemini", StatusCode: 401, Err: errors.New("API key not valid")}

	_, err := newTestService(t, &stubClient{err: authErr}, TierPremium).Advice(context.Background(), motorbikeInput())
	assert.True(t, ai.IsAuthError(err))

	_, err = newTestService(t, &stubClient{reply: "not json"}, TierPremium).Advice(context.Background(), motorbikeInput())
	assert.ErrorIs(t, err, ErrReplyMalformed)

	_, err = newTestService(t, &stubClient{reply: `{"response_np": "a"}`}, TierPremium).Advice(context.Background(), motorbikeInput())
	assert.ErrorIs(t, err, ErrReplyIncomplete)
}

// TestServiceFeedback runs the feedback pipeline on the free tier.
func TestServiceFeedback(t *testing.T) {
	client := &stubClient{reply: `{
		"rights": [
			{"title": "Rent", "amount": 15000, "description": "ok", "solution": "keep"},
			{"title": "Food", "amount": 8000, "description": "ok", "solution": "keep"},
			{"title": "Fuel", "amount": 3000, "description": "ok", "solution": "keep"},
			{"title": "Bills", "amount": 2000, "description": "ok", "solution": "keep"},
			{"title": "Phone", "amount": 500, "description": "ok", "solution": "keep"}
		],
		"wrongs": [],
		"suggestions": ["Track spending"]
	}`}
	service := newTestService(t, client, TierFree)

	response, err := service.Feedback(context.Background(), FeedbackInput{
		UserID:   "u1",
		Month:    "2025-01",
		Expenses: map[string]float64{"rent": 15000, "food": 8000},
	})
	require.NoError(t, err)

	assert.Contains(t, client.messages[0].Content, "Total: NPR 23000.00")
	assert.Equal(t, "2025-01", response.Month)
	assert.InDelta(t, 23000, response.TotalExpenses, 1e-9)
	assert.False(t, response.IsPremium)
	require.Len(t, response.Rights, 3)
	assert.Equal(t, LockedSolution, *response.Rights[0].Solution)
	require.Len(t, response.Wrongs, 1)
	assert.Equal(t, "More insights available", response.Wrongs[0].Title)
	assert.Equal(t, TierFree, service.Tier())
}

// TestNewServiceDefaultsToPremium checks the zero tier.
func TestNewServiceDefaultsToPremium(t *testing.T) {
	service := NewService(&stubClient{}, nil, "", nil)
	assert.Equal(t, TierPremium, service.Tier())
}
