package advisor

import (
	"context"
	"errors"
	"log/slog"

	"example.com/paisa-sahayogi/backend/internal/ai"
)

// Service runs the advice and feedback pipelines: template lookup, prompt composition,
// one upstream call, reply normalization and response assembly.
type Service struct {
	client  ai.Client
	prompts *Registry
	tier    Tier
	logger  *slog.Logger
}

// NewService creates the advisor service. tier decides which response branch is assembled.
func NewService(client ai.Client, prompts *Registry, tier Tier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if tier == "" {
		tier = TierPremium
	}

	return &Service{
		client:  client,
		prompts: prompts,
		tier:    tier,
		logger:  logger,
	}
}

func (s *Service) Tier() Tier {
	return s.tier
}

// Advice answers a financial question for one of the fixed categories.
// Unknown categories fail with ErrUnknownCategory before the upstream is called.
func (s *Service) Advice(ctx context.Context, input AdviceInput) (AdviceResponse, error) {
	template, err := s.prompts.Lookup(input.Category)
	if err != nil {
		return AdviceResponse{}, err
	}

	input = input.withDefaults()
	prompt, figures, err := ComposeAdvicePrompt(template, input, s.tier)
	if err != nil {
		return AdviceResponse{}, err
	}

	reply, err := s.client.Chat(ctx, ai.UserPrompt(prompt))
	if err != nil {
		s.logger.ErrorContext(ctx, "advice generation failed",
			slog.String("category", input.Category),
			slog.Bool("auth_error", ai.IsAuthError(err)),
			slog.String("error", err.Error()),
		)
		return AdviceResponse{}, err
	}

	payload, err := NormalizeAdviceReply(reply)
	if err != nil {
		s.logRejectedReply(ctx, "advice", input.Category, err)
		return AdviceResponse{}, err
	}

	s.logger.InfoContext(ctx, "advice generated",
		slog.String("category", input.Category),
		slog.String("mode", string(input.Mode)),
		slog.String("total_expenses", figures.TotalExpenses.StringFixed(2)),
		slog.String("realistic_savings", figures.RealisticSavings.StringFixed(2)),
	)

	return AssembleAdvice(payload, input, s.tier), nil
}

// Feedback reviews one month of expenses.
func (s *Service) Feedback(ctx context.Context, input FeedbackInput) (FeedbackResponse, error) {
	prompt, total, err := ComposeFeedbackPrompt(s.prompts.Feedback(), input)
	if err != nil {
		return FeedbackResponse{}, err
	}

	reply, err := s.client.Chat(ctx, ai.UserPrompt(prompt))
	if err != nil {
		s.logger.ErrorContext(ctx, "feedback generation failed",
			slog.String("month", input.Month),
			slog.Bool("auth_error", ai.IsAuthError(err)),
			slog.String("error", err.Error()),
		)
		return FeedbackResponse{}, err
	}

	payload, err := NormalizeFeedbackReply(reply)
	if err != nil {
		s.logRejectedReply(ctx, "feedback", input.Month, err)
		return FeedbackResponse{}, err
	}

	totalExpenses, _ := total.Float64()
	s.logger.InfoContext(ctx, "feedback generated",
		slog.String("month", input.Month),
		slog.Int("rights", len(payload.Rights)),
		slog.Int("wrongs", len(payload.Wrongs)),
	)

	return AssembleFeedback(payload, input, totalExpenses, s.tier), nil
}

func (s *Service) logRejectedReply(ctx context.Context, pipeline, subject string, err error) {
	attrs := []slog.Attr{
		slog.String("pipeline", pipeline),
		slog.String("subject", subject),
		slog.String("error", err.Error()),
	}

	var replyErr *ReplyError
	if errors.As(err, &replyErr) {
		attrs = append(attrs,
			slog.Bool("malformed", errors.Is(err, ErrReplyMalformed)),
			slog.String("field", replyErr.Field),
			slog.String("raw_reply", replyErr.Raw),
		)
	}

	s.logger.LogAttrs(ctx, slog.LevelError, "ai reply rejected", attrs...)
}
