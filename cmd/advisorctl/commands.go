package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"example.com/paisa-sahayogi/backend/internal/advisor"
	"example.com/paisa-sahayogi/backend/internal/auth"
	"example.com/paisa-sahayogi/backend/internal/config"
	"example.com/paisa-sahayogi/backend/internal/server"
)

// adviceFile is the on-disk form of an advice request, using the API field names.
type adviceFile struct {
	Category        string             `json:"category"`
	Message         string             `json:"message"`
	MonthlyIncome   float64            `json:"monthly_income_npr"`
	MonthlyExpenses map[string]float64 `json:"monthly_expenses_npr"`
	CurrentSavings  float64            `json:"current_savings_npr"`
	Location        string             `json:"location"`
	ExtraProfile    map[string]any     `json:"extra_profile"`
	Mode            string             `json:"mode"`
	UserID          string             `json:"user_id"`
}

func (f adviceFile) input() (advisor.AdviceInput, error) {
	mode, ok := advisor.ParseMode(f.Mode)
	if !ok {
		return advisor.AdviceInput{}, fmt.Errorf("unknown mode %q", f.Mode)
	}
	if len(f.MonthlyExpenses) == 0 {
		return advisor.AdviceInput{}, fmt.Errorf("monthly_expenses_npr cannot be empty")
	}

	return advisor.AdviceInput{
		Category:        f.Category,
		Message:         f.Message,
		MonthlyIncome:   f.MonthlyIncome,
		MonthlyExpenses: f.MonthlyExpenses,
		CurrentSavings:  f.CurrentSavings,
		Location:        f.Location,
		ExtraProfile:    f.ExtraProfile,
		Mode:            mode,
		UserID:          f.UserID,
	}, nil
}

func newRootCmd() *cobra.Command {
	var promptsFile string

	root := &cobra.Command{
		Use:           "advisorctl",
		Short:         "Operator tools for the Paisa Ko Sahayogi advisor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&promptsFile, "prompts", "", "Prompt template file (default: embedded templates)")

	loadPrompts := func() (*advisor.Registry, error) {
		return advisor.LoadRegistryFile(promptsFile)
	}

	root.AddCommand(
		newCategoriesCmd(loadPrompts),
		newPromptCmd(loadPrompts),
		newAskCmd(loadPrompts),
		newTokenCmd(),
	)

	return root
}

func newCategoriesCmd(loadPrompts func() (*advisor.Registry, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the advice categories and the template version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompts, err := loadPrompts()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "templates %s\n", prompts.Version())
			for _, category := range advisor.Categories() {
				fmt.Fprintln(out, category)
			}
			return nil
		},
	}
}

func newPromptCmd(loadPrompts func() (*advisor.Registry, error)) *cobra.Command {
	var requestFile string
	var free bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render the model prompt for an advice request without calling the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := readAdviceFile(requestFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			prompts, err := loadPrompts()
			if err != nil {
				return err
			}

			template, err := prompts.Lookup(input.Category)
			if err != nil {
				return err
			}

			tier := advisor.TierPremium
			if free {
				tier = advisor.TierFree
			}

			prompt, _, err := advisor.ComposeAdvicePrompt(template, input, tier)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), prompt)
			return nil
		},
	}
	cmd.Flags().StringVarP(&requestFile, "file", "f", "-", "Advice request JSON file, - for stdin")
	cmd.Flags().BoolVar(&free, "free", false, "Render the prompt for the free tier")

	return cmd
}

func newAskCmd(loadPrompts func() (*advisor.Registry, error)) *cobra.Command {
	var requestFile string

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Send an advice request to the configured model and print the response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := readAdviceFile(requestFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			prompts, err := loadPrompts()
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			client, err := server.NewAIClient(cmd.Context(), cfg.AI, logger)
			if err != nil {
				return err
			}

			service := advisor.NewService(client, prompts, advisor.Tier(cfg.Access.Tier), logger)
			response, err := service.Advice(cmd.Context(), input)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(response)
		},
	}
	cmd.Flags().StringVarP(&requestFile, "file", "f", "-", "Advice request JSON file, - for stdin")

	return cmd
}

func newTokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("JWT_SECRET_KEY")
			if secret == "" {
				secret = config.DefaultJWTSecret
			}

			manager := auth.NewTokenManager(secret, os.Getenv("JWT_ISSUER"))
			token, expiresAt, err := manager.Issue(subject, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "User id carried by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func readAdviceFile(path string, stdin io.Reader) (advisor.AdviceInput, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return advisor.AdviceInput{}, fmt.Errorf("read advice request: %w", err)
	}

	var file adviceFile
	if err := json.Unmarshal(data, &file); err != nil {
		return advisor.AdviceInput{}, fmt.Errorf("decode advice request: %w", err)
	}

	return file.input()
}
