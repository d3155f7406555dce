package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"darkstar-quiz-service/internal/app"
	"darkstar-quiz-service/internal/config"
	"darkstar-quiz-service/internal/domain"
	"darkstar-quiz-service/internal/generator"
	"darkstar-quiz-service/internal/render"
	"github.com/spf13/cobra"
)

// NewGenerateCmd prints a generated quiz without starting a session.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		topic     string
		count     int
		asJSON    bool
		noShuffle bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and print a quiz (no session, no storage)",
		Long: `Ask the configured question source for a quiz and print it.

Developer tool for checking question quality and topic diversity. Answers and
explanations are printed below each question.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if count == 0 {
				count = cfg.Quiz.DefaultQuestions
			}
			if count < cfg.Quiz.MinQuestions || count > cfg.Quiz.MaxQuestions {
				return fmt.Errorf("%w: must be between %d and %d", domain.ErrInvalidQuestionCount, cfg.Quiz.MinQuestions, cfg.Quiz.MaxQuestions)
			}
			logger, err := newLogger(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			_, gen, err := newGenerator(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			result, err := gen.Generate(cmd.Context(), topic, count)
			if err != nil {
				return err
			}
			if !noShuffle {
				result.Questions = app.NewShuffler().ShuffleAll(result.Questions)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Questions)
			}
			printQuiz(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic focus for the questions")
	cmd.Flags().IntVar(&count, "count", 0, "number of questions (defaults to quiz.default_questions)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print questions as JSON")
	cmd.Flags().BoolVar(&noShuffle, "no-shuffle", false, "keep the option order of the source")
	return cmd
}

func printQuiz(w io.Writer, result *generator.Result) {
	fmt.Fprintf(w, "Generated %d/%d questions in %d request(s)\n", len(result.Questions), result.Requested, result.Calls)
	if result.Partial {
		fmt.Fprintln(w, "warning: not enough distinct topics, quiz is shorter than requested")
	}
	for i, q := range result.Questions {
		fmt.Fprintf(w, "\n%s\n", render.Question(i+1, len(result.Questions), q))
		fmt.Fprintf(w, "\nAnswer: %s  Topic: %s\n", q.Answer, result.Topics[i])
		if q.Explanation != "" {
			fmt.Fprintf(w, "Explanation: %s\n", q.Explanation)
		}
	}
}
