package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izu-labs/izuchat/internal/adapters/driven/corpus/jsonfile"
	historysqlite "github.com/izu-labs/izuchat/internal/adapters/driven/history/sqlite"
	"github.com/izu-labs/izuchat/internal/adapters/driven/report"
	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/core/services"
	"github.com/izu-labs/izuchat/internal/logger"
)

var (
	evalQuestionsPath string
	evalHistoryLimit  int
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the evaluation harness",
	Long: `Replays the evaluation question set through the chat pipeline,
scores the answers, writes report artifacts, and records the run in the
evaluation history.`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

var evalHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List past evaluation runs",
	Args:  cobra.NoArgs,
	RunE:  runEvalHistory,
}

func init() {
	evalCmd.Flags().StringVar(&evalQuestionsPath, "questions", "",
		"question set path (default from config)")
	evalHistoryCmd.Flags().IntVarP(&evalHistoryLimit, "limit", "n", 10,
		"maximum number of runs to list")
	evalCmd.AddCommand(evalHistoryCmd)
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	questionsPath := evalQuestionsPath
	if questionsPath == "" {
		questionsPath = cfg.Eval.QuestionsPath
	}
	questions, err := jsonfile.LoadQuestions(questionsPath)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("question set %s is empty", questionsPath)
	}

	if evalService == nil {
		sys, err := buildSystem()
		if err != nil {
			return err
		}
		defer sys.close()

		evalService = services.NewEvaluator(sys.pipeline, sys.embedder, services.EvaluatorConfig{
			Concurrency:       cfg.Eval.Concurrency,
			RequestsPerSecond: cfg.Eval.RequestsPerSecond,
			Thresholds:        cfg.Eval.Thresholds,
			Pricing:           cfg.Eval.Pricing,
		})
	}

	cmd.Printf("Evaluating %d questions...\n", len(questions))
	result, err := evalService.Evaluate(context.Background(), questions)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	jsonPath, err := report.NewJSONWriter(cfg.Eval.ReportDir).Write(result)
	if err != nil {
		return err
	}
	mdPath, err := report.NewMarkdownWriter(cfg.Eval.ReportDir).Write(result)
	if err != nil {
		return err
	}

	if err := saveHistory(cfg.Eval.HistoryPath, result); err != nil {
		// History is a convenience; the report files are the artifact.
		logger.Warn("Could not record run in history: %v", err)
	}

	printSummary(cmd, result)
	cmd.Printf("\nReport: %s\nSummary: %s\n", jsonPath, mdPath)
	return nil
}

func saveHistory(path string, result *domain.Report) error {
	store, err := historysqlite.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveReport(context.Background(), result)
}

func printSummary(cmd *cobra.Command, result *domain.Report) {
	s := result.Summary
	cmd.Printf("\nRun %s: %d questions, %d failures\n", result.RunID, s.Questions, s.Failures)
	cmd.Printf("  Mean similarity:  %.3f (target >= %.2f)\n",
		s.Similarity.Mean, result.Thresholds.MinMeanSimilarity)
	cmd.Printf("  Mean time:        %.0f ms (target < %.0f ms)\n",
		s.TotalTimeMs.Mean, result.Thresholds.MaxMeanTimeMs)
	cmd.Printf("  Mean cost:        $%.4f (target < $%.4f)\n",
		s.CostUSD.Mean, result.Thresholds.MaxMeanCostUSD)
	if result.Verdicts.Pass() {
		cmd.Println("  Verdict:          PASS")
	} else {
		cmd.Println("  Verdict:          FAIL")
	}
}

func runEvalHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := historysqlite.NewStore(cfg.Eval.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), evalHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No evaluation runs recorded.")
		return nil
	}

	cmd.Printf("%-38s %-20s %9s %9s %11s %8s\n",
		"RUN", "WHEN", "QUESTIONS", "FAILURES", "SIMILARITY", "VERDICT")
	for _, run := range runs {
		verdict := "FAIL"
		if run.Passed {
			verdict = "PASS"
		}
		cmd.Printf("%-38s %-20s %9d %9d %11.3f %8s\n",
			run.RunID, run.GeneratedAt.Format("2006-01-02 15:04:05"),
			run.Questions, run.Failures, run.MeanSimilarity, verdict)
	}
	return nil
}
