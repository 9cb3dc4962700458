package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oskarw/kassa/internal/config"
	"github.com/oskarw/kassa/internal/engine"
)

const timeRounding = 10 * time.Millisecond

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Categorize pending transactions",
		Long: `Run the classifier chain over every uncategorized transaction.

High-confidence results are applied immediately; mid-confidence results are
printed as suggestions for manual confirmation; the rest stay uncategorized.

Examples:
  kassa classify
  kassa classify --auto-apply 0.9
  kassa classify --review-floor 0.5`,
		RunE: runClassify,
	}

	cmd.Flags().Float64("auto-apply", 0, "confidence at or above which a category is applied without asking")
	cmd.Flags().Float64("review-floor", 0, "confidence below which a suggestion is discarded")
	_ = viper.BindPFlag("classification.auto_apply_threshold", cmd.Flags().Lookup("auto-apply"))
	_ = viper.BindPFlag("classification.review_floor", cmd.Flags().Lookup("review-floor"))

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	eng, cleanup, err := buildEngine(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.RebuildProfiles(ctx); err != nil {
		return err
	}

	pending, err := db.GetUncategorizedTransactions(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("Nothing to classify.")
		return nil
	}

	bar := progressbar.Default(int64(len(pending)), "classifying")
	report, err := eng.ClassifyBatch(ctx, pending, engine.BatchConfig{
		AutoApplyThreshold: cfg.Classification.AutoApplyThreshold,
		ReviewFloor:        cfg.Classification.ReviewFloor,
		Concurrency:        cfg.Classification.Concurrency,
	}, func(done, _ int) {
		_ = bar.Set(done)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s finished in %s\n", report.RunID, report.Duration.Round(timeRounding))
	fmt.Printf("  applied:    %d\n", report.AutoCount)
	fmt.Printf("  for review: %d\n", len(report.Suggestions))
	fmt.Printf("  skipped:    %d\n", report.SkippedCount)
	if report.FailedCount > 0 {
		fmt.Printf("  failed:     %d\n", report.FailedCount)
	}

	if len(report.Suggestions) > 0 {
		fmt.Println("\nSuggestions needing confirmation:")
		for _, rs := range report.Suggestions {
			fmt.Printf("  %s  %-40s  %10s  ->  %s (%.0f%%, %s)\n",
				rs.Transaction.Date.Format("2006-01-02"),
				truncate(rs.Transaction.Description, 40),
				rs.Transaction.Amount.StringFixed(2),
				rs.Suggested.Category,
				rs.Suggested.Confidence*100,
				rs.Suggested.Method)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
