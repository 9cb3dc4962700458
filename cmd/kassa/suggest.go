package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oskarw/kassa/internal/config"
)

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <transaction-id>",
		Short: "Show what every strategy thinks about one transaction",
		Long: `Run the full classifier chain for a single transaction and print every
suggestion considered, in priority order, without applying anything.`,
		Args: cobra.ExactArgs(1),
		RunE: runSuggest,
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
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

	txn, err := db.GetTransactionByID(ctx, args[0])
	if err != nil {
		return err
	}

	eng, cleanup, err := buildEngine(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.RebuildProfiles(ctx); err != nil {
		return err
	}

	result, err := eng.Classify(ctx, *txn)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s  %s\n", txn.Date.Format("2006-01-02"), txn.Description, txn.Amount.StringFixed(2))

	if len(result.Considered) == 0 {
		fmt.Println("No strategy produced a suggestion.")
		return nil
	}

	fmt.Println("\nConsidered:")
	for _, sug := range result.Considered {
		marker := " "
		if result.Resolved() && sug == result.Winner {
			marker = "*"
		}
		fmt.Printf("  %s %-8s  %-12s  %.0f%%  %s\n",
			marker, sug.Method, sug.Category, sug.Confidence*100, sug.Rationale)
	}

	if !result.Resolved() {
		fmt.Println("\nNo strategy cleared its confidence floor; transaction stays uncategorized.")
	}
	return nil
}
