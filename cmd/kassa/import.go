package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oskarw/kassa/internal/config"
	"github.com/oskarw/kassa/internal/statement"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Import a bank statement export",
		Long: `Import transactions from a semicolon-separated bank statement export.

Rows already imported (same verification reference) are skipped, so importing
overlapping exports is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	transactions, err := statement.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}
	if len(transactions) == 0 {
		fmt.Println("Statement contains no transactions.")
		return nil
	}

	db, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	inserted, err := db.SaveTransactions(ctx, transactions)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d transactions (%d already present).\n",
		inserted, len(transactions)-inserted)
	return nil
}
