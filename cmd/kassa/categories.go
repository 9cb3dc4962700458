package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oskarw/kassa/internal/config"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List spending categories and their keywords",
		RunE:  runCategories,
	}
}

func runCategories(cmd *cobra.Command, _ []string) error {
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

	categories, err := db.GetCategories(ctx)
	if err != nil {
		return err
	}

	for _, cat := range categories {
		fmt.Printf("%-12s %s\n", cat.Name, strings.Join(cat.Keywords, ", "))
	}
	return nil
}
