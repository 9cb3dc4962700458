package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oskarw/kassa/internal/config"
	"github.com/oskarw/kassa/internal/learned"
)

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show what the statistical classifier has learned",
		Long: `Build the learning profile from all confirmed transactions and print a
per-category summary: sample counts, typical amounts and the most common
description words.`,
		RunE: runProfile,
	}
}

func runProfile(cmd *cobra.Command, _ []string) error {
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

	transactions, err := db.GetClassifiedTransactions(ctx)
	if err != nil {
		return err
	}
	categories, err := db.GetCategories(ctx)
	if err != nil {
		return err
	}

	profile := learned.BuildProfile(transactions, categories, cfg.Classification.MinProfileSamples)
	if profile.Empty() {
		fmt.Printf("No profile yet: need at least %d confirmed transactions per category.\n",
			cfg.Classification.MinProfileSamples)
		return nil
	}

	names := make([]string, 0, len(profile.Categories))
	for name := range profile.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Profile built from %d confirmed transactions\n\n", len(transactions))
	for _, name := range names {
		cp := profile.Categories[name]
		fmt.Printf("%s (%d samples)\n", name, cp.SampleCount)
		fmt.Printf("  amounts: mean %.2f, range %.2f to %.2f\n",
			cp.MeanAmount, cp.MinAmount, cp.MaxAmount)
		if len(cp.CommonWords) > 0 {
			fmt.Printf("  words:   %s\n", strings.Join(cp.CommonWords, ", "))
		}
	}
	return nil
}
