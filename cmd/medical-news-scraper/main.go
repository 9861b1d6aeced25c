package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medical-news-scraper/internal/app"
	"medical-news-scraper/internal/scraper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "medical-news-scraper",
		Short:         "Scrape medical and parenting news sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "configs/config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "optional .env file")

	root.AddCommand(
		newScrapeCmd(flags),
		newListingCmd(flags),
		newRunCmd(flags),
	)
	return root
}

func newScrapeCmd(flags *rootFlags) *cobra.Command {
	var language, category string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape sources once and print records as JSON lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := buildDeps(flags)
			if err != nil {
				return err
			}
			defer deps.Close()

			if language == "" {
				language = deps.cfg.Batch.DefaultLanguage
			}

			ctx, cancel := shutdownContext(cmd, deps)
			defer cancel()

			var records []scraper.Record
			if category != "" {
				records = deps.coordinator.ScrapeByCategory(ctx, category, language)
			} else {
				records = deps.coordinator.ScrapeAll(ctx, language)
			}
			return printJSONLines(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "language code (default from config)")
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	return cmd
}

func newListingCmd(flags *rootFlags) *cobra.Command {
	var sourceName string

	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Collect article cards from a source listing page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := buildDeps(flags)
			if err != nil {
				return err
			}
			defer deps.Close()

			src, ok := deps.registry.Lookup(sourceName)
			if !ok {
				return fmt.Errorf("unknown source: %s", sourceName)
			}

			ctx, cancel := shutdownContext(cmd, deps)
			defer cancel()

			items, err := deps.scraper.ScrapeListing(ctx, src)
			if err != nil {
				return fmt.Errorf("listing %s: %w", src.Name, err)
			}
			return printJSONLines(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVarP(&sourceName, "source", "s", "", "source name")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var language, category string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scrape, summarize and store pipeline on schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := buildDeps(flags)
			if err != nil {
				return err
			}
			defer deps.Close()

			if language == "" {
				language = deps.cfg.Batch.DefaultLanguage
			}

			ctx, cancel := shutdownContext(cmd, deps)
			defer cancel()

			stopMetrics := deps.serveMetrics(ctx)
			defer stopMetrics()

			pipeline, err := deps.pipeline(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			job := app.Job{Language: language, Category: category}
			return deps.scheduler.Run(ctx, func(ctx context.Context) {
				if _, err := pipeline.RunOnce(ctx, job); err != nil {
					deps.logger.Warn("Pipeline run interrupted", "error", err)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "language code (default from config)")
	cmd.Flags().StringVar(&category, "category", "", "category filter")
	return cmd
}
