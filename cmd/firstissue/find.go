package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clintrovert/firstissue/internal/api/rest"
	"github.com/clintrovert/firstissue/internal/bootstrap"
	"github.com/clintrovert/firstissue/internal/config"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Curate good first issues for one or more languages",
	Long:  "Runs one search and prints the curated issues as a JSON array on stdout. Logs go to stderr.",
	RunE:  runFind,
}

var (
	findLanguages []string
	findWorkers   int
	findMax       int
	findVerbose   bool
)

func init() {
	findCmd.Flags().StringSliceVarP(&findLanguages, "language", "l", nil, "Language to search; repeat or comma-separate for several (required)")
	findCmd.Flags().IntVar(&findWorkers, "workers", 0, "Issues enriched concurrently (default from CURATION_WORKERS)")
	findCmd.Flags().IntVar(&findMax, "max", 0, "Maximum curated issues (default from CURATION_MAX_RESULTS)")
	findCmd.Flags().BoolVarP(&findVerbose, "verbose", "v", false, "Log pipeline progress to stderr")

	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, _ []string) error {
	languages := make([]string, 0, len(findLanguages))
	for _, language := range findLanguages {
		if language = strings.TrimSpace(language); language != "" {
			languages = append(languages, language)
		}
	}
	if len(languages) == 0 {
		return errors.New(rest.MessageNoLanguages)
	}

	logger := zap.NewNop()
	if findVerbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if findWorkers > 0 {
		cfg.Workers = findWorkers
	}
	if findMax > 0 {
		cfg.MaxResults = findMax
	}

	pipeline, err := bootstrap.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	issues := pipeline.FindGoodFirstIssues(cmd.Context(), languages)

	out, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal curated issues: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
