// Package main implements the firstissue CLI for one-shot curations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "firstissue",
	Short: "Find beginner-friendly GitHub issues",
	Long:  "firstissue searches GitHub for open, unassigned good-first-issue and help-wanted issues in the chosen languages and asks a language model whether each suits a first-time contributor.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
