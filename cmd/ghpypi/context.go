package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Mimer29or40/GithubPyPI/pkg/context/issue"
	"github.com/Mimer29or40/GithubPyPI/pkg/event"
	"github.com/spf13/cobra"
)

var (
	contextRepo   string
	contextOutDir string
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Collect event context for the publish tool",
}

var contextIssueCmd = &cobra.Command{
	Use:   "issue <number>",
	Short: "Collect a GitHub issue and its comments",
	Long: `Fetch an issue and its comments and write them as JSON files under
github/ in the output directory.

The repository defaults to the one in the event context; pass --repo to
override it.

Examples:
  ghpypi context issue 123 --repo owner/repo
  ghpypi context issue 123 --out ./context`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
		if err != nil {
			return fmt.Errorf("invalid issue number: %s", args[0])
		}

		repo := contextRepo
		if repo == "" {
			if evt, err := event.FromEnv(); err == nil {
				repo = evt.Repository
			}
		}
		owner, name, ok := strings.Cut(repo, "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("repository is required in owner/repo format (--repo)")
		}

		token, err := getGitHubToken()
		if err != nil {
			return err
		}

		collector := issue.NewCollector(issue.CollectorConfig{
			Owner:     owner,
			Repo:      name,
			IssueNum:  number,
			Token:     token,
			OutputDir: contextOutDir,
		})
		if err := collector.Collect(context.Background()); err != nil {
			return fmt.Errorf("failed to collect issue context: %w", err)
		}

		fmt.Printf("Collected issue %s#%d into %s\n", repo, number, contextOutDir)
		return nil
	},
}

// getGitHubToken retrieves the GitHub token from environment variables
func getGitHubToken() (string, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GH_TOKEN")
	}
	if token == "" {
		return "", fmt.Errorf("GITHUB_TOKEN or GH_TOKEN environment variable is required")
	}
	return token, nil
}

func init() {
	contextIssueCmd.Flags().StringVar(&contextRepo, "repo", "", "Repository in owner/repo format")
	contextIssueCmd.Flags().StringVarP(&contextOutDir, "out", "o", "./context", "Output directory")

	contextCmd.AddCommand(contextIssueCmd)
	rootCmd.AddCommand(contextCmd)
}
