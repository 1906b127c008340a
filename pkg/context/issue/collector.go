// Package issue provides context collection for the triggering GitHub issue.
// The collected files give the publish tool a normalized view of the issue
// alongside the raw event context it receives via the environment.
package issue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mimer29or40/GithubPyPI/pkg/github"
)

// CollectorConfig holds configuration for collecting issue context
type CollectorConfig struct {
	Owner     string
	Repo      string
	IssueNum  int
	Token     string
	OutputDir string
}

// Collector orchestrates the collection of issue context
type Collector struct {
	client *github.Client
	config CollectorConfig
}

// NewCollector creates a new issue Collector
func NewCollector(config CollectorConfig) *Collector {
	return &Collector{
		client: github.NewClient(config.Token),
		config: config,
	}
}

// SetClient replaces the GitHub client, primarily for tests.
func (c *Collector) SetClient(client *github.Client) {
	c.client = client
}

// IssueContext holds the collected issue context
type IssueContext struct {
	Info     *github.IssueInfo     `json:"info"`
	Comments []github.IssueComment `json:"comments"`
}

// Collect gathers all issue context and writes it to the output directory
func (c *Collector) Collect(ctx context.Context) error {
	fmt.Printf("Collecting issue context for %s/%s#%d...\n", c.config.Owner, c.config.Repo, c.config.IssueNum)

	issueInfo, err := c.client.FetchIssueInfo(ctx, c.config.Owner, c.config.Repo, c.config.IssueNum)
	if err != nil {
		return fmt.Errorf("failed to fetch issue info: %w", err)
	}
	fmt.Printf("  Issue #%d: %s\n", issueInfo.Number, issueInfo.Title)

	comments, err := c.client.FetchIssueComments(ctx, c.config.Owner, c.config.Repo, c.config.IssueNum)
	if err != nil {
		return fmt.Errorf("failed to fetch issue comments: %w", err)
	}
	fmt.Printf("  Found %d comments\n", len(comments))

	if err := c.writeContext(issueInfo, comments); err != nil {
		return fmt.Errorf("failed to write context: %w", err)
	}

	fmt.Printf("Context written to %s/github/\n", c.config.OutputDir)

	return nil
}

// writeContext writes the issue context to files
func (c *Collector) writeContext(info *github.IssueInfo, comments []github.IssueComment) error {
	githubDir := filepath.Join(c.config.OutputDir, "github")
	if err := os.MkdirAll(githubDir, 0755); err != nil {
		return fmt.Errorf("failed to create github directory: %w", err)
	}

	issueData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal issue info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(githubDir, "issue.json"), issueData, 0644); err != nil {
		return fmt.Errorf("failed to write issue.json: %w", err)
	}

	commentsData, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}
	if err := os.WriteFile(filepath.Join(githubDir, "issue_comments.json"), commentsData, 0644); err != nil {
		return fmt.Errorf("failed to write issue_comments.json: %w", err)
	}

	return nil
}
