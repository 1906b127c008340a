package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mimer29or40/GithubPyPI/pkg/config"
	"github.com/Mimer29or40/GithubPyPI/pkg/git"
	"github.com/Mimer29or40/GithubPyPI/pkg/publisher"
	"github.com/spf13/cobra"
)

var (
	publishProvider    string
	publishWorkspace   string
	publishBranch      string
	publishMessage     string
	publishRemote      string
	publishAuthorName  string
	publishAuthorEmail string
	publishResultDir   string
	publishDryRun      bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the workspace working tree to the output branch",
	Long: `Publish the current working tree to the output branch without running
the rest of the pipeline.

This is the last pipeline step exposed on its own, useful when the tool
has already run and only the push failed.

Examples:
  ghpypi publish
  ghpypi publish --branch generated --message generated
  ghpypi publish --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := publisher.Get(publishProvider)
		if p == nil {
			list := publisher.List()
			if len(list) == 0 {
				return fmt.Errorf("no publishers available")
			}
			return fmt.Errorf("publisher '%s' not found", publishProvider)
		}

		workspace, err := filepath.Abs(publishWorkspace)
		if err != nil {
			return fmt.Errorf("failed to resolve workspace path: %w", err)
		}

		cfg, err := config.Load(workspace)
		if err != nil {
			return err
		}

		branchName, _ := cfg.ResolveOutputBranch(publishBranch)
		message, _ := cfg.ResolveCommitMessage(publishMessage)
		remote, _ := cfg.ResolveRemote(publishRemote)
		authorName, _ := cfg.ResolveString(publishAuthorName, cfg.Git.AuthorName, git.DefaultBotName)
		authorEmail, _ := cfg.ResolveString(publishAuthorEmail, cfg.Git.AuthorEmail, git.DefaultBotEmail)

		req := publisher.PublishRequest{
			WorkspaceDir:  workspace,
			Remote:        remote,
			Branch:        branchName,
			CommitMessage: message,
			AuthorName:    authorName,
			AuthorEmail:   authorEmail,
			Token:         os.Getenv("GITHUB_TOKEN"),
		}

		if err := p.Validate(req); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		if publishDryRun {
			fmt.Println("Dry run: validation passed")
			return nil
		}

		result, err := p.Publish(req)
		if err != nil {
			return fmt.Errorf("publish failed: %w", err)
		}

		if publishResultDir != "" {
			if err := publisher.WriteResult(publishResultDir, result); err != nil {
				return fmt.Errorf("failed to write publish result: %w", err)
			}
		}

		if result.Success {
			fmt.Printf("Successfully published %s using provider '%s'\n", result.Branch, result.Provider)
			for _, action := range result.Actions {
				fmt.Printf("  - %s\n", action.Description)
			}
		} else {
			fmt.Printf("Publish completed with errors\n")
			for _, e := range result.Errors {
				fmt.Printf("  - %s\n", e.Message)
			}
		}

		return nil
	},
}

var publishListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available publishers",
	RunE: func(cmd *cobra.Command, args []string) error {
		list := publisher.List()
		if len(list) == 0 {
			fmt.Println("No publishers are currently registered")
			return nil
		}

		fmt.Println("Available publishers:")
		for _, name := range list {
			fmt.Printf("  - %s\n", name)
		}

		return nil
	},
}

var publishInfoCmd = &cobra.Command{
	Use:   "info <provider>",
	Short: "Show information about a publisher",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		p := publisher.Get(name)
		if p == nil {
			return fmt.Errorf("publisher '%s' not found", name)
		}

		fmt.Printf("Publisher: %s\n", p.Name())
		fmt.Println("\nThis publisher can be used with:")
		fmt.Printf("  ghpypi publish --provider %s\n", name)

		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishProvider, "provider", "branch", "Publisher name")
	publishCmd.Flags().StringVarP(&publishWorkspace, "workspace", "w", ".", "Path to workspace")
	publishCmd.Flags().StringVarP(&publishBranch, "branch", "b", "", "Output branch (default: generated)")
	publishCmd.Flags().StringVarP(&publishMessage, "message", "m", "", "Commit message for the output branch")
	publishCmd.Flags().StringVar(&publishRemote, "remote", "", "Git remote to push to (default: origin)")
	publishCmd.Flags().StringVar(&publishAuthorName, "author-name", "", "Commit author name")
	publishCmd.Flags().StringVar(&publishAuthorEmail, "author-email", "", "Commit author email")
	publishCmd.Flags().StringVarP(&publishResultDir, "out", "o", "", "Directory for publish-result.json (default: none)")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Validate without publishing")

	publishCmd.AddCommand(publishListCmd)
	publishCmd.AddCommand(publishInfoCmd)
	rootCmd.AddCommand(publishCmd)
}
