package main

import (
	"fmt"
	"os"

	"github.com/Mimer29or40/GithubPyPI/pkg/publisher"
	"github.com/Mimer29or40/GithubPyPI/pkg/publisher/branch"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ghpypi",
	Short: "ghpypi publishes Python packages to a GitHub-hosted package index.",
	Long: `ghpypi drives the package index publish pipeline.

When an issue is opened or edited against the trigger branch, the pipeline
checks out the repository, runs the warehub publish tool against it, and
force-pushes the regenerated index to the output branch.`,
}

func main() {
	if err := publisher.Register(branch.NewPublisher()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
