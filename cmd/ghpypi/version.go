package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Mimer29or40/GithubPyPI/pkg/github"
	"github.com/spf13/cobra"
)

// These variables are set via ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for the ghpypi CLI.

This shows the version number, git commit SHA, and build date.
The version is set at build time via git tags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionCheck {
			return checkForUpdates(cmd.Context())
		}

		fmt.Printf("ghpypi version %s\n", Version)
		if Commit != "" && Commit != "unknown" {
			fmt.Printf("commit: %s\n", Commit)
		}
		if BuildDate != "" && BuildDate != "unknown" {
			fmt.Printf("built at: %s\n", BuildDate)
		}
		return nil
	},
}

// checkForUpdates looks up the latest release and compares tags.
func checkForUpdates(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	fmt.Printf("ghpypi version %s\n", Version)

	// The releases endpoint is public, so the token is optional here
	client := github.NewClient(os.Getenv(github.TokenEnv))
	release, err := client.FetchLatestRelease(ctx, "Mimer29or40", "GithubPyPI")
	if err != nil {
		// Nice-to-have feature: report but don't fail
		fmt.Fprintf(os.Stderr, "Warning: failed to check for updates: %v\n", err)
		return nil
	}

	if release.TagName == Version || "v"+Version == release.TagName {
		fmt.Printf("You're running the latest version (%s)\n", release.TagName)
		return nil
	}

	fmt.Printf("\nA newer version is available!\n")
	fmt.Printf("   Current: %s\n", Version)
	fmt.Printf("   Latest:  %s\n", release.TagName)
	fmt.Printf("   Download: %s\n", release.HTMLURL)

	return nil
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check for newer releases")
	rootCmd.AddCommand(versionCmd)
}
