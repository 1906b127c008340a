// Package git provides a shared utility layer for git operations.
// It wraps system git commands, providing a consistent API for the workspace
// preparer and the pipeline's identity and branch-reset steps. Commit and
// push on the output branch go through the go-git based branch publisher.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// DefaultBotName is the commit identity used on the output branch.
	DefaultBotName = "ghpypi-bot"

	// DefaultBotEmail is the commit email used on the output branch.
	DefaultBotEmail = "ghpypi-bot@users.noreply.github.com"
)

// Client represents a git client for operations on a repository.
type Client struct {
	// Dir is the working directory of the git repository.
	Dir string

	// Options provides optional git configuration.
	Options *ClientOptions
}

// ClientOptions holds configuration for git operations.
type ClientOptions struct {
	// UserName is the git user name for commits.
	UserName string

	// UserEmail is the git user email for commits.
	UserEmail string

	// Quiet suppresses output from git commands.
	Quiet bool
}

// DefaultClientOptions returns the default client options.
func DefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		UserName:  DefaultBotName,
		UserEmail: DefaultBotEmail,
		Quiet:     true,
	}
}

// NewClient creates a new git client for the given directory.
func NewClient(dir string) *Client {
	return &Client{
		Dir:     dir,
		Options: DefaultClientOptions(),
	}
}

// execCommand executes a git command with proper error handling.
func (c *Client) execCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmdArgs := []string{"-C", c.Dir}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}

	return output, nil
}

// quietFlag returns the --quiet flag if enabled.
func (c *Client) quietFlag() string {
	if c.Options != nil && c.Options.Quiet {
		return "--quiet"
	}
	return ""
}

// CloneOptions specifies options for cloning a repository.
type CloneOptions struct {
	// Source is the repository URL or path to clone from.
	Source string

	// Dest is the destination directory.
	Dest string

	// Ref is the reference to checkout after clone (optional).
	Ref string

	// Depth specifies shallow clone depth (0 for full history).
	Depth int

	// Quiet suppresses output.
	Quiet bool
}

// Clone clones a repository and checks out the requested ref.
func Clone(ctx context.Context, opts CloneOptions) (*Client, error) {
	args := []string{"clone"}

	if opts.Quiet {
		args = append(args, "--quiet")
	}

	args = append(args, "--no-checkout")

	if opts.Depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", opts.Depth))
	}

	args = append(args, opts.Source, opts.Dest)

	cmd := exec.CommandContext(ctx, "git", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	client := NewClient(opts.Dest)
	if !client.IsRepo(ctx) {
		return nil, fmt.Errorf("git clone succeeded but destination is not a git repository")
	}

	checkoutRef := opts.Ref
	if checkoutRef == "" {
		checkoutRef = "HEAD"
	}
	if err := client.Checkout(ctx, checkoutRef); err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	return client, nil
}

// IsRepo checks if the directory is a git repository.
func (c *Client) IsRepo(ctx context.Context) bool {
	_, err := c.execCommand(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// GetHeadSHA returns the current HEAD SHA.
func (c *Client) GetHeadSHA(ctx context.Context) (string, error) {
	output, err := c.execCommand(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD SHA: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Checkout checks out a reference (branch, tag, or commit).
func (c *Client) Checkout(ctx context.Context, ref string) error {
	args := []string{"checkout"}
	if q := c.quietFlag(); q != "" {
		args = append(args, q)
	}
	if ref != "" {
		args = append(args, ref)
	}
	_, err := c.execCommand(ctx, args...)
	return err
}

// CheckoutReset creates the named branch at the current HEAD, resetting it
// if it already exists (git checkout -B). This is how the pipeline claims
// the output branch each run, regardless of where its previous tip was.
func (c *Client) CheckoutReset(ctx context.Context, name string) error {
	args := []string{"checkout"}
	if q := c.quietFlag(); q != "" {
		args = append(args, q)
	}
	args = append(args, "-B", name)
	_, err := c.execCommand(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to reset branch %s: %w", name, err)
	}
	return nil
}

// SetConfig sets a git configuration value.
func (c *Client) SetConfig(ctx context.Context, key, value string) error {
	_, err := c.execCommand(ctx, "config", key, value)
	return err
}

// ConfigureIdentity sets the commit identity from the client options.
func (c *Client) ConfigureIdentity(ctx context.Context) error {
	userName := DefaultBotName
	userEmail := DefaultBotEmail
	if c.Options != nil {
		if c.Options.UserName != "" {
			userName = c.Options.UserName
		}
		if c.Options.UserEmail != "" {
			userEmail = c.Options.UserEmail
		}
	}

	if err := c.SetConfig(ctx, "user.name", userName); err != nil {
		return fmt.Errorf("failed to set user.name: %w", err)
	}
	if err := c.SetConfig(ctx, "user.email", userEmail); err != nil {
		return fmt.Errorf("failed to set user.email: %w", err)
	}

	return nil
}
