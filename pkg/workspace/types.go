// Package workspace prepares the working tree the pipeline operates on: a
// checkout of the repository at the triggering commit.
package workspace

import (
	"context"
	"time"
)

// PrepareRequest contains the parameters for a workspace preparation operation
type PrepareRequest struct {
	// Source is the origin of the workspace content
	// Examples: local path "/path/to/repo", remote URL "https://github.com/owner/repo.git"
	Source string

	// Ref is the git reference to checkout (branch, tag, or SHA).
	// For event-triggered runs this is the triggering commit SHA.
	Ref string

	// Dest is the directory where the workspace will be created
	Dest string

	// CleanDest indicates whether to clean the destination directory before
	// preparation. If true, any existing content at Dest will be removed.
	CleanDest bool
}

// PrepareResult contains the outcome of a workspace preparation operation
type PrepareResult struct {
	// Strategy is the name of the strategy that handled this request
	Strategy string `json:"strategy"`

	// Source is the origin that was used
	Source string `json:"source"`

	// Ref is the git reference that was checked out
	Ref string `json:"ref"`

	// HeadSHA is the commit SHA of the workspace after preparation
	HeadSHA string `json:"head_sha"`

	// CreatedAt is the timestamp when preparation completed
	CreatedAt time.Time `json:"created_at"`

	// Notes contains any additional information about the preparation
	Notes []string `json:"notes,omitempty"`
}

// NewPrepareResult creates a PrepareResult with the strategy and timestamp set.
func NewPrepareResult(strategy string) PrepareResult {
	return PrepareResult{
		Strategy:  strategy,
		CreatedAt: time.Now(),
	}
}

// Preparer is the interface for preparing workspaces
type Preparer interface {
	// Prepare creates a workspace directory at Dest with the requested content
	Prepare(ctx context.Context, req PrepareRequest) (PrepareResult, error)

	// Name returns the strategy name (e.g., "checkout", "existing")
	Name() string

	// Validate checks if the request is valid for this preparer
	// Returns nil if valid, or an error describing what's invalid
	Validate(req PrepareRequest) error

	// Cleanup performs any necessary cleanup after workspace use
	Cleanup(dest string) error
}
