package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mimer29or40/GithubPyPI/pkg/git"
)

// CheckoutPreparer prepares a workspace by cloning the repository and
// checking out the triggering commit. This creates a self-contained checkout
// equivalent to the checkout step of the original workflow.
type CheckoutPreparer struct {
	name string
}

// NewCheckoutPreparer creates a new checkout preparer
func NewCheckoutPreparer() *CheckoutPreparer {
	return &CheckoutPreparer{
		name: "checkout",
	}
}

// Name returns the strategy name
func (p *CheckoutPreparer) Name() string {
	return p.name
}

// Validate checks if the request is valid for this preparer
func (p *CheckoutPreparer) Validate(req PrepareRequest) error {
	if req.Source == "" {
		return fmt.Errorf("source cannot be empty")
	}
	if req.Dest == "" {
		return fmt.Errorf("dest cannot be empty")
	}
	return nil
}

// Prepare creates a workspace by cloning Source and checking out Ref.
// An empty Ref checks out the source's HEAD.
func (p *CheckoutPreparer) Prepare(ctx context.Context, req PrepareRequest) (PrepareResult, error) {
	if err := p.Validate(req); err != nil {
		return PrepareResult{}, fmt.Errorf("validation failed: %w", err)
	}

	result := NewPrepareResult(p.Name())
	result.Source = req.Source
	result.Ref = req.Ref

	if req.CleanDest {
		if err := os.RemoveAll(req.Dest); err != nil {
			return PrepareResult{}, fmt.Errorf("failed to clean destination: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(req.Dest), 0755); err != nil {
		return PrepareResult{}, fmt.Errorf("failed to create parent directory: %w", err)
	}

	client, err := git.Clone(ctx, git.CloneOptions{
		Source: req.Source,
		Dest:   req.Dest,
		Ref:    req.Ref,
		Quiet:  true,
	})
	if err != nil {
		return PrepareResult{}, fmt.Errorf("failed to clone workspace: %w", err)
	}

	headSHA, err := client.GetHeadSHA(ctx)
	if err != nil {
		return PrepareResult{}, fmt.Errorf("failed to resolve workspace HEAD: %w", err)
	}
	result.HeadSHA = headSHA

	return result, nil
}

// Cleanup removes the workspace directory.
func (p *CheckoutPreparer) Cleanup(dest string) error {
	if dest == "" {
		return nil
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	return nil
}
