package workspace

import (
	"context"
	"fmt"
	"os"

	"github.com/Mimer29or40/GithubPyPI/pkg/git"
)

// ExistingPreparer uses an existing directory as the workspace without
// modification. On an Actions runner the checkout step has already produced
// the working tree, so the pipeline only needs to validate and reuse it.
type ExistingPreparer struct {
	name string
}

// NewExistingPreparer creates a new existing preparer
func NewExistingPreparer() *ExistingPreparer {
	return &ExistingPreparer{
		name: "existing",
	}
}

// Name returns the strategy name
func (p *ExistingPreparer) Name() string {
	return p.name
}

// Validate checks if the request is valid for this preparer
func (p *ExistingPreparer) Validate(req PrepareRequest) error {
	if req.Dest == "" {
		return fmt.Errorf("dest cannot be empty")
	}
	if _, err := os.Stat(req.Dest); os.IsNotExist(err) {
		return fmt.Errorf("dest does not exist: %s", req.Dest)
	}
	return nil
}

// Prepare validates the existing checkout and optionally moves it to the
// requested ref. The directory content is otherwise left untouched.
func (p *ExistingPreparer) Prepare(ctx context.Context, req PrepareRequest) (PrepareResult, error) {
	if err := p.Validate(req); err != nil {
		return PrepareResult{}, fmt.Errorf("validation failed: %w", err)
	}

	result := NewPrepareResult(p.Name())
	result.Source = req.Source
	result.Ref = req.Ref

	client := git.NewClient(req.Dest)
	if !client.IsRepo(ctx) {
		return PrepareResult{}, fmt.Errorf("existing workspace is not a git repository: %s", req.Dest)
	}

	if req.Ref != "" {
		head, err := client.GetHeadSHA(ctx)
		if err != nil {
			return PrepareResult{}, fmt.Errorf("failed to resolve workspace HEAD: %w", err)
		}
		// The runner usually checks out the triggering commit already; only
		// move if the request asks for a different ref.
		if head != req.Ref {
			if err := client.Checkout(ctx, req.Ref); err != nil {
				result.Notes = append(result.Notes, fmt.Sprintf("Warning: failed to checkout ref '%s': %v", req.Ref, err))
			}
		}
	}

	headSHA, err := client.GetHeadSHA(ctx)
	if err != nil {
		return PrepareResult{}, fmt.Errorf("failed to resolve workspace HEAD: %w", err)
	}
	result.HeadSHA = headSHA

	return result, nil
}

// Cleanup for existing strategy is a no-op (we don't own the directory)
func (p *ExistingPreparer) Cleanup(dest string) error {
	return nil
}
