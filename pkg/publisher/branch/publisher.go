// Package branch implements the branch publisher: the working tree of the
// workspace is committed onto a dedicated output branch and force-pushed,
// so the branch always reflects the latest run.
package branch

import (
	"fmt"
	"os"

	"github.com/Mimer29or40/GithubPyPI/pkg/publisher"
)

const (
	// ProviderName is the name of this publisher provider
	ProviderName = "branch"

	// TokenEnv is the environment variable for the push token
	TokenEnv = "GITHUB_TOKEN"
)

// Publisher implements the publisher.Publisher interface for output branches.
type Publisher struct{}

// NewPublisher creates a new branch publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Name returns the provider name.
func (p *Publisher) Name() string {
	return ProviderName
}

// Validate checks if the request is valid for branch publishing.
func (p *Publisher) Validate(req publisher.PublishRequest) error {
	if req.WorkspaceDir == "" {
		return fmt.Errorf("workspace directory is required")
	}

	if _, err := os.Stat(req.WorkspaceDir); os.IsNotExist(err) {
		return fmt.Errorf("workspace directory does not exist: %s", req.WorkspaceDir)
	}

	if req.Branch == "" {
		return fmt.Errorf("output branch is required")
	}

	if req.CommitMessage == "" {
		return fmt.Errorf("commit message is required")
	}

	return nil
}

// Publish commits the working tree onto the output branch and force-pushes
// it. A clean working tree is not an error: the run is recorded as a no-op
// and nothing is pushed.
func (p *Publisher) Publish(req publisher.PublishRequest) (publisher.PublishResult, error) {
	result := publisher.PublishResult{
		Provider: ProviderName,
		Branch:   req.Branch,
		Actions:  []publisher.PublishAction{},
		Errors:   []publisher.PublishError{},
	}

	token := req.Token
	if token == "" {
		token = os.Getenv(TokenEnv)
	}

	client := NewGitClient(req.WorkspaceDir, token)

	if err := client.EnsureRepository(); err != nil {
		result.Errors = append(result.Errors, publisher.PublishError{
			Message: err.Error(),
			Action:  "ensure_repository",
		})
		return result, err
	}

	if err := client.ResetBranch(req.Branch); err != nil {
		result.Errors = append(result.Errors, publisher.PublishError{
			Message: err.Error(),
			Action:  "reset_branch",
		})
		return result, err
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "reset_branch",
		Description: fmt.Sprintf("Reset branch %s to HEAD", req.Branch),
	})

	commitSHA, committed, err := client.CommitAll(req.CommitMessage, req.AuthorName, req.AuthorEmail)
	if err != nil {
		result.Errors = append(result.Errors, publisher.PublishError{
			Message: err.Error(),
			Action:  "commit",
		})
		return result, err
	}

	if !committed {
		result.Actions = append(result.Actions, publisher.PublishAction{
			Type:        "no_op",
			Description: "Working tree is clean, nothing to publish",
		})
		result.Success = true
		return result, nil
	}

	result.CommitSHA = commitSHA
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "committed",
		Description: fmt.Sprintf("Committed changes: %s", req.CommitMessage),
		Metadata:    map[string]string{"sha": commitSHA},
	})

	remote := req.Remote
	if remote == "" {
		remote = "origin"
	}

	if err := client.Push(req.Branch, remote); err != nil {
		result.Errors = append(result.Errors, publisher.PublishError{
			Message: err.Error(),
			Action:  "push",
		})
		return result, err
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "pushed",
		Description: fmt.Sprintf("Force-pushed %s to %s", req.Branch, remote),
	})

	result.Success = true
	return result, nil
}
