// Package publisher defines the contract for publishing pipeline outputs,
// and a registry of the available providers.
package publisher

import "time"

// PublishRequest contains the input parameters for a publish operation.
type PublishRequest struct {
	// WorkspaceDir is the git checkout whose working tree is published
	WorkspaceDir string

	// Remote is the git remote to push to (e.g. "origin")
	Remote string

	// Branch is the output branch that receives the publish commit
	Branch string

	// CommitMessage is the message for the publish commit
	CommitMessage string

	// AuthorName is the commit author name
	AuthorName string

	// AuthorEmail is the commit author email
	AuthorEmail string

	// Token is the optional authentication token for push operations
	Token string
}

// PublishAction represents a single action taken during publishing.
type PublishAction struct {
	// Type is the kind of action performed
	// Examples: "reset_branch", "committed", "pushed", "no_op"
	Type string `json:"type"`

	// Description provides human-readable details about the action
	Description string `json:"description"`

	// Metadata contains additional action-specific information
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PublishError represents an error that occurred during publishing.
type PublishError struct {
	// Message is the error message
	Message string `json:"message"`

	// Action is the action that failed (if applicable)
	Action string `json:"action,omitempty"`
}

// PublishResult contains the outcome of a publish operation.
type PublishResult struct {
	// Provider is the name of the publisher that handled this request
	Provider string `json:"provider"`

	// Branch is the output branch that was published
	Branch string `json:"branch"`

	// CommitSHA is the tip of the output branch after publishing, when a
	// commit was created
	CommitSHA string `json:"commit_sha,omitempty"`

	// PublishedAt is the timestamp when publishing completed
	PublishedAt time.Time `json:"published_at"`

	// Actions is a list of actions taken during publishing
	Actions []PublishAction `json:"actions"`

	// Errors contains any errors that occurred during publishing
	Errors []PublishError `json:"errors,omitempty"`

	// Success indicates whether the overall publish operation succeeded
	Success bool `json:"success"`
}

// Publisher is the interface for publishing pipeline outputs.
type Publisher interface {
	// Name returns the provider name (e.g. "branch")
	Name() string

	// Validate checks if the request is valid for this publisher.
	// Returns nil if valid, or an error describing what's invalid.
	Validate(req PublishRequest) error

	// Publish sends the working tree to the output target.
	// It returns a PublishResult describing what actions were taken.
	Publish(req PublishRequest) (PublishResult, error)
}
