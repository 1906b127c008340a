// Package event parses the GitHub Actions context that triggers a publish
// run. The context arrives either as the GITHUB_CONTEXT JSON blob the
// workflow exports, or as the event payload file the runner writes to
// GITHUB_EVENT_PATH.
package event

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// ContextEnv is the environment variable carrying the full workflow
	// context as JSON (the `toJson(github)` expression in the workflow).
	ContextEnv = "GITHUB_CONTEXT"

	// EventPathEnv is the environment variable pointing at the raw event
	// payload file on an Actions runner.
	EventPathEnv = "GITHUB_EVENT_PATH"

	// EventNameEnv is the environment variable naming the event type on an
	// Actions runner.
	EventNameEnv = "GITHUB_EVENT_NAME"

	// RefEnv is the environment variable carrying the git ref on an Actions
	// runner.
	RefEnv = "GITHUB_REF"

	// SHAEnv is the environment variable carrying the triggering commit SHA
	// on an Actions runner.
	SHAEnv = "GITHUB_SHA"

	// RepositoryEnv is the environment variable carrying the owner/name
	// slug on an Actions runner.
	RepositoryEnv = "GITHUB_REPOSITORY"

	// ActorEnv is the environment variable carrying the triggering user on
	// an Actions runner.
	ActorEnv = "GITHUB_ACTOR"
)

// Context captures the workflow context fields the pipeline consumes.
type Context struct {
	// EventName is the GitHub event name, e.g. "issues" or "push".
	EventName string `json:"event_name"`

	// Ref is the git ref associated with the event, e.g. "refs/heads/master".
	Ref string `json:"ref"`

	// SHA is the commit the workflow was triggered against.
	SHA string `json:"sha"`

	// Repository is the "owner/name" slug of the repository.
	Repository string `json:"repository"`

	// Actor is the login of the user that triggered the event.
	Actor string `json:"actor"`

	// Event is the raw webhook payload for the event.
	Event Payload `json:"event"`
}

// Payload is the webhook payload embedded in the workflow context.
type Payload struct {
	// Action is the event subtype, e.g. "opened" or "edited" for issues.
	Action string `json:"action"`

	// Issue is the issue the event refers to (nil for non-issue events).
	Issue *Issue `json:"issue,omitempty"`

	// Repository is the repository block of the payload.
	Repository *Repository `json:"repository,omitempty"`
}

// Issue holds the subset of the issue payload the pipeline cares about.
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
	User    User   `json:"user"`
}

// User identifies a GitHub user in an event payload.
type User struct {
	Login string `json:"login"`
}

// Repository holds the repository block of an event payload.
type Repository struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	CloneURL      string `json:"clone_url"`
}

// Parse decodes a workflow context from its JSON representation.
func Parse(data []byte) (*Context, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("event context is empty")
	}

	var ctx Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("failed to parse event context: %w", err)
	}

	return &ctx, nil
}

// FromEnv loads the workflow context from the environment.
//
// GITHUB_CONTEXT takes precedence when set. Otherwise the context is
// reassembled from the individual GITHUB_* variables an Actions runner
// exports, with the payload read from GITHUB_EVENT_PATH.
func FromEnv() (*Context, error) {
	if raw := os.Getenv(ContextEnv); raw != "" {
		return Parse([]byte(raw))
	}

	eventPath := os.Getenv(EventPathEnv)
	if eventPath == "" {
		return nil, fmt.Errorf("neither %s nor %s is set", ContextEnv, EventPathEnv)
	}

	data, err := os.ReadFile(eventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}

	return &Context{
		EventName:  os.Getenv(EventNameEnv),
		Ref:        os.Getenv(RefEnv),
		SHA:        os.Getenv(SHAEnv),
		Repository: os.Getenv(RepositoryEnv),
		Actor:      os.Getenv(ActorEnv),
		Event:      payload,
	}, nil
}

// Branch returns the branch name of the context's ref, stripping the
// refs/heads/ prefix when present. Tag refs return an empty string.
func (c *Context) Branch() string {
	if strings.HasPrefix(c.Ref, "refs/tags/") {
		return ""
	}
	if strings.HasPrefix(c.Ref, "refs/heads/") {
		return strings.TrimPrefix(c.Ref, "refs/heads/")
	}
	return c.Ref
}

// Owner returns the owner half of the repository slug.
func (c *Context) Owner() string {
	owner, _, _ := strings.Cut(c.Repository, "/")
	return owner
}

// Name returns the name half of the repository slug.
func (c *Context) Name() string {
	_, name, _ := strings.Cut(c.Repository, "/")
	return name
}

// Marshal re-encodes the context as indented JSON, suitable for handing to
// the publish tool via its environment.
func (c *Context) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event context: %w", err)
	}
	return data, nil
}
