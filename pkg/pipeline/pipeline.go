// Package pipeline orchestrates a full publish run: trigger evaluation,
// workspace preparation, tool execution, and branch publishing. Steps run
// in a fixed order and the first failure aborts the run, so a failed tool
// run never reaches the push step.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/Mimer29or40/GithubPyPI/pkg/context/issue"
	"github.com/Mimer29or40/GithubPyPI/pkg/event"
	"github.com/Mimer29or40/GithubPyPI/pkg/git"
	"github.com/Mimer29or40/GithubPyPI/pkg/github"
	"github.com/Mimer29or40/GithubPyPI/pkg/publisher"
	"github.com/Mimer29or40/GithubPyPI/pkg/warehub"
	"github.com/Mimer29or40/GithubPyPI/pkg/workspace"
)

// Step status values recorded in the run result.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Options configures a pipeline run.
type Options struct {
	// Event is the triggering event context
	Event *event.Context

	// TriggerBranch is the only branch eligible to trigger a run
	TriggerBranch string

	// Source is the repository to check out. When empty, WorkspaceDir is
	// used as an existing checkout.
	Source string

	// WorkspaceDir is the directory the run operates in
	WorkspaceDir string

	// OutputBranch receives the generated commit
	OutputBranch string

	// CommitMessage is the message for the generated commit
	CommitMessage string

	// Remote is the git remote to push to
	Remote string

	// AuthorName and AuthorEmail form the bot commit identity
	AuthorName  string
	AuthorEmail string

	// Package, Script and PythonVersion configure the publish tool
	Package       string
	Script        string
	PythonVersion string

	// Username and Password are the tool credentials
	Username string
	Password string

	// Token authenticates pushes and API calls
	Token string

	// CollectContext fetches the triggering issue into the workspace
	// before the tool runs
	CollectContext bool

	// Comment posts the publish outcome back to the triggering issue
	// after a successful publish. Requires Token.
	Comment bool

	// ResultDir receives publish-result.json when set
	ResultDir string

	// DryRun stops before the tool runs and nothing is pushed
	DryRun bool
}

// StepResult records the outcome of a single pipeline step.
type StepResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Skipped is true when the event was not eligible to trigger a run
	Skipped bool `json:"skipped"`

	// Reason explains why the run was skipped
	Reason string `json:"reason,omitempty"`

	// Steps lists each step in execution order
	Steps []StepResult `json:"steps"`

	// Publish is the publisher outcome, when the publish step ran
	Publish *publisher.PublishResult `json:"publish,omitempty"`
}

// ToolRunner runs the publish tool against a prepared workspace.
type ToolRunner interface {
	Run(ctx context.Context) error
}

// Pipeline runs the publish sequence for one event.
type Pipeline struct {
	opts   Options
	runner ToolRunner
	pub    publisher.Publisher
	gh     *github.Client
}

// New creates a pipeline for the given options.
func New(opts Options) (*Pipeline, error) {
	if opts.Event == nil {
		return nil, fmt.Errorf("event context is required")
	}
	if opts.WorkspaceDir == "" {
		return nil, fmt.Errorf("workspace directory is required")
	}
	if opts.OutputBranch == "" {
		return nil, fmt.Errorf("output branch is required")
	}
	return &Pipeline{opts: opts}, nil
}

// SetRunner overrides the tool runner. Used by tests and by callers that
// run the tool in a container.
func (p *Pipeline) SetRunner(r ToolRunner) {
	p.runner = r
}

// SetPublisher overrides the publisher. Used by tests.
func (p *Pipeline) SetPublisher(pub publisher.Publisher) {
	p.pub = pub
}

// SetGitHubClient overrides the API client used for the outcome comment.
// Used by tests.
func (p *Pipeline) SetGitHubClient(client *github.Client) {
	p.gh = client
}

func (p *Pipeline) fail(result *Result, step string, err error) (*Result, error) {
	result.Steps = append(result.Steps, StepResult{
		Name:   step,
		Status: StatusFailed,
		Error:  err.Error(),
	})
	return result, fmt.Errorf("%s: %w", step, err)
}

func (p *Pipeline) ok(result *Result, step string) {
	result.Steps = append(result.Steps, StepResult{Name: step, Status: StatusOK})
}

func (p *Pipeline) skip(result *Result, step string) {
	result.Steps = append(result.Steps, StepResult{Name: step, Status: StatusSkipped})
}

// Run executes the pipeline. An ineligible event is not an error: the run
// is reported as skipped and no step after trigger evaluation executes.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{Steps: []StepResult{}}
	opts := p.opts

	// 1. Trigger evaluation
	decision := event.Evaluate(opts.Event, opts.TriggerBranch)
	if !decision.Eligible {
		result.Skipped = true
		result.Reason = decision.Reason
		p.skip(result, "trigger")
		fmt.Printf("Run skipped: %s\n", decision.Reason)
		return result, nil
	}
	p.ok(result, "trigger")

	// 2. Workspace preparation
	if err := p.prepareWorkspace(ctx); err != nil {
		return p.fail(result, "workspace", err)
	}
	p.ok(result, "workspace")

	// 3. Bot identity
	gitClient := git.NewClient(opts.WorkspaceDir)
	if opts.AuthorName != "" {
		gitClient.Options.UserName = opts.AuthorName
	}
	if opts.AuthorEmail != "" {
		gitClient.Options.UserEmail = opts.AuthorEmail
	}
	if err := gitClient.ConfigureIdentity(ctx); err != nil {
		return p.fail(result, "identity", err)
	}
	p.ok(result, "identity")

	// 4. Output branch reset. The branch is claimed at the triggering
	// commit before the tool runs, so the tool's output lands on it
	// directly and the publisher only has to commit and push.
	if err := gitClient.CheckoutReset(ctx, opts.OutputBranch); err != nil {
		return p.fail(result, "branch", err)
	}
	p.ok(result, "branch")

	// 5. Issue context (optional)
	if opts.CollectContext && opts.Event.Event.Issue != nil {
		if err := p.collectContext(ctx); err != nil {
			return p.fail(result, "context", err)
		}
		p.ok(result, "context")
	} else {
		p.skip(result, "context")
	}

	if opts.DryRun {
		fmt.Println("Dry run: skipping tool run and publish.")
		p.skip(result, "tool")
		p.skip(result, "publish")
		p.skip(result, "comment")
		return result, nil
	}

	// 6. Tool run
	if err := p.runTool(ctx); err != nil {
		return p.fail(result, "tool", err)
	}
	p.ok(result, "tool")

	// 7. Publish
	pubResult, err := p.publish()
	result.Publish = pubResult
	if err != nil {
		return p.fail(result, "publish", err)
	}
	p.ok(result, "publish")

	// 8. Outcome comment (optional)
	p.commentOutcome(ctx, result)

	return result, nil
}

// commentOutcome posts the publish outcome back to the triggering issue.
// The publish has already succeeded at this point, so a failed comment is
// recorded and warned about but never fails the run.
func (p *Pipeline) commentOutcome(ctx context.Context, result *Result) {
	opts := p.opts
	if !opts.Comment || opts.Token == "" || opts.Event.Event.Issue == nil {
		p.skip(result, "comment")
		return
	}

	client := p.gh
	if client == nil {
		client = github.NewClient(opts.Token)
	}

	number := opts.Event.Event.Issue.Number
	_, err := client.CreateIssueComment(ctx, opts.Event.Owner(), opts.Event.Name(), number, outcomeBody(result.Publish))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to comment on issue #%d: %v\n", number, err)
		result.Steps = append(result.Steps, StepResult{
			Name:   "comment",
			Status: StatusFailed,
			Error:  err.Error(),
		})
		return
	}
	p.ok(result, "comment")
}

// outcomeBody renders the publish result as an issue comment.
func outcomeBody(pub *publisher.PublishResult) string {
	if pub == nil {
		return "Publish pipeline completed."
	}
	for _, action := range pub.Actions {
		if action.Type == "no_op" {
			return fmt.Sprintf("Publish pipeline completed: no changes to publish on `%s`.", pub.Branch)
		}
	}
	return fmt.Sprintf("Publish pipeline completed: `%s` is now at %s.", pub.Branch, pub.CommitSHA)
}

func (p *Pipeline) prepareWorkspace(ctx context.Context) error {
	opts := p.opts

	var preparer workspace.Preparer
	if opts.Source != "" {
		preparer = workspace.NewCheckoutPreparer()
	} else {
		preparer = workspace.NewExistingPreparer()
	}

	req := workspace.PrepareRequest{
		Source: opts.Source,
		Ref:    opts.Event.SHA,
		Dest:   opts.WorkspaceDir,
	}
	if opts.Source == "" {
		req.Source = opts.WorkspaceDir
	}

	result, err := preparer.Prepare(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Workspace ready at %s (%s)\n", opts.WorkspaceDir, result.Strategy)
	return nil
}

func (p *Pipeline) collectContext(ctx context.Context) error {
	opts := p.opts

	collector := issue.NewCollector(issue.CollectorConfig{
		Owner:     opts.Event.Owner(),
		Repo:      opts.Event.Name(),
		IssueNum:  opts.Event.Event.Issue.Number,
		Token:     opts.Token,
		OutputDir: opts.WorkspaceDir,
	})
	return collector.Collect(ctx)
}

// ToolEnv builds the environment the publish tool runs with.
func (p *Pipeline) ToolEnv() (map[string]string, error) {
	raw, err := p.opts.Event.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event context: %w", err)
	}
	return map[string]string{
		warehub.ContextEnv:  string(raw),
		warehub.UsernameEnv: p.opts.Username,
		warehub.PasswordEnv: p.opts.Password,
	}, nil
}

func (p *Pipeline) runTool(ctx context.Context) error {
	if p.runner != nil {
		return p.runner.Run(ctx)
	}

	env, err := p.ToolEnv()
	if err != nil {
		return err
	}

	runner := warehub.NewRunner(p.opts.WorkspaceDir, p.opts.Package, p.opts.Script, env)
	return runner.Run(ctx)
}

func (p *Pipeline) publish() (*publisher.PublishResult, error) {
	pub := p.pub
	if pub == nil {
		pub = publisher.Get("branch")
	}
	if pub == nil {
		return nil, fmt.Errorf("publisher 'branch' not found")
	}

	req := publisher.PublishRequest{
		WorkspaceDir:  p.opts.WorkspaceDir,
		Remote:        p.opts.Remote,
		Branch:        p.opts.OutputBranch,
		CommitMessage: p.opts.CommitMessage,
		AuthorName:    p.opts.AuthorName,
		AuthorEmail:   p.opts.AuthorEmail,
		Token:         p.opts.Token,
	}

	if err := pub.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	result, err := pub.Publish(req)
	if err != nil {
		return &result, fmt.Errorf("publish failed: %w", err)
	}

	if result.Success {
		for _, action := range result.Actions {
			fmt.Printf("  - %s\n", action.Description)
		}
	} else {
		fmt.Println("Publish completed with errors")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e.Message)
		}
	}

	// The result file lands outside the workspace so it is never
	// committed onto the output branch.
	if p.opts.ResultDir != "" {
		if err := publisher.WriteResult(p.opts.ResultDir, result); err != nil {
			return &result, fmt.Errorf("failed to write publish result: %w", err)
		}
	}

	return &result, nil
}
