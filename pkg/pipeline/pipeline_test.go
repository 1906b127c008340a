package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mimer29or40/GithubPyPI/pkg/event"
	"github.com/Mimer29or40/GithubPyPI/pkg/github"
	"github.com/Mimer29or40/GithubPyPI/pkg/publisher"
)

// fakeRunner records whether the tool ran and can be made to fail.
type fakeRunner struct {
	err error
	ran bool
}

func (f *fakeRunner) Run(ctx context.Context) error {
	f.ran = true
	return f.err
}

// fakePublisher records publish calls without touching git.
type fakePublisher struct {
	err    error
	called bool
}

func (f *fakePublisher) Name() string { return "fake" }

func (f *fakePublisher) Validate(req publisher.PublishRequest) error { return nil }

func (f *fakePublisher) Publish(req publisher.PublishRequest) (publisher.PublishResult, error) {
	f.called = true
	if f.err != nil {
		return publisher.PublishResult{Provider: "fake", Branch: req.Branch}, f.err
	}
	return publisher.PublishResult{
		Provider:  "fake",
		Branch:    req.Branch,
		CommitSHA: "abc123",
		Success:   true,
	}, nil
}

// gitOutput runs a git command in dir and returns its trimmed output.
func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// setupWorkspace creates a git repository with one commit and returns its
// path and HEAD SHA.
func setupWorkspace(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	gitOutput(t, dir, "init", "--initial-branch=master")
	gitOutput(t, dir, "config", "user.name", "Test User")
	gitOutput(t, dir, "config", "user.email", "test@example.com")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	gitOutput(t, dir, "add", ".")
	gitOutput(t, dir, "commit", "-m", "initial commit")

	return dir, gitOutput(t, dir, "rev-parse", "HEAD")
}

func eligibleEvent(sha string) *event.Context {
	return &event.Context{
		EventName:  event.EventIssues,
		Ref:        "refs/heads/master",
		SHA:        sha,
		Repository: "Mimer29or40/GithubPyPI",
		Event: event.Payload{
			Action: event.ActionOpened,
			Issue:  &event.Issue{Number: 12, Title: "Add package"},
		},
	}
}

func testOptions(workspace, sha string) Options {
	return Options{
		Event:         eligibleEvent(sha),
		TriggerBranch: "master",
		WorkspaceDir:  workspace,
		OutputBranch:  "generated",
		CommitMessage: "generated",
		Remote:        "origin",
		AuthorName:    "ghpypi-bot",
		AuthorEmail:   "ghpypi-bot@users.noreply.github.com",
		Package:       "warehub",
		Script:        ".github/run_warehub.py",
		Username:      "admin",
		Password:      "hunter2",
	}
}

func stepStatus(result *Result, name string) string {
	for _, step := range result.Steps {
		if step.Name == name {
			return step.Status
		}
	}
	return ""
}

func TestNew_Validation(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	t.Run("valid options", func(t *testing.T) {
		if _, err := New(testOptions(workspace, sha)); err != nil {
			t.Errorf("New() error = %v", err)
		}
	})

	t.Run("missing event", func(t *testing.T) {
		opts := testOptions(workspace, sha)
		opts.Event = nil
		if _, err := New(opts); err == nil {
			t.Error("New() expected error for missing event")
		}
	})

	t.Run("missing workspace", func(t *testing.T) {
		opts := testOptions(workspace, sha)
		opts.WorkspaceDir = ""
		if _, err := New(opts); err == nil {
			t.Error("New() expected error for missing workspace")
		}
	})

	t.Run("missing output branch", func(t *testing.T) {
		opts := testOptions(workspace, sha)
		opts.OutputBranch = ""
		if _, err := New(opts); err == nil {
			t.Error("New() expected error for missing output branch")
		}
	})
}

func TestPipeline_SkipsIneligibleEvent(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	opts := testOptions(workspace, sha)
	opts.Event.EventName = "push"

	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	runner := &fakeRunner{}
	pub := &fakePublisher{}
	p.SetRunner(runner)
	p.SetPublisher(pub)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Skipped {
		t.Error("result.Skipped = false, want true")
	}
	if result.Reason == "" {
		t.Error("result.Reason is empty")
	}
	if runner.ran {
		t.Error("tool ran for an ineligible event")
	}
	if pub.called {
		t.Error("publisher ran for an ineligible event")
	}
}

func TestPipeline_Run(t *testing.T) {
	workspace, sha := setupWorkspace(t)
	resultDir := t.TempDir()

	opts := testOptions(workspace, sha)
	opts.ResultDir = resultDir

	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	runner := &fakeRunner{}
	pub := &fakePublisher{}
	p.SetRunner(runner)
	p.SetPublisher(pub)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Skipped {
		t.Error("result.Skipped = true, want false")
	}
	if !runner.ran {
		t.Error("tool did not run")
	}
	if !pub.called {
		t.Error("publisher did not run")
	}
	for _, name := range []string{"trigger", "workspace", "identity", "branch", "tool", "publish"} {
		if status := stepStatus(result, name); status != StatusOK {
			t.Errorf("step %s = %s, want %s", name, status, StatusOK)
		}
	}
	if status := stepStatus(result, "comment"); status != StatusSkipped {
		t.Errorf("step comment = %s, want %s", status, StatusSkipped)
	}
	if result.Publish == nil || result.Publish.CommitSHA != "abc123" {
		t.Errorf("result.Publish = %+v", result.Publish)
	}

	// The workspace sits on the output branch when the tool runs, so its
	// output lands on the branch the publisher pushes.
	if branch := gitOutput(t, workspace, "rev-parse", "--abbrev-ref", "HEAD"); branch != "generated" {
		t.Errorf("workspace branch = %q, want %q", branch, "generated")
	}

	// The publish result is persisted outside the workspace
	if _, err := os.Stat(filepath.Join(resultDir, publisher.PublishResultFile)); err != nil {
		t.Errorf("publish result was not written: %v", err)
	}
}

func TestPipeline_BranchResetFailureAborts(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	opts := testOptions(workspace, sha)
	opts.OutputBranch = "invalid..name"

	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	runner := &fakeRunner{}
	pub := &fakePublisher{}
	p.SetRunner(runner)
	p.SetPublisher(pub)

	result, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected error for an invalid output branch name")
	}

	if status := stepStatus(result, "branch"); status != StatusFailed {
		t.Errorf("step branch = %s, want %s", status, StatusFailed)
	}
	if runner.ran {
		t.Error("tool ran after a failed branch reset")
	}
	if pub.called {
		t.Error("publisher ran after a failed branch reset")
	}
}

func TestPipeline_ToolFailureAbortsPublish(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	p, err := New(testOptions(workspace, sha))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	runner := &fakeRunner{err: errors.New("tool exploded")}
	pub := &fakePublisher{}
	p.SetRunner(runner)
	p.SetPublisher(pub)

	result, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected error when the tool fails")
	}

	if pub.called {
		t.Error("publisher ran after a failed tool run")
	}
	if status := stepStatus(result, "tool"); status != StatusFailed {
		t.Errorf("step tool = %s, want %s", status, StatusFailed)
	}
	if stepStatus(result, "publish") != "" {
		t.Error("publish step should not be recorded after a tool failure")
	}
}

func TestPipeline_DryRun(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	opts := testOptions(workspace, sha)
	opts.DryRun = true

	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	runner := &fakeRunner{}
	pub := &fakePublisher{}
	p.SetRunner(runner)
	p.SetPublisher(pub)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if runner.ran {
		t.Error("tool ran during a dry run")
	}
	if pub.called {
		t.Error("publisher ran during a dry run")
	}
	if status := stepStatus(result, "tool"); status != StatusSkipped {
		t.Errorf("step tool = %s, want %s", status, StatusSkipped)
	}
	if status := stepStatus(result, "publish"); status != StatusSkipped {
		t.Errorf("step publish = %s, want %s", status, StatusSkipped)
	}
}

func TestPipeline_OutcomeComment(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	var gotRequest, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 1}`)
	}))
	defer srv.Close()

	opts := testOptions(workspace, sha)
	opts.Comment = true
	opts.Token = "test-token"

	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.SetRunner(&fakeRunner{})
	p.SetPublisher(&fakePublisher{})
	p.SetGitHubClient(github.NewClient("test-token", github.WithBaseURL(srv.URL)))

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if status := stepStatus(result, "comment"); status != StatusOK {
		t.Errorf("step comment = %s, want %s", status, StatusOK)
	}
	if want := "POST /repos/Mimer29or40/GithubPyPI/issues/12/comments"; gotRequest != want {
		t.Errorf("request = %q, want %q", gotRequest, want)
	}
	if !strings.Contains(gotBody, "abc123") {
		t.Errorf("comment body = %q, missing the published commit", gotBody)
	}
	if !strings.Contains(gotBody, "generated") {
		t.Errorf("comment body = %q, missing the output branch", gotBody)
	}
}

func TestPipeline_OutcomeCommentRequiresToken(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	opts := testOptions(workspace, sha)
	opts.Comment = true
	// No token: the comment is skipped, not attempted.

	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.SetRunner(&fakeRunner{})
	p.SetPublisher(&fakePublisher{})

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if status := stepStatus(result, "comment"); status != StatusSkipped {
		t.Errorf("step comment = %s, want %s", status, StatusSkipped)
	}
}

func TestPipeline_OutcomeCommentFailureDoesNotFailRun(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	opts := testOptions(workspace, sha)
	opts.Comment = true
	opts.Token = "test-token"

	p, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.SetRunner(&fakeRunner{})
	p.SetPublisher(&fakePublisher{})
	p.SetGitHubClient(github.NewClient("test-token", github.WithBaseURL(srv.URL)))

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, the publish already succeeded", err)
	}

	if status := stepStatus(result, "publish"); status != StatusOK {
		t.Errorf("step publish = %s, want %s", status, StatusOK)
	}
	if status := stepStatus(result, "comment"); status != StatusFailed {
		t.Errorf("step comment = %s, want %s", status, StatusFailed)
	}
}

func TestPipeline_ToolEnv(t *testing.T) {
	workspace, sha := setupWorkspace(t)

	p, err := New(testOptions(workspace, sha))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	env, err := p.ToolEnv()
	if err != nil {
		t.Fatalf("ToolEnv() error = %v", err)
	}

	if env["WAREHUB_USERNAME"] != "admin" {
		t.Errorf("WAREHUB_USERNAME = %q", env["WAREHUB_USERNAME"])
	}
	if env["WAREHUB_PASSWORD"] != "hunter2" {
		t.Errorf("WAREHUB_PASSWORD = %q", env["WAREHUB_PASSWORD"])
	}
	if !strings.Contains(env["GITHUB_CONTEXT"], `"event_name": "issues"`) {
		t.Errorf("GITHUB_CONTEXT = %q, missing event name", env["GITHUB_CONTEXT"])
	}
	if !strings.Contains(env["GITHUB_CONTEXT"], sha) {
		t.Errorf("GITHUB_CONTEXT = %q, missing SHA", env["GITHUB_CONTEXT"])
	}
}
