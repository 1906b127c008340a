package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mimer29or40/GithubPyPI/pkg/config"
	"github.com/Mimer29or40/GithubPyPI/pkg/event"
	"github.com/Mimer29or40/GithubPyPI/pkg/git"
	"github.com/Mimer29or40/GithubPyPI/pkg/pipeline"
	"github.com/Mimer29or40/GithubPyPI/pkg/runtime/docker"
	"github.com/Mimer29or40/GithubPyPI/pkg/warehub"
	"github.com/spf13/cobra"
)

var (
	runWorkspace      string
	runSource         string
	runOutputBranch   string
	runCommitMessage  string
	runRemote         string
	runTriggerBranch  string
	runRuntime        string
	runPython         string
	runPackage        string
	runScript         string
	runAuthorName     string
	runAuthorEmail    string
	runResultDir      string
	runCollectContext bool
	runComment        bool
	runDryRun         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the publish pipeline for the triggering event",
	Long: `Run the full publish pipeline for the event in the environment.

The event context is read from GITHUB_CONTEXT (or reassembled from the
GITHUB_* variables on an Actions runner). Events that are not issue
opened/edited events against the trigger branch are skipped cleanly.

The pipeline prepares the workspace, configures the bot commit identity,
runs the warehub tool, and force-pushes the regenerated index to the
output branch.

Examples:
  # On an Actions runner, everything comes from the environment
  ghpypi run

  # Clone fresh instead of using the current checkout
  ghpypi run --source https://github.com/owner/repo.git --workspace ./work

  # Validate the event and workspace without running the tool
  ghpypi run --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(context.Background())
	},
}

func runPipeline(ctx context.Context) error {
	evt, err := event.FromEnv()
	if err != nil {
		return err
	}

	workspace, err := filepath.Abs(runWorkspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace path: %w", err)
	}

	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}

	outputBranch, _ := cfg.ResolveOutputBranch(runOutputBranch)
	commitMessage, _ := cfg.ResolveCommitMessage(runCommitMessage)
	remote, _ := cfg.ResolveRemote(runRemote)
	triggerBranch, _ := cfg.ResolveTriggerBranch(runTriggerBranch)
	runtimeName, _ := cfg.ResolveRuntime(runRuntime)
	pythonVersion, _ := cfg.ResolvePythonVersion(runPython)
	toolPackage, _ := cfg.ResolvePackage(runPackage)
	toolScript, _ := cfg.ResolveScript(runScript)
	authorName, _ := cfg.ResolveString(runAuthorName, cfg.Git.AuthorName, git.DefaultBotName)
	authorEmail, _ := cfg.ResolveString(runAuthorEmail, cfg.Git.AuthorEmail, git.DefaultBotEmail)

	opts := pipeline.Options{
		Event:          evt,
		TriggerBranch:  triggerBranch,
		Source:         runSource,
		WorkspaceDir:   workspace,
		OutputBranch:   outputBranch,
		CommitMessage:  commitMessage,
		Remote:         remote,
		AuthorName:     authorName,
		AuthorEmail:    authorEmail,
		Package:        toolPackage,
		Script:         toolScript,
		PythonVersion:  pythonVersion,
		Username:       os.Getenv(warehub.UsernameEnv),
		Password:       os.Getenv(warehub.PasswordEnv),
		Token:          os.Getenv("GITHUB_TOKEN"),
		CollectContext: runCollectContext,
		Comment:        runComment,
		ResultDir:      runResultDir,
		DryRun:         runDryRun,
	}

	p, err := pipeline.New(opts)
	if err != nil {
		return err
	}

	if runtimeName == "docker" {
		p.SetRunner(&dockerRunner{pipeline: p, config: &docker.ContainerConfig{
			PythonVersion: pythonVersion,
			Workspace:     workspace,
			Package:       toolPackage,
			Script:        toolScript,
		}})
	}

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if result.Skipped {
		return nil
	}

	fmt.Println("Publish pipeline completed.")
	return nil
}

// dockerRunner adapts the docker runtime to the pipeline's tool runner.
// Setup is deferred to Run so an ineligible event never touches the
// Docker daemon.
type dockerRunner struct {
	pipeline *pipeline.Pipeline
	config   *docker.ContainerConfig
}

func (r *dockerRunner) Run(ctx context.Context) error {
	env, err := r.pipeline.ToolEnv()
	if err != nil {
		return err
	}
	if err := warehub.ValidateEnv(env); err != nil {
		return err
	}
	r.config.Env = env

	rt, err := docker.NewRuntime()
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	return rt.RunTool(ctx, r.config)
}

func init() {
	runCmd.Flags().StringVarP(&runWorkspace, "workspace", "w", ".", "Path to workspace")
	runCmd.Flags().StringVar(&runSource, "source", "", "Repository to clone (default: use workspace as-is)")
	runCmd.Flags().StringVarP(&runOutputBranch, "branch", "b", "", "Output branch (default: generated)")
	runCmd.Flags().StringVarP(&runCommitMessage, "message", "m", "", "Commit message for the output branch")
	runCmd.Flags().StringVar(&runRemote, "remote", "", "Git remote to push to (default: origin)")
	runCmd.Flags().StringVar(&runTriggerBranch, "trigger-branch", "", "Branch eligible to trigger a run (default: master)")
	runCmd.Flags().StringVar(&runRuntime, "runtime", "", "Tool runtime: host or docker (default: host)")
	runCmd.Flags().StringVar(&runPython, "python", "", "Python version for the docker runtime (default: 3.x)")
	runCmd.Flags().StringVar(&runPackage, "package", "", "pip package that provides the tool (default: warehub)")
	runCmd.Flags().StringVar(&runScript, "script", "", "Driver script relative to the workspace")
	runCmd.Flags().StringVar(&runAuthorName, "author-name", "", "Commit author name for the output branch")
	runCmd.Flags().StringVar(&runAuthorEmail, "author-email", "", "Commit author email for the output branch")
	runCmd.Flags().StringVarP(&runResultDir, "out", "o", "", "Directory for publish-result.json (default: none)")
	runCmd.Flags().BoolVar(&runCollectContext, "collect-context", false, "Fetch the triggering issue into the workspace before the tool runs")
	runCmd.Flags().BoolVar(&runComment, "comment", false, "Post the publish outcome as a comment on the triggering issue (requires GITHUB_TOKEN)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Stop before the tool runs; nothing is pushed")
	rootCmd.AddCommand(runCmd)
}
