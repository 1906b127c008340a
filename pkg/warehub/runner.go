// Package warehub runs the warehub publish tool against a prepared
// workspace. The tool itself is an external Python program: this package
// only installs it and invokes the driver script with the environment the
// tool expects.
package warehub

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// ContextEnv carries the serialized event context for the tool
	ContextEnv = "GITHUB_CONTEXT"

	// UsernameEnv is the repository username the tool authenticates with
	UsernameEnv = "WAREHUB_USERNAME"

	// PasswordEnv is the repository password the tool authenticates with
	PasswordEnv = "WAREHUB_PASSWORD"

	// DefaultPython is the interpreter used when none is configured
	DefaultPython = "python"
)

// RequiredEnv lists the environment variables the tool needs. Each must be
// present and non-empty before the tool is started.
var RequiredEnv = []string{ContextEnv, UsernameEnv, PasswordEnv}

// Runner installs and runs the publish tool in a workspace.
type Runner struct {
	// WorkspaceDir is the directory the tool runs in
	WorkspaceDir string

	// Package is the pip package that provides the tool
	Package string

	// Script is the driver script, relative to the workspace
	Script string

	// Python is the interpreter to use (default: "python")
	Python string

	// Env holds the tool environment (context and credentials)
	Env map[string]string

	// Stdout and Stderr receive the tool output (default: os.Stdout/os.Stderr)
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a runner for the given workspace.
func NewRunner(workspaceDir, pkg, script string, env map[string]string) *Runner {
	return &Runner{
		WorkspaceDir: workspaceDir,
		Package:      pkg,
		Script:       script,
		Env:          env,
	}
}

// ValidateEnv checks that every required environment variable is present
// and non-empty. Values are never included in the error.
func ValidateEnv(env map[string]string) error {
	var missing []string
	for _, key := range RequiredEnv {
		if env[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// Validate checks the runner configuration without touching the system.
func (r *Runner) Validate() error {
	if r.WorkspaceDir == "" {
		return fmt.Errorf("workspace directory is required")
	}
	if r.Package == "" {
		return fmt.Errorf("package name is required")
	}
	if r.Script == "" {
		return fmt.Errorf("driver script is required")
	}
	if err := ValidateEnv(r.Env); err != nil {
		return err
	}

	scriptPath := filepath.Join(r.WorkspaceDir, r.Script)
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return fmt.Errorf("driver script does not exist: %s", r.Script)
	}

	return nil
}

// Install installs the tool package with pip.
func (r *Runner) Install(ctx context.Context) error {
	fmt.Printf("Installing %s...\n", r.Package)

	cmd := exec.CommandContext(ctx, r.python(), "-m", "pip", "install", r.Package)
	cmd.Dir = r.WorkspaceDir
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to install %s: %w", r.Package, err)
	}

	return nil
}

// Run validates the configuration, installs the tool, and executes the
// driver script. The script inherits the process environment plus the
// runner environment. Any failure aborts before later steps run.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if err := r.Install(ctx); err != nil {
		return err
	}

	fmt.Printf("Running %s...\n", r.Script)

	cmd := exec.CommandContext(ctx, r.python(), r.Script)
	cmd.Dir = r.WorkspaceDir
	cmd.Env = buildEnv(os.Environ(), r.Env)
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tool run failed: %w", err)
	}

	return nil
}

func (r *Runner) python() string {
	if r.Python != "" {
		return r.Python
	}
	return DefaultPython
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// buildEnv merges extra variables over a base environment, with extra
// values taking precedence. Keys are emitted in sorted order so the
// result is deterministic.
func buildEnv(base []string, extra map[string]string) []string {
	env := make([]string, 0, len(base)+len(extra))

	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := extra[key]; ok {
			continue
		}
		env = append(env, kv)
	}

	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env = append(env, fmt.Sprintf("%s=%s", key, extra[key]))
	}

	return env
}
