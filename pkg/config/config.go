// Package config provides project-level configuration for the publish
// pipeline. It supports loading configuration from .ghpypi/config.yaml files
// with proper precedence: CLI flags > project config > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name for pipeline configuration
	ConfigDir = ".ghpypi"
	// ConfigFile is the name of the configuration file
	ConfigFile = "config.yaml"
	// ConfigPath is the full path to the config file relative to project root
	ConfigPath = ConfigDir + "/" + ConfigFile
)

// Built-in defaults. These mirror the original workflow: a `generated`
// branch receiving commits with message `generated`, triggered from master.
const (
	DefaultOutputBranch  = "generated"
	DefaultCommitMessage = "generated"
	DefaultRemote        = "origin"
	DefaultTriggerBranch = "master"
	DefaultPythonVersion = "3.x"
	DefaultScript        = ".github/run_warehub.py"
	DefaultPackage       = "warehub"
	DefaultRuntime       = "host"
)

// ProjectConfig represents the project-level configuration for the pipeline.
// It provides defaults that can be overridden by CLI flags.
type ProjectConfig struct {
	// OutputBranch is the branch the pipeline publishes to
	OutputBranch string `yaml:"output_branch,omitempty"`

	// CommitMessage is the message for publish commits
	CommitMessage string `yaml:"commit_message,omitempty"`

	// Remote is the git remote to push to
	Remote string `yaml:"remote,omitempty"`

	// TriggerBranch is the branch issue events must target
	TriggerBranch string `yaml:"trigger_branch,omitempty"`

	// Runtime selects how the publish tool runs ("host" or "docker")
	Runtime string `yaml:"runtime,omitempty"`

	// Git configuration for the bot commit identity
	Git GitConfig `yaml:"git,omitempty"`

	// Warehub configuration for the external publish tool
	Warehub WarehubConfig `yaml:"warehub,omitempty"`
}

// GitConfig contains the commit identity used on the output branch.
type GitConfig struct {
	// AuthorName is the git user.name for publish commits
	AuthorName string `yaml:"author_name,omitempty"`

	// AuthorEmail is the git user.email for publish commits
	AuthorEmail string `yaml:"author_email,omitempty"`
}

// WarehubConfig describes how to install and invoke the external publish
// tool. The tool itself is a black box: the pipeline only installs it, runs
// the helper script, and inspects the exit status.
type WarehubConfig struct {
	// Package is the pip package spec to install (e.g. "warehub" or
	// "warehub==1.2.0")
	Package string `yaml:"package,omitempty"`

	// Script is the helper script to run after installation
	Script string `yaml:"script,omitempty"`

	// PythonVersion is the Python toolchain version to provision
	// (the workflow matrix value, e.g. "3.x" or "3.11")
	PythonVersion string `yaml:"python_version,omitempty"`
}

// Load loads the project configuration from the given directory.
// It searches for .ghpypi/config.yaml in the directory and its parents.
//
// If no config file is found, it returns a zero config and nil error.
// If a config file is found but cannot be parsed, it returns an error.
func Load(dir string) (*ProjectConfig, error) {
	configPath, err := findConfigPath(dir)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		// No config file found, return zero config
		return &ProjectConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads the project configuration from the current working directory.
func LoadFromCurrentDir() (*ProjectConfig, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return Load(dir)
}

// findConfigPath searches for .ghpypi/config.yaml in dir and its parent directories.
// It returns the full path to the config file, or empty string if not found.
func findConfigPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Search upward through directory tree
	for {
		configPath := filepath.Join(absDir, ConfigPath)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Move to parent directory
		parentDir := filepath.Dir(absDir)
		if parentDir == absDir {
			// Reached root without finding config
			return "", nil
		}
		absDir = parentDir
	}
}

// ResolveString returns the effective value for a string configuration field.
// Precedence: cliValue > configValue > defaultValue.
// Returns the effective value and its source ("cli", "config", or "default").
func (c *ProjectConfig) ResolveString(cliValue, configValue, defaultValue string) (string, string) {
	if cliValue != "" {
		return cliValue, "cli"
	}
	if configValue != "" {
		return configValue, "config"
	}
	return defaultValue, "default"
}

// ResolveOutputBranch returns the effective output branch and its source.
func (c *ProjectConfig) ResolveOutputBranch(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.OutputBranch, DefaultOutputBranch)
}

// ResolveCommitMessage returns the effective commit message and its source.
func (c *ProjectConfig) ResolveCommitMessage(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.CommitMessage, DefaultCommitMessage)
}

// ResolveRemote returns the effective remote name and its source.
func (c *ProjectConfig) ResolveRemote(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.Remote, DefaultRemote)
}

// ResolveTriggerBranch returns the effective trigger branch and its source.
func (c *ProjectConfig) ResolveTriggerBranch(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.TriggerBranch, DefaultTriggerBranch)
}

// ResolveRuntime returns the effective tool runtime and its source.
func (c *ProjectConfig) ResolveRuntime(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.Runtime, DefaultRuntime)
}

// ResolvePythonVersion returns the effective Python version and its source.
func (c *ProjectConfig) ResolvePythonVersion(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.Warehub.PythonVersion, DefaultPythonVersion)
}

// ResolveScript returns the effective helper script path and its source.
func (c *ProjectConfig) ResolveScript(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.Warehub.Script, DefaultScript)
}

// ResolvePackage returns the effective pip package spec and its source.
func (c *ProjectConfig) ResolvePackage(cliValue string) (string, string) {
	return c.ResolveString(cliValue, c.Warehub.Package, DefaultPackage)
}
