package docker

import (
	"fmt"
	"os"
	"sort"

	"github.com/docker/docker/api/types/mount"
)

// Pure helper functions for container configuration assembly

// WorkspaceTarget is the path the workspace is mounted at inside the
// container.
const WorkspaceTarget = "/work"

// MountConfig represents the mount configuration for a container
type MountConfig struct {
	WorkspaceDir string
}

// EnvConfig represents the environment configuration for a container
type EnvConfig struct {
	ToolEnv map[string]string
	HostUID int
	HostGID int
}

// BuildContainerMounts assembles the Docker mounts configuration
// This function is pure and deterministic - no Docker client interaction
func BuildContainerMounts(cfg *MountConfig) []mount.Mount {
	return []mount.Mount{
		{
			Type:   mount.TypeBind,
			Source: cfg.WorkspaceDir,
			Target: WorkspaceTarget,
		},
	}
}

// BuildContainerEnv assembles the environment variables for a container
// This function is pure and deterministic - no Docker client interaction
func BuildContainerEnv(cfg *EnvConfig) []string {
	env := make([]string, 0, len(cfg.ToolEnv)+3)

	keys := make([]string, 0, len(cfg.ToolEnv))
	for key := range cfg.ToolEnv {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env = append(env, fmt.Sprintf("%s=%s", key, cfg.ToolEnv[key]))
	}

	// Add host UID/GID for proper file permissions
	env = append(env, fmt.Sprintf("HOST_UID=%d", cfg.HostUID))
	env = append(env, fmt.Sprintf("HOST_GID=%d", cfg.HostGID))

	// Disable Git's safe directory check
	// This is needed because Docker containers may have different UIDs
	// than the host, causing Git to detect "dubious ownership"
	env = append(env, "GIT_CONFIG_NOSYSTEM=1")

	return env
}

// ValidateMountTargets validates that all mount sources exist
// This function is pure and deterministic - no Docker client interaction
func ValidateMountTargets(cfg *MountConfig) error {
	if cfg.WorkspaceDir == "" {
		return fmt.Errorf("workspace directory cannot be empty")
	}

	if _, err := os.Stat(cfg.WorkspaceDir); os.IsNotExist(err) {
		return fmt.Errorf("workspace directory does not exist: %s", cfg.WorkspaceDir)
	}

	return nil
}

// PythonImage returns the python image reference for a configured version.
// The "3.x" convention from workflow files maps to the plain "3" tag.
func PythonImage(version string) string {
	if version == "" {
		version = "3"
	}
	if version == "3.x" {
		version = "3"
	}
	return "python:" + version
}
