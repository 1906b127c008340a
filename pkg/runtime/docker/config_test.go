package docker

import (
	"testing"

	"github.com/docker/docker/api/types/mount"
)

func TestBuildContainerMounts(t *testing.T) {
	cfg := &MountConfig{WorkspaceDir: "/tmp/workspace"}

	mounts := BuildContainerMounts(cfg)

	if len(mounts) != 1 {
		t.Fatalf("expected 1 mount, got %d", len(mounts))
	}
	if mounts[0].Type != mount.TypeBind {
		t.Errorf("expected bind mount, got %s", mounts[0].Type)
	}
	if mounts[0].Source != "/tmp/workspace" {
		t.Errorf("expected source /tmp/workspace, got %s", mounts[0].Source)
	}
	if mounts[0].Target != WorkspaceTarget {
		t.Errorf("expected target %s, got %s", WorkspaceTarget, mounts[0].Target)
	}
}

func TestBuildContainerEnv(t *testing.T) {
	cfg := &EnvConfig{
		ToolEnv: map[string]string{
			"WAREHUB_USERNAME": "admin",
			"GITHUB_CONTEXT":   "{}",
		},
		HostUID: 1000,
		HostGID: 1000,
	}

	env := BuildContainerEnv(cfg)

	want := []string{
		"GITHUB_CONTEXT={}",
		"WAREHUB_USERNAME=admin",
		"HOST_UID=1000",
		"HOST_GID=1000",
		"GIT_CONFIG_NOSYSTEM=1",
	}
	if len(env) != len(want) {
		t.Fatalf("expected %d variables, got %d: %v", len(want), len(env), env)
	}
	for i, kv := range want {
		if env[i] != kv {
			t.Errorf("env[%d] = %q, want %q", i, env[i], kv)
		}
	}
}

func TestValidateMountTargets(t *testing.T) {
	t.Run("valid workspace", func(t *testing.T) {
		cfg := &MountConfig{WorkspaceDir: t.TempDir()}
		if err := ValidateMountTargets(cfg); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty workspace", func(t *testing.T) {
		cfg := &MountConfig{}
		if err := ValidateMountTargets(cfg); err == nil {
			t.Error("expected error for empty workspace")
		}
	})

	t.Run("nonexistent workspace", func(t *testing.T) {
		cfg := &MountConfig{WorkspaceDir: "/nonexistent/workspace"}
		if err := ValidateMountTargets(cfg); err == nil {
			t.Error("expected error for nonexistent workspace")
		}
	})
}

func TestPythonImage(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"", "python:3"},
		{"3.x", "python:3"},
		{"3", "python:3"},
		{"3.12", "python:3.12"},
	}

	for _, tt := range tests {
		if got := PythonImage(tt.version); got != tt.want {
			t.Errorf("PythonImage(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}
