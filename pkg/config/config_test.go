package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoConfigFile(t *testing.T) {
	// Create temp directory with no config file
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// Should return zero config
	if cfg.OutputBranch != "" {
		t.Errorf("OutputBranch should be empty, got %q", cfg.OutputBranch)
	}
	if cfg.CommitMessage != "" {
		t.Errorf("CommitMessage should be empty, got %q", cfg.CommitMessage)
	}
	if cfg.Runtime != "" {
		t.Errorf("Runtime should be empty, got %q", cfg.Runtime)
	}
}

func TestLoad_ValidConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgDir := filepath.Join(tmpDir, ".ghpypi")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}

	configContent := `
output_branch: "artifacts"
commit_message: "publish artifacts"
trigger_branch: "main"
runtime: "docker"
git:
  author_name: "PyPI Bot"
  author_email: "bot@example.com"
warehub:
  package: "warehub==1.2.0"
  script: "scripts/publish.py"
  python_version: "3.11"
`
	configPath := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.OutputBranch != "artifacts" {
		t.Errorf("OutputBranch = %q, want %q", cfg.OutputBranch, "artifacts")
	}
	if cfg.CommitMessage != "publish artifacts" {
		t.Errorf("CommitMessage = %q, want %q", cfg.CommitMessage, "publish artifacts")
	}
	if cfg.TriggerBranch != "main" {
		t.Errorf("TriggerBranch = %q, want %q", cfg.TriggerBranch, "main")
	}
	if cfg.Runtime != "docker" {
		t.Errorf("Runtime = %q, want %q", cfg.Runtime, "docker")
	}
	if cfg.Git.AuthorName != "PyPI Bot" {
		t.Errorf("Git.AuthorName = %q, want %q", cfg.Git.AuthorName, "PyPI Bot")
	}
	if cfg.Git.AuthorEmail != "bot@example.com" {
		t.Errorf("Git.AuthorEmail = %q, want %q", cfg.Git.AuthorEmail, "bot@example.com")
	}
	if cfg.Warehub.Package != "warehub==1.2.0" {
		t.Errorf("Warehub.Package = %q, want %q", cfg.Warehub.Package, "warehub==1.2.0")
	}
	if cfg.Warehub.Script != "scripts/publish.py" {
		t.Errorf("Warehub.Script = %q, want %q", cfg.Warehub.Script, "scripts/publish.py")
	}
	if cfg.Warehub.PythonVersion != "3.11" {
		t.Errorf("Warehub.PythonVersion = %q, want %q", cfg.Warehub.PythonVersion, "3.11")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	cfgDir := filepath.Join(tmpDir, ".ghpypi")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(cfgDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output_branch: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should return error for invalid YAML")
	}
}

func TestLoad_ParentDirectorySearch(t *testing.T) {
	tmpDir := t.TempDir()
	cfgDir := filepath.Join(tmpDir, ".ghpypi")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("output_branch: generated\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Load from a nested subdirectory; the config should be found upward.
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.OutputBranch != "generated" {
		t.Errorf("OutputBranch = %q, want %q", cfg.OutputBranch, "generated")
	}
}

func TestResolve_Precedence(t *testing.T) {
	cfg := &ProjectConfig{OutputBranch: "from-config"}

	t.Run("cli wins", func(t *testing.T) {
		value, source := cfg.ResolveOutputBranch("from-cli")
		if value != "from-cli" || source != "cli" {
			t.Errorf("got (%q, %q), want (from-cli, cli)", value, source)
		}
	})

	t.Run("config wins over default", func(t *testing.T) {
		value, source := cfg.ResolveOutputBranch("")
		if value != "from-config" || source != "config" {
			t.Errorf("got (%q, %q), want (from-config, config)", value, source)
		}
	})

	t.Run("default fallback", func(t *testing.T) {
		empty := &ProjectConfig{}
		value, source := empty.ResolveOutputBranch("")
		if value != DefaultOutputBranch || source != "default" {
			t.Errorf("got (%q, %q), want (%q, default)", value, source, DefaultOutputBranch)
		}
	})
}

func TestResolve_Defaults(t *testing.T) {
	cfg := &ProjectConfig{}

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"commit message", first(cfg.ResolveCommitMessage("")), DefaultCommitMessage},
		{"remote", first(cfg.ResolveRemote("")), DefaultRemote},
		{"trigger branch", first(cfg.ResolveTriggerBranch("")), DefaultTriggerBranch},
		{"runtime", first(cfg.ResolveRuntime("")), DefaultRuntime},
		{"python version", first(cfg.ResolvePythonVersion("")), DefaultPythonVersion},
		{"script", first(cfg.ResolveScript("")), DefaultScript},
		{"package", first(cfg.ResolvePackage("")), DefaultPackage},
	}

	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}

func first(value, _ string) string { return value }
