package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Parser.MaxDepth != 200 {
		t.Errorf("Parser.MaxDepth = %d, want 200", cfg.Parser.MaxDepth)
	}
	if cfg.Exec.Timeout.Duration != 10*time.Second {
		t.Errorf("Exec.Timeout = %v, want 10s", cfg.Exec.Timeout)
	}
	if cfg.Output.TreeFormat != "text" || cfg.Output.TokenFormat != "table" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Store.Path == "" {
		t.Error("Store.Path is empty")
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "sclc.toml", `
[log]
level = "debug"
format = "json"

[parser]
max_depth = 50
keep_going = true

[exec]
max_steps = 1000
timeout = "2s"

[server]
addr = "localhost:7000"

[watch]
debounce = "1s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Parser.MaxDepth != 50 || !cfg.Parser.KeepGoing {
		t.Errorf("Parser = %+v", cfg.Parser)
	}
	if cfg.Exec.MaxSteps != 1000 || cfg.Exec.Timeout.Duration != 2*time.Second {
		t.Errorf("Exec = %+v", cfg.Exec)
	}
	if cfg.Server.Addr != "localhost:7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Watch.Debounce.Duration != time.Second {
		t.Errorf("Watch.Debounce = %v", cfg.Watch.Debounce)
	}
	// Unset values fall back to defaults.
	if cfg.Server.ShutdownTimeout.Duration != 5*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want default 5s", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "sclc.yaml", `
log:
  level: warn
exec:
  timeout: 500ms
output:
  tree_format: list
  no_color: true
store:
  path: /tmp/scl-test/runs.db
  retention: 720h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Exec.Timeout.Duration != 500*time.Millisecond {
		t.Errorf("Exec.Timeout = %v", cfg.Exec.Timeout)
	}
	if cfg.Output.TreeFormat != "list" || !cfg.Output.NoColor {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Store.Path != "/tmp/scl-test/runs.db" || cfg.Store.Retention.Duration != 720*time.Hour {
		t.Errorf("Store = %+v", cfg.Store)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "empty.yml", ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default", cfg.Log.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"bad_level", "a.toml", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"bad_format", "a.yaml", "output:\n  tree_format: xml\n", "output.tree_format"},
		{"bad_duration", "a.toml", "[exec]\ntimeout = \"soon\"\n", "failed to parse config"},
		{"negative_depth", "a.toml", "[parser]\nmax_depth = -1\n", "parser.max_depth"},
		{"unknown_toml_key", "a.toml", "[parser]\ndepth = 3\n", "unknown config key"},
		{"unknown_yaml_key", "a.yaml", "parser:\n  depth: 3\n", "failed to parse config"},
		{"bad_extension", "a.ini", "x=1", "unsupported config format"},
		{"yaml_duration_map", "a.yaml", "exec:\n  timeout:\n    s: 1\n", "duration must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "env.toml", "[log]\nlevel = \"error\"\n")
	t.Setenv(EnvVar, path)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Parser.MaxDepth != Default().Parser.MaxDepth {
		t.Errorf("got %+v, want defaults", cfg.Parser)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v", d.Duration)
	}
	text, err := d.MarshalText()
	if err != nil || string(text) != "1m30s" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
}
