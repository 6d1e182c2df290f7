package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		// minimal config
		"models": {
			"default": "claude",
			"providers": {
				"claude": { "driver": "anthropic", "model": "claude-sonnet-4-5" }
			}
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("Gateway.Host = %q, want 127.0.0.1", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18520 {
		t.Errorf("Gateway.Port = %d, want 18520", cfg.Gateway.Port)
	}
	if cfg.Events.BufferSize != 1024 {
		t.Errorf("Events.BufferSize = %d, want 1024", cfg.Events.BufferSize)
	}
	if cfg.Agent.MaxIterations != 8 {
		t.Errorf("Agent.MaxIterations = %d, want 8", cfg.Agent.MaxIterations)
	}
	if len(cfg.Skills.Dirs) != 1 {
		t.Errorf("Skills.Dirs = %v, want one default entry", cfg.Skills.Dirs)
	}
	if cfg.Models.Default != "claude" {
		t.Errorf("Models.Default = %q, want claude", cfg.Models.Default)
	}
}

func TestLoadExpandsEnvTemplates(t *testing.T) {
	t.Setenv("SCRIBE_TEST_KEY", "sk-test-123")

	path := writeConfig(t, `{
		"models": {
			"default": "gpt",
			"providers": {
				"gpt": {
					"driver": "openai",
					"model": "gpt-4o",
					"auth": { "api_key": "${{ .Env.SCRIBE_TEST_KEY }}" }
				}
			}
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := cfg.Models.Providers["gpt"].Auth.APIKey
	if got != "sk-test-123" {
		t.Errorf("APIKey = %q, want sk-test-123", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Gateway.Port != 18520 {
		t.Errorf("Gateway.Port = %d, want default 18520", cfg.Gateway.Port)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	var p ProviderConfig
	if err := json.Unmarshal([]byte(`{"timeout": "90s"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Timeout.Duration() != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", p.Timeout.Duration())
	}

	data, err := json.Marshal(p.Timeout)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"1m30s"` {
		t.Errorf("marshaled = %s, want \"1m30s\"", data)
	}
}
