package models

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/scribekit/scribe/internal/config"
)

func TestResolveAPIKeyDirect(t *testing.T) {
	cfg := config.ProviderConfig{
		Driver: "openai",
		Auth:   config.AuthConfig{APIKey: "sk-direct"},
	}

	key, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "sk-direct" {
		t.Errorf("key = %q", key)
	}
}

func TestResolveAPIKeyEnvReference(t *testing.T) {
	t.Setenv("SCRIBE_TEST_KEY", "sk-from-env")

	cfg := config.ProviderConfig{
		Driver: "anthropic",
		Auth:   config.AuthConfig{APIKey: "${SCRIBE_TEST_KEY}"},
	}

	key, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "sk-from-env" {
		t.Errorf("key = %q", key)
	}
}

func TestResolveAPIKeyDriverDefault(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-default-env")

	cfg := config.ProviderConfig{Driver: "openai"}

	key, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "sk-default-env" {
		t.Errorf("key = %q", key)
	}
}

func TestResolveAPIKeyMissing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := config.ProviderConfig{Driver: "anthropic"}

	if _, err := ResolveAPIKey(cfg); err == nil {
		t.Fatal("ResolveAPIKey succeeded without any credential")
	}
}

func TestCreateModelUnknownDriver(t *testing.T) {
	_, err := CreateModel(context.Background(), config.ProviderConfig{Driver: "grok"})
	if err == nil {
		t.Fatal("CreateModel accepted unknown driver")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("error = %v", err)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	r := NewRegistry(config.ModelsConfig{})

	if _, err := r.Get(context.Background(), "missing"); err == nil {
		t.Fatal("Get succeeded for unknown provider")
	}
	if _, err := r.Default(context.Background()); err == nil {
		t.Fatal("Default succeeded with no default configured")
	}
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"server returned 401 unauthorized", "authentication failed"},
		{"429 too many requests", "rate limited"},
		{"prompt exceeds context length", "context too long"},
		{"model not found", "model not found"},
		{"dial tcp: connection refused", "connection error"},
	}

	for _, tc := range cases {
		got := HandleError(errors.New(tc.in))
		if !strings.Contains(got.Error(), tc.want) {
			t.Errorf("HandleError(%q) = %v, want prefix %q", tc.in, got, tc.want)
		}
	}

	if HandleError(nil) != nil {
		t.Error("HandleError(nil) != nil")
	}

	plain := errors.New("something odd")
	if HandleError(plain) != plain {
		t.Error("unrecognized error was rewrapped")
	}
}

func TestErrModelUnavailable(t *testing.T) {
	cause := errors.New("boom")
	err := &ErrModelUnavailable{Provider: "ollama", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("Unwrap does not reach the cause")
	}
	if !strings.Contains(err.Error(), "ollama") {
		t.Errorf("Error() = %q", err.Error())
	}

	bodyErr := &ErrModelUnavailable{Provider: "ollama", Body: "no available server"}
	if !strings.Contains(bodyErr.Error(), "no available server") {
		t.Errorf("Error() = %q", bodyErr.Error())
	}
}
