package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saulo-duarte/quizclient/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QUIZCLIENT_CREDENTIALS_BACKEND", "memory")

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://127.0.0.1:8000/api" {
		t.Errorf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("unexpected timeout %v", cfg.API.Timeout)
	}
	if cfg.Credentials.Backend != config.BackendMemory {
		t.Errorf("env override ignored, backend=%q", cfg.Credentials.Backend)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected model %q", cfg.Gemini.Model)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("api:\n  base_url: http://quiz.local/api\n  timeout: 3s\ncredentials:\n  backend: file\n  path: " +
		filepath.Join(dir, "creds.json") + "\n")
	if err := os.WriteFile(filepath.Join(dir, "quizclient.yaml"), yaml, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://quiz.local/api" || cfg.API.Timeout != 3*time.Second {
		t.Errorf("file values not applied: %+v", cfg.API)
	}
}

func TestValidate(t *testing.T) {
	base := config.Config{
		API:         config.APIConfig{BaseURL: "http://x", Timeout: time.Second},
		Credentials: config.CredentialsConfig{Backend: config.BackendFile, Path: "/tmp/c.json"},
	}

	t.Run("Valid", func(t *testing.T) {
		cfg := base
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("BadKey", func(t *testing.T) {
		cfg := base
		cfg.Credentials.Key = "short"
		if err := cfg.Validate(); err == nil {
			t.Error("expected key length error")
		}
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		cfg := base
		cfg.Credentials.Backend = "s3"
		if err := cfg.Validate(); err == nil {
			t.Error("expected backend error")
		}
	})
}

func TestContextWithRequestID(t *testing.T) {
	ctx := config.ContextWithRequestID(context.Background())
	id := config.RequestID(ctx)
	if id == "" {
		t.Fatal("request id not set")
	}
	if again := config.RequestID(config.ContextWithRequestID(ctx)); again != id {
		t.Errorf("request id replaced: %q != %q", again, id)
	}
}
