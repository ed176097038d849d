package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kirillkom/idu-service/internal/core/domain"
)

func TestParseDefaults(t *testing.T) {
	unsetEnv(t, "API_ADDR", "SUMMARIZER_BACKEND", "MODEL_TIMEOUT", "MODEL_RETRY_ATTEMPTS")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIAddr != "127.0.0.1:8000" {
		t.Fatalf("expected default api addr, got %q", cfg.APIAddr)
	}
	if cfg.SummarizerBackend != SummarizerHF {
		t.Fatalf("expected hf summarizer, got %q", cfg.SummarizerBackend)
	}
	if cfg.ModelTimeout != 120*time.Second {
		t.Fatalf("expected 120s model timeout, got %s", cfg.ModelTimeout)
	}
	if cfg.ModelRetryAttempts != 1 {
		t.Fatalf("expected single attempt, got %d", cfg.ModelRetryAttempts)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("SUMMARIZER_BACKEND", "ollama")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:8501,https://idu.example")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.SummarizerBackend != SummarizerOllama {
		t.Fatalf("expected ollama, got %q", cfg.SummarizerBackend)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://idu.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestParseRejectsMalformedDuration(t *testing.T) {
	t.Setenv("MODEL_TIMEOUT", "two minutes")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}

func TestParseWebDefaults(t *testing.T) {
	unsetEnv(t, "IDU_API_URL", "IDU_API_TIMEOUT", "MIN_TEXT_CHARS")

	cfg, err := ParseWeb()
	if err != nil {
		t.Fatalf("ParseWeb() error = %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.APITimeout != 120*time.Second {
		t.Fatalf("expected 120s, got %s", cfg.APITimeout)
	}
	if cfg.MinTextChars != 50 {
		t.Fatalf("expected 50 chars gate, got %d", cfg.MinTextChars)
	}
}

func TestLoadLabelPolicyFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	body := "allowed: [ORG, PERSON]\naliases:\n  PER: PERSON\n  CORP: ORG\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	policy, err := LoadLabelPolicy(path)
	if err != nil {
		t.Fatalf("LoadLabelPolicy() error = %v", err)
	}
	if label, ok := policy.Resolve("CORP"); !ok || label != domain.LabelOrganization {
		t.Fatalf("expected CORP alias to resolve to ORG, got %q %v", label, ok)
	}
	if _, ok := policy.Resolve("DATE"); ok {
		t.Fatalf("DATE must not be allowed by this policy")
	}
}

func TestLoadLabelPolicyDefaultsAndErrors(t *testing.T) {
	policy, err := LoadLabelPolicy("")
	if err != nil {
		t.Fatalf("LoadLabelPolicy() error = %v", err)
	}
	if len(policy.Labels()) != 5 {
		t.Fatalf("expected 5 default labels, got %v", policy.Labels())
	}

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("allowed: []\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadLabelPolicy(path); err == nil {
		t.Fatalf("expected error for empty allowed list")
	}
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}
