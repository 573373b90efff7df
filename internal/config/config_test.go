package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WA_TOKEN", "wa-test-token")
	t.Setenv("WA_PHONE_ID", "123456789")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "10000" {
		t.Errorf("expected default port '10000', got %q", cfg.Port)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected default model 'gpt-4o-mini', got %q", cfg.OpenAIModel)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("expected default cache TTL 1h, got %v", cfg.CacheTTL)
	}
	if cfg.VerifyToken != "nochgpt" {
		t.Errorf("expected default verify token, got %q", cfg.VerifyToken)
	}
	if cfg.MaxMediaBytes != 16<<20 {
		t.Errorf("expected 16MiB media ceiling, got %d", cfg.MaxMediaBytes)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive should be disabled without ARCHIVE_BUCKET")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	// Only one of the three required credentials set.
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WA_TOKEN", "")
	t.Setenv("WA_PHONE_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing WhatsApp credentials")
	}
	if !strings.Contains(err.Error(), "WA_TOKEN") {
		t.Errorf("error should mention WA_TOKEN, got %v", err)
	}
	if !strings.Contains(err.Error(), "WA_PHONE_ID") {
		t.Errorf("error should mention WA_PHONE_ID, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("SENDER_WINDOW_MAX", "5")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")
	t.Setenv("VERIFY_REPLY_LANGUAGE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("CACHE_TTL override ignored, got %v", cfg.CacheTTL)
	}
	if cfg.SenderWindowMax != 5 {
		t.Errorf("SENDER_WINDOW_MAX override ignored, got %d", cfg.SenderWindowMax)
	}
	if cfg.OpenAITemperature != 0.7 {
		t.Errorf("OPENAI_TEMPERATURE override ignored, got %v", cfg.OpenAITemperature)
	}
	if cfg.VerifyReplyLanguage {
		t.Error("VERIFY_REPLY_LANGUAGE=false ignored")
	}
}

func TestValidate_Archive(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ARCHIVE_BUCKET", "nochgpt-backups")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when archive bucket set without credentials")
	}
	if !strings.Contains(err.Error(), "ARCHIVE_ACCESS_KEY_ID") {
		t.Errorf("error should mention archive credentials, got %v", err)
	}

	t.Setenv("ARCHIVE_ACCESS_KEY_ID", "AKIA")
	t.Setenv("ARCHIVE_SECRET_ACCESS_KEY", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed with archive credentials: %v", err)
	}
	if !cfg.ArchiveEnabled() {
		t.Error("archive should be enabled with bucket and credentials")
	}
}

func TestValidate_Temperature(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_TEMPERATURE", "3.5")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for out-of-range temperature")
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	if got := cfg.SQLitePath(); got != "/data/nochgpt.db" {
		t.Errorf("SQLitePath() = %q", got)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "abc")
	t.Setenv("X_INT", "42")
	t.Setenv("X_BAD_INT", "nope")
	if got := getEnv("X_STR", "def"); got != "abc" {
		t.Errorf("getEnv = %q", got)
	}
	if got := getEnv("X_UNSET_KEY", "def"); got != "def" {
		t.Errorf("getEnv default = %q", got)
	}
	if got := getIntEnv("X_INT", 7); got != 42 {
		t.Errorf("getIntEnv = %d", got)
	}
	if got := getIntEnv("X_BAD_INT", 7); got != 7 {
		t.Errorf("getIntEnv malformed = %d", got)
	}
	_ = os.Unsetenv("X_BAD_INT")
}
