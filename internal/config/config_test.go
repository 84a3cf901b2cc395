package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		// A named config file that does not exist is an error; fall back to
		// discovery mode for the defaults check.
		t.Fatal("Expected an error for an explicitly named missing config file")
	}

	Reset()
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Expected default model, got %s", cfg.AI.Gemini.Model)
	}
	if cfg.Pipeline.PageSize != 5 {
		t.Errorf("Expected default page size 5, got %d", cfg.Pipeline.PageSize)
	}
	if cfg.Email.SMTPHost != "smtp.gmail.com" || cfg.Email.SMTPPort != 587 {
		t.Errorf("Expected gmail SMTP defaults, got %s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.History.MaxEntries != 200 {
		t.Errorf("Expected default history cap 200, got %d", cfg.History.MaxEntries)
	}
}

func TestDurationHelpers(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Gemini.MatchTimeoutDuration().Seconds() != 25 {
		t.Errorf("Expected 25s match timeout, got %v", cfg.AI.Gemini.MatchTimeoutDuration())
	}
	if cfg.Pipeline.PaperTimeoutDuration().Seconds() != 4 {
		t.Errorf("Expected 4s paper timeout, got %v", cfg.Pipeline.PaperTimeoutDuration())
	}
	if cfg.Pipeline.PaperQueryDelayDuration().Milliseconds() != 300 {
		t.Errorf("Expected 300ms query delay, got %v", cfg.Pipeline.PaperQueryDelayDuration())
	}
}

func TestEnvironmentBinding(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("GEMINI_API_KEY", "env-gemini-key")
	t.Setenv("NAVER_CLIENT_ID", "env-naver-id")
	t.Setenv("GMAIL_APP_PASSWORD", "env-gmail-pass")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Gemini.APIKey != "env-gemini-key" {
		t.Errorf("Expected Gemini key from environment, got %q", cfg.AI.Gemini.APIKey)
	}
	if cfg.Providers.Naver.ClientID != "env-naver-id" {
		t.Errorf("Expected Naver id from environment, got %q", cfg.Providers.Naver.ClientID)
	}
	if cfg.Email.AppPassword != "env-gmail-pass" {
		t.Errorf("Expected app password from environment, got %q", cfg.Email.AppPassword)
	}
}

func TestAlternateGeminiKeyNames(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("GOOGLE_AI_API_KEY", "alt-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AI.Gemini.APIKey != "alt-key" {
		t.Errorf("Expected the alternate key name to bind, got %q", cfg.AI.Gemini.APIKey)
	}
}

func TestInvalidDurationRejected(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ai:\n  gemini:\n    match_timeout: not-a-duration\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected an error for a malformed duration")
	}
}

func TestLoadCachesGlobalConfig(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := Load("")
	if err != nil {
		t.Fatalf("Second Load failed: %v", err)
	}
	if first != second {
		t.Error("Expected repeated loads to return the cached config")
	}
	if Get() != first {
		t.Error("Expected Get to return the cached config")
	}
}
