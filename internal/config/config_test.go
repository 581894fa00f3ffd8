package config_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/helpermatch/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		Addr:          ":8080",
		JWTSecret:     "supersecretkey",
		APITimeout:    5 * time.Second,
		DatabasePath:  "helpermatch.db",
		TokenDuration: 1 * time.Hour,
		Storage:       config.StorageConfig{Root: "storage"},
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	t.Setenv("HM_ENV", "production")

	if err := baseConfig().Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	t.Setenv("HM_ENV", "development")

	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_ReportsAllMissingFields(t *testing.T) {
	t.Setenv("HM_ENV", "development")

	cfg := &config.Config{JWTSecret: "strong"}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected Validate to fail")
	}
	for _, want := range []string{"addr", "database_path", "storage.root"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %q, got: %v", want, err)
		}
	}
}

func TestValidate_TwilioRequiresCredentials(t *testing.T) {
	t.Setenv("HM_ENV", "development")

	cfg := baseConfig()
	cfg.Twilio.AccountSID = "AC123"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail without twilio token and sender")
	}

	cfg.Twilio.AuthToken = "token"
	cfg.Twilio.From = "+15005550006"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}
}

func TestValidate_DefaultsPopulated(t *testing.T) {
	t.Setenv("HM_ENV", "development")

	cfg := baseConfig()
	cfg.APITimeout = 0
	cfg.Storage.PublicBaseURL = "http://cdn.example.com/storage/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("expected default APITimeout, got %v", cfg.APITimeout)
	}
	if cfg.OTP.TTL <= 0 || cfg.OTP.Cooldown <= 0 {
		t.Fatalf("expected OTP defaults, got %+v", cfg.OTP)
	}
	if cfg.Storage.MaxUploadBytes <= 0 {
		t.Fatalf("expected MaxUploadBytes default")
	}
	if cfg.Storage.PublicBaseURL != "http://cdn.example.com/storage" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Storage.PublicBaseURL)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("expected permissive CORS default, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"HM_ADDR", "HM_JWT_SECRET", "HM_DATABASE_PATH", "HM_CORS_ORIGINS", "HM_DIAGNOSTICS"} {
		t.Setenv(k, "")
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.JWTSecret != "supersecretkey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "supersecretkey")
	}
	if cfg.DatabasePath != "helpermatch.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "helpermatch.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 1*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 1*time.Hour)
	}
	if cfg.Diagnostics.Enabled {
		t.Fatalf("diagnostics should be disabled by default")
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("HM_ADDR", ":7070")
	t.Setenv("HM_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("HM_DIAGNOSTICS", "true")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("unexpected Addr %q", cfg.Addr)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Diagnostics.Enabled {
		t.Fatalf("expected diagnostics enabled")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte(`addr: ":9090"
jwt_secret: "filekey"
timeout: "30s"
database_path: "test.db"
token_duration: "2h"
otp:
  ttl: "10m"
  cooldown: "30s"
twilio:
  account_sid: "AC1"
  auth_token: "tok"
  from: "+15005550006"
oauth:
  google:
    client_id: "gid"
    client_secret: "gsecret"
`)
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if cfg.OTP.TTL != 10*time.Minute || cfg.OTP.Cooldown != 30*time.Second {
		t.Fatalf("unexpected OTP config: %+v", cfg.OTP)
	}
	if cfg.Twilio.From != "+15005550006" {
		t.Fatalf("unexpected Twilio config: %+v", cfg.Twilio)
	}
	if !cfg.OAuth.Google.Enabled() || cfg.OAuth.Facebook.Enabled() {
		t.Fatalf("unexpected OAuth providers: %+v", cfg.OAuth)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}
