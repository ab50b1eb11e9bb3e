package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hitoshi/salesnav/internal/notify"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("TOKEN_SECRET", "test-token-secret-32bytes-long!!")
}

// clearOptionalEnvVars は既定値の検証に影響する環境変数を空にする。
func clearOptionalEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_PATH", "SEED_USERS_FILE", "SEED_HASH_PASSWORDS", "FOLLOW_UP_POLICY",
		"LOGIN_RATE_PER_MIN", "LOG_LEVEL", "TIMEZONE", "SERVER_PORT",
		"SHUTDOWN_TIMEOUT", "CORS_ALLOWED_ORIGIN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.TokenSecret != "test-token-secret-32bytes-long!!" {
		t.Errorf("TokenSecret = %q, want %q", cfg.TokenSecret, "test-token-secret-32bytes-long!!")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)
	clearOptionalEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.DBPath != "salesnav.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "salesnav.db")
	}
	if cfg.SeedUsersFile != "" {
		t.Errorf("SeedUsersFile = %q, want empty", cfg.SeedUsersFile)
	}
	if cfg.SeedHashPasswords {
		t.Error("SeedHashPasswords = true, want false")
	}
	if cfg.FollowUpPolicy != notify.PolicyStoppedBy {
		t.Errorf("FollowUpPolicy = %q, want %q", cfg.FollowUpPolicy, notify.PolicyStoppedBy)
	}
	if cfg.LoginRatePerMin != 10 {
		t.Errorf("LoginRatePerMin = %d, want %d", cfg.LoginRatePerMin, 10)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Timezone != time.Local {
		t.Errorf("Timezone = %v, want Local", cfg.Timezone)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 10*time.Second)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("DB_PATH", "/var/lib/salesnav/data.db")
	t.Setenv("SEED_USERS_FILE", "users.yaml")
	t.Setenv("SEED_HASH_PASSWORDS", "true")
	t.Setenv("FOLLOW_UP_POLICY", "all-open")
	t.Setenv("LOGIN_RATE_PER_MIN", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TIMEZONE", "America/Chicago")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.DBPath != "/var/lib/salesnav/data.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.SeedUsersFile != "users.yaml" {
		t.Errorf("SeedUsersFile = %q", cfg.SeedUsersFile)
	}
	if !cfg.SeedHashPasswords {
		t.Error("SeedHashPasswords = false, want true")
	}
	if cfg.FollowUpPolicy != notify.PolicyAllOpen {
		t.Errorf("FollowUpPolicy = %q, want %q", cfg.FollowUpPolicy, notify.PolicyAllOpen)
	}
	if cfg.LoginRatePerMin != 5 {
		t.Errorf("LoginRatePerMin = %d, want %d", cfg.LoginRatePerMin, 5)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Timezone.String() != "America/Chicago" {
		t.Errorf("Timezone = %v, want America/Chicago", cfg.Timezone)
	}
	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "3000")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 30*time.Second)
	}
}

func TestLoad_InvalidNumbersFallBackToDefault(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("LOGIN_RATE_PER_MIN", "many")
	t.Setenv("SEED_HASH_PASSWORDS", "perhaps")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.LoginRatePerMin != 10 {
		t.Errorf("LoginRatePerMin = %d, want %d", cfg.LoginRatePerMin, 10)
	}
	if cfg.SeedHashPasswords {
		t.Error("SeedHashPasswords = true, want false")
	}
}

func TestLoad_MissingTokenSecret_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TOKEN_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing TOKEN_SECRET, got nil")
	}
}

func TestLoad_InvalidFollowUpPolicy_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("FOLLOW_UP_POLICY", "sometimes")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid FOLLOW_UP_POLICY, got nil")
	}
}

func TestLoad_InvalidTimezone_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid TIMEZONE, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	// 存在しないファイルはエラーにしない
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) error = %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SALESNAV_DOTENV_TEST=from-file\nTOKEN_SECRET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("TOKEN_SECRET", "from-env")
	t.Setenv("SALESNAV_DOTENV_TEST", "")
	os.Unsetenv("SALESNAV_DOTENV_TEST")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("SALESNAV_DOTENV_TEST"); got != "from-file" {
		t.Errorf("SALESNAV_DOTENV_TEST = %q, want from-file", got)
	}
	if got := os.Getenv("TOKEN_SECRET"); got != "from-env" {
		t.Errorf("TOKEN_SECRET = %q, existing env must not be overridden", got)
	}
}
