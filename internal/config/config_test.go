package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	t.Setenv("FOOTBALL_API_KEY", "test-key")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_RequiresFootballAPIKey(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FOOTBALL_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when FOOTBALL_API_KEY is empty")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FOOTBALL_API_KEY", "test-key")
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_WebhookRequiresURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FOOTBALL_API_KEY", "test-key")
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when WEBHOOK_ENABLED=true without WEBHOOK_URL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FOOTBALL_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.FootballAPIBaseURL != "https://api-football-v1.p.rapidapi.com/v3" {
		t.Fatalf("unexpected FootballAPIBaseURL: %q", cfg.FootballAPIBaseURL)
	}
	if cfg.FootballAPIHost != "api-football-v1.p.rapidapi.com" {
		t.Fatalf("unexpected FootballAPIHost: %q", cfg.FootballAPIHost)
	}
	if cfg.StalenessMaxAge != 24*time.Hour {
		t.Fatalf("unexpected StalenessMaxAge: %s", cfg.StalenessMaxAge)
	}
	if cfg.StalenessFinishedGrace != 3*time.Hour {
		t.Fatalf("unexpected StalenessFinishedGrace: %s", cfg.StalenessFinishedGrace)
	}
	if cfg.StalenessUpcomingWindow != 24*time.Hour {
		t.Fatalf("unexpected StalenessUpcomingWindow: %s", cfg.StalenessUpcomingWindow)
	}
	if cfg.ResyncWorkers != 4 {
		t.Fatalf("unexpected ResyncWorkers: %d", cfg.ResyncWorkers)
	}
	if !cfg.VerboseErrors() {
		t.Fatalf("expected verbose errors in dev")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_ProdHidesErrorDetails(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("FOOTBALL_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.VerboseErrors() {
		t.Fatalf("expected verbose errors disabled in prod")
	}
}

func TestLoad_StalenessOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("FOOTBALL_API_KEY", "test-key")
	t.Setenv("STALENESS_MAX_AGE", "6h")
	t.Setenv("STALENESS_FINISHED_GRACE", "90m")
	t.Setenv("STALENESS_UPCOMING_WINDOW", "12h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StalenessMaxAge != 6*time.Hour {
		t.Fatalf("unexpected StalenessMaxAge: %s", cfg.StalenessMaxAge)
	}
	if cfg.StalenessFinishedGrace != 90*time.Minute {
		t.Fatalf("unexpected StalenessFinishedGrace: %s", cfg.StalenessFinishedGrace)
	}
	if cfg.StalenessUpcomingWindow != 12*time.Hour {
		t.Fatalf("unexpected StalenessUpcomingWindow: %s", cfg.StalenessUpcomingWindow)
	}
}

func TestParseLogLevel(t *testing.T) {
	if got := parseLogLevel("debug"); got.String() != "debug" {
		t.Fatalf("unexpected level: %s", got)
	}
	if got := parseLogLevel("WARNING"); got.String() != "warn" {
		t.Fatalf("unexpected level: %s", got)
	}
	if got := parseLogLevel("nonsense"); got.String() != "info" {
		t.Fatalf("unexpected fallback level: %s", got)
	}
}
