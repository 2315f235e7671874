package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/salesdesk")
	t.Setenv("JWT_ACCESS_SECRET", "s3cret")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "false")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("expected 5s probe timeout, got %s", cfg.ProbeTimeout)
	}
	if cfg.SequenceConflictRetries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.SequenceConflictRetries)
	}
	if len(cfg.WorkerSeeds) != 3 || !cfg.WorkerSeedEnabled {
		t.Errorf("unexpected seeds %v enabled=%v", cfg.WorkerSeeds, cfg.WorkerSeedEnabled)
	}
	if cfg.IsBrokerEnabled() {
		t.Error("broker must be disabled without AMQP_URL")
	}
}

func TestLoadRequiresJWTSecretOnlyForServers(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ACCESS_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT secret")
	}
	if _, err := LoadOperator(); err != nil {
		t.Fatalf("operator load: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"probe timeout": {"SCORING_PROBE_TIMEOUT", "soon"},
		"retries":       {"SEQUENCE_CONFLICT_RETRIES", "0"},
		"strategy":      {"RECONCILE_STRATEGY", "phone"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestWildcardOriginConflictsWithCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origin with credentials")
	}
}
