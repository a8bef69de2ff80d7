package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
alphavantage:
  api_key: key
auth:
  jwt_secret: secret
`

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	if err := yaml.Unmarshal([]byte("90s"), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Fatalf("expected 90s, got %s", d.Std())
	}

	if err := yaml.Unmarshal([]byte("ninety"), &d); err == nil {
		t.Fatal("malformed duration must fail")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Cache.TTL.Quote.Std() != time.Minute {
		t.Fatalf("expected 60s quote ttl, got %s", cfg.Cache.TTL.Quote.Std())
	}
	if cfg.Cache.FreshWindow.Std() != 5*time.Minute {
		t.Fatalf("expected 5m fresh window, got %s", cfg.Cache.FreshWindow.Std())
	}
	if cfg.Archive.Backend != "none" {
		t.Fatalf("expected archive disabled by default, got %q", cfg.Archive.Backend)
	}
}

func TestValidateRejectsBadArchiveBackend(t *testing.T) {
	_, err := LoadWithEnv(writeConfig(t, minimalConfig+`
archive:
  backend: s3
`))
	if err == nil {
		t.Fatal("unknown archive backend must fail validation")
	}
}

func TestEnvOverridesWinAndSatisfyValidation(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "from-env")

	cfg, err := LoadWithEnv(writeConfig(t, `
environment: test
auth:
  jwt_secret: secret
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AlphaVantage.APIKey != "from-env" {
		t.Fatalf("env override lost: %q", cfg.AlphaVantage.APIKey)
	}
}
