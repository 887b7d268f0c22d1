package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Port != defaultServicePort {
		t.Errorf("port = %d, want %d", cfg.Service.Port, defaultServicePort)
	}
	if cfg.Service.Concurrency != defaultConcurrency {
		t.Errorf("concurrency = %d, want %d", cfg.Service.Concurrency, defaultConcurrency)
	}
	if cfg.LLM.Model != defaultLLMModel {
		t.Errorf("llm model = %q, want %q", cfg.LLM.Model, defaultLLMModel)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Errorf("conn max lifetime = %v, want 1h", cfg.Database.ConnMaxLifetime)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
service:
  port: 9001
  concurrency: 4
database:
  host: db.internal
  password: secret
ml:
  enabled: true
  service_url: http://ml.internal:8076
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Service.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("db host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.ML.ServiceURL != "http://ml.internal:8076" {
		t.Errorf("ml url = %q", cfg.ML.ServiceURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	// Unset fields still get defaults.
	if cfg.Database.Port != defaultDBPort {
		t.Errorf("db port = %d, want default %d", cfg.Database.Port, defaultDBPort)
	}
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("service:\n  port: 9001\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("VERIFIER_PORT", "9100")
	t.Setenv("POSTGRES_PASSWORD", "env-secret")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Service.Port)
	}
	if cfg.Database.Password != "env-secret" {
		t.Errorf("db password = %q, want env override", cfg.Database.Password)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	if _, err := Load("/does/not/exist.yml"); err == nil {
		t.Fatal("Load() error = nil, want read failure")
	}
}
