package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestAddrDefaults(t *testing.T) {
	var c Config
	if got := c.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("default addr: %q", got)
	}
	c.Server.Address = "127.0.0.1"
	c.Server.Port = 9000
	if got := c.Addr(); got != "127.0.0.1:9000" {
		t.Fatalf("addr: %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  address: 127.0.0.1
  port: 9999
  db_path: /tmp/db
  engine: fasthttp
messaging:
  max_content_bytes: 64KB
  default_page_size: 25
  max_page_size: 100
  allowed_types: [text, file]
maintenance:
  enabled: true
  cron: "*/10 * * * *"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Engine != "fasthttp" || cfg.Server.DBPath != "/tmp/db" {
		t.Fatalf("server config: %+v", cfg.Server)
	}
	if cfg.Messaging.MaxContentBytes.Int64() != 64*1000 && cfg.Messaging.MaxContentBytes.Int64() != 64*1024 {
		t.Fatalf("size parse: %d", cfg.Messaging.MaxContentBytes.Int64())
	}
	if cfg.Messaging.DefaultPageSize != 25 || len(cfg.Messaging.AllowedTypes) != 2 {
		t.Fatalf("messaging config: %+v", cfg.Messaging)
	}
	if !cfg.Maintenance.Enabled || cfg.Maintenance.Cron != "*/10 * * * *" {
		t.Fatalf("maintenance config: %+v", cfg.Maintenance)
	}
}

func TestSizeBytesPlainInteger(t *testing.T) {
	var s SizeBytes
	if err := yaml.Unmarshal([]byte("1024"), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Int64() != 1024 {
		t.Fatalf("plain integer: %d", s.Int64())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHATCORE_ADDR", "10.0.0.1:7777")
	t.Setenv("CHATCORE_DB_PATH", "/data/chat")
	t.Setenv("CHATCORE_API_BACKEND_KEYS", "k1, k2")

	var cfg Config
	if !LoadEnvOverrides(&cfg) {
		t.Fatalf("env overrides not detected")
	}
	if cfg.Server.Address != "10.0.0.1" || cfg.Server.Port != 7777 {
		t.Fatalf("addr override: %+v", cfg.Server)
	}
	if cfg.Server.DBPath != "/data/chat" {
		t.Fatalf("db override: %q", cfg.Server.DBPath)
	}
	if len(cfg.Security.APIKeys.Backend) != 2 || cfg.Security.APIKeys.Backend[1] != "k2" {
		t.Fatalf("key list override: %+v", cfg.Security.APIKeys.Backend)
	}
}

func TestLoadEffectiveMissingFile(t *testing.T) {
	cfg, _, err := LoadEffective(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be fatal: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected default config")
	}
}

func TestSigningKeys(t *testing.T) {
	SetRuntime(&RuntimeConfig{SigningKeys: map[string]struct{}{"secret": {}}})
	t.Cleanup(func() { SetRuntime(nil) })
	keys := GetSigningKeys()
	if _, ok := keys["secret"]; !ok || len(keys) != 1 {
		t.Fatalf("signing keys: %v", keys)
	}
}
