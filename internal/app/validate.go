package app

import (
	"fmt"
	"os"

	"chatcore/pkg/config"
	"chatcore/pkg/httpx"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.DBPath == "" {
		return fmt.Errorf("database path is empty: set --db flag, CHATCORE_DB_PATH env, or server.db_path in config")
	}

	if e := eff.Config.Server.Engine; e != "" && e != httpx.EngineNetHTTP && e != httpx.EngineFastHTTP {
		return fmt.Errorf("unknown server engine %q: use %q or %q", e, httpx.EngineNetHTTP, httpx.EngineFastHTTP)
	}

	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	msg := eff.Config.Messaging
	if msg.DefaultPageSize < 0 || msg.MaxPageSize < 0 {
		return fmt.Errorf("messaging page sizes must not be negative")
	}
	if msg.DefaultPageSize > 0 && msg.MaxPageSize > 0 && msg.DefaultPageSize > msg.MaxPageSize {
		return fmt.Errorf("messaging.default_page_size exceeds messaging.max_page_size")
	}
	return nil
}
