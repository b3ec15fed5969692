package app

import (
	"fmt"
	"os"

	"bmcd/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.Config == nil {
		return fmt.Errorf("no effective configuration")
	}
	if err := eff.Config.Validate(); err != nil {
		return err
	}

	if eff.DBPath == "" {
		return fmt.Errorf("event log path is empty: set --db flag, BMCD_DB_PATH env, or storage.db_path in config")
	}

	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	if eff.Config.Retention.Enabled && eff.Config.Retention.Period.Duration() <= 0 {
		return fmt.Errorf("retention enabled but retention.period is not set")
	}

	return nil
}
