package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"

	"golang.org/x/crypto/acme/autocert"
)

// newCertManager issues Let's Encrypt certificates for domain only
func newCertManager(domain, cacheDir string) (*autocert.Manager, error) {
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("creating certificate cache: %w", err)
	}

	return &autocert.Manager{
		Cache:  autocert.DirCache(cacheDir),
		Prompt: autocert.AcceptTOS,
		HostPolicy: func(ctx context.Context, host string) error {
			if host == domain {
				return nil
			}
			return fmt.Errorf("host %s not configured", host)
		},
	}, nil
}

// tlsConfig restricts the manager's config to modern protocol versions
func tlsConfig(m *autocert.Manager) *tls.Config {
	cfg := m.TLSConfig()
	cfg.MinVersion = tls.VersionTLS12
	cfg.CurvePreferences = []tls.CurveID{tls.X25519, tls.CurveP256}
	return cfg
}
