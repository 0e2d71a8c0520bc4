package tls

import (
	"crypto/tls"
	"fmt"
	"os"

	"vesper-hq/vesper/pkg/config"
)

// New converts resolved TLS options into a crypto/tls.Config. The
// certificate is loaded eagerly unless a reloader is attached afterwards
// with UseReloader.
func New(opts *config.TLSOptions) (*tls.Config, error) {
	if opts.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if opts.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	if _, err := os.Stat(opts.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", opts.CertFile)
	}
	if _, err := os.Stat(opts.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", opts.KeyFile)
	}

	minVersion, err := parseVersion(opts.MinVersion)
	if err != nil {
		return nil, err
	}

	suites, err := parseCipherSuites(opts.CipherSuites)
	if err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
		CipherSuites: suites,
	}, nil
}

// UseReloader switches the config to serve certificates from the
// reloader instead of the statically loaded pair.
func UseReloader(cfg *tls.Config, r *CertificateReloader) {
	cfg.Certificates = nil
	cfg.GetCertificate = r.GetCertificate
}

// parseVersion maps a version string to the crypto/tls constant.
func parseVersion(version string) (uint16, error) {
	switch version {
	case "", "1.3":
		return tls.VersionTLS13, nil
	case "1.2":
		return tls.VersionTLS12, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", version)
	}
}

// parseCipherSuites maps cipher suite names to their IDs. An empty list
// keeps Go's default secure suites.
func parseCipherSuites(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}

	byName := make(map[string]uint16)
	for _, suite := range tls.CipherSuites() {
		byName[suite.Name] = suite.ID
	}

	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown or insecure cipher suite %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
