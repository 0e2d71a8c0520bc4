package config

import "time"

// Default values for configuration fields.
const (
	// Timeout defaults
	DefaultSocketTimeout = 2 * time.Minute

	// Load monitor defaults
	DefaultLoadSampleInterval = 500 * time.Millisecond

	// TLS defaults
	DefaultTLSMinVersion = "1.3"

	// CORS defaults
	DefaultCORSMaxAge      = 86400 // one day
	DefaultCORSMatchOrigin = true

	// Security defaults
	DefaultHSTSMaxAge = 15768000 // six months
	DefaultXFrameRule = "deny"

	// Cache-control defaults
	DefaultCacheControlStatus = 200
)

// Default list values. These are returned fresh from ApplyDefaults so a
// resolved configuration never aliases a shared slice.
var (
	defaultCORSOrigins = []string{"*"}
	defaultCORSHeaders = []string{"Accept", "Authorization", "Content-Type", "If-None-Match"}
	defaultCORSMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSExposed = []string{"WWW-Authenticate", "Server-Authorization"}
)

// ApplyDefaults applies default values to an Options struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(opts *Options) {
	// Timeout defaults. A negative socket timeout means disabled and is
	// left alone.
	if opts.Timeout.Socket == 0 {
		opts.Timeout.Socket = DefaultSocketTimeout
	}

	// TLS defaults
	if opts.TLS != nil && opts.TLS.MinVersion == "" {
		opts.TLS.MinVersion = DefaultTLSMinVersion
	}

	// Load monitor defaults
	if opts.Load != nil && opts.Load.SampleInterval == 0 {
		opts.Load.SampleInterval = DefaultLoadSampleInterval
	}

	// Cache-control defaults
	if len(opts.CacheControlStatus) == 0 {
		opts.CacheControlStatus = []int{DefaultCacheControlStatus}
	}

	// CORS defaults
	if opts.CORS != nil && !opts.CORS.Disabled {
		applyCORSDefaults(opts.CORS)
	}

	// Security defaults
	if opts.Security != nil && !opts.Security.Disabled {
		applySecurityDefaults(opts.Security)
	}
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSOptions) {
	if len(cors.Origins) == 0 {
		cors.Origins = append([]string(nil), defaultCORSOrigins...)
	}
	if len(cors.Headers) == 0 {
		cors.Headers = append([]string(nil), defaultCORSHeaders...)
	}
	if len(cors.Methods) == 0 {
		cors.Methods = append([]string(nil), defaultCORSMethods...)
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = append([]string(nil), defaultCORSExposed...)
	}
	if cors.MatchOrigin == nil {
		matchOrigin := DefaultCORSMatchOrigin
		cors.MatchOrigin = &matchOrigin
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}

// applySecurityDefaults applies default values to security header
// configuration.
func applySecurityDefaults(sec *SecurityOptions) {
	if !sec.HSTS.Disabled && sec.HSTS.MaxAge == 0 {
		sec.HSTS.MaxAge = DefaultHSTSMaxAge
	}
	if !sec.XFrame.Disabled && sec.XFrame.Rule == "" {
		sec.XFrame.Rule = DefaultXFrameRule
	}
}
