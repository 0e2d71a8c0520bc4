package config

import (
	"time"
)

// Settings is the fully resolved server configuration. It is immutable
// after Resolve returns; the response-header fragments it carries are
// derived exactly once and reused verbatim on every response.
type Settings struct {
	// Location is the validated base URI prefix.
	Location string

	// Timeout contains the normalized timeouts. A zero value means the
	// timeout is disabled.
	Timeout Timeouts

	// TLS is the TLS listener configuration, nil for plain HTTP.
	TLS *TLSOptions

	// Load is the overload monitor configuration, nil when no limits
	// are set.
	Load *LoadOptions

	// CORS holds the derived CORS state, nil when CORS is disabled.
	CORS *CORS

	// Security holds the precomputed security header values, nil when
	// security headers are disabled.
	Security *Security

	// CacheControlStatus is the set of status codes allowed to carry
	// cache-control headers.
	CacheControlStatus map[int]struct{}

	// Labels is the deduplicated label set identifying this server.
	Labels map[string]struct{}

	// App is the caller-supplied application state, shared by reference.
	App map[string]any

	// Plugins is the caller-supplied plugin state, shared by reference.
	Plugins map[string]any
}

// Timeouts contains the normalized server timeouts. Unlike TimeoutOptions,
// a zero value always means disabled: the socket default has already been
// applied and the negative disable sentinel has been folded away.
type Timeouts struct {
	Socket time.Duration
	Client time.Duration
	Server time.Duration
}

// Resolve validates and normalizes raw options into ready-to-use settings.
// It merges the options over the built-in defaults, validates the merged
// result, and precomputes every derived response-header fragment so that
// later response assembly is plain string reuse.
//
// Resolve never mutates its argument and is idempotent: resolving the
// same options twice yields byte-identical derived strings. The App and
// Plugins maps are the only state carried over by reference.
func Resolve(opts *Options) (*Settings, error) {
	if opts == nil {
		opts = &Options{}
	}

	merged := opts.clone()
	ApplyDefaults(merged)

	if err := Validate(merged); err != nil {
		return nil, err
	}

	s := &Settings{
		Location: merged.Location,
		Timeout: Timeouts{
			Socket: normalizeTimeout(merged.Timeout.Socket),
			Client: normalizeTimeout(merged.Timeout.Client),
			Server: normalizeTimeout(merged.Timeout.Server),
		},
		TLS:                merged.TLS,
		Load:               merged.Load,
		CacheControlStatus: make(map[int]struct{}, len(merged.CacheControlStatus)),
		Labels:             make(map[string]struct{}, len(merged.Labels)),
		App:                opts.App,
		Plugins:            opts.Plugins,
	}

	for _, code := range merged.CacheControlStatus {
		s.CacheControlStatus[code] = struct{}{}
	}
	for _, label := range merged.Labels {
		s.Labels[label] = struct{}{}
	}

	if merged.CORS != nil && !merged.CORS.Disabled {
		cors, err := deriveCORS(merged.CORS)
		if err != nil {
			return nil, err
		}
		s.CORS = cors
	}

	if merged.Security != nil && !merged.Security.Disabled {
		s.Security = deriveSecurity(merged.Security)
	}

	return s, nil
}

// CacheableStatus reports whether responses with the given status code
// may carry cache-control headers.
func (s *Settings) CacheableStatus(code int) bool {
	_, ok := s.CacheControlStatus[code]
	return ok
}

// HasLabel reports whether the server carries the given label.
func (s *Settings) HasLabel(label string) bool {
	_, ok := s.Labels[label]
	return ok
}

// normalizeTimeout folds the negative disable sentinel into zero.
func normalizeTimeout(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// clone returns a deep copy of the options, except for the App and
// Plugins maps which are shared shallowly by contract.
func (o *Options) clone() *Options {
	c := &Options{
		Location:           o.Location,
		Timeout:            o.Timeout,
		CacheControlStatus: append([]int(nil), o.CacheControlStatus...),
		Labels:             append(Labels(nil), o.Labels...),
		App:                o.App,
		Plugins:            o.Plugins,
	}

	if o.TLS != nil {
		tls := *o.TLS
		tls.CipherSuites = append([]string(nil), o.TLS.CipherSuites...)
		c.TLS = &tls
	}
	if o.Load != nil {
		load := *o.Load
		c.Load = &load
	}
	if o.CORS != nil {
		cors := *o.CORS
		cors.Origins = append([]string(nil), o.CORS.Origins...)
		cors.Headers = append([]string(nil), o.CORS.Headers...)
		cors.AdditionalHeaders = append([]string(nil), o.CORS.AdditionalHeaders...)
		cors.Methods = append([]string(nil), o.CORS.Methods...)
		cors.AdditionalMethods = append([]string(nil), o.CORS.AdditionalMethods...)
		cors.ExposedHeaders = append([]string(nil), o.CORS.ExposedHeaders...)
		cors.AdditionalExposedHeaders = append([]string(nil), o.CORS.AdditionalExposedHeaders...)
		if o.CORS.MatchOrigin != nil {
			matchOrigin := *o.CORS.MatchOrigin
			cors.MatchOrigin = &matchOrigin
		}
		c.CORS = &cors
	}
	if o.Security != nil {
		sec := *o.Security
		c.Security = &sec
	}

	return c
}
