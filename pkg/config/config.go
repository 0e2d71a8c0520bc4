package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Options is the raw server configuration supplied at construction time.
// It contains only declarative settings; Resolve turns it into an immutable
// Settings value with all derived state precomputed.
type Options struct {
	// Location is the base URI prefix for the server (e.g., "/api").
	// It must not end with a slash.
	// Default: "" (no prefix)
	Location string `yaml:"location"`

	// Timeout contains socket, client and server timeouts.
	Timeout TimeoutOptions `yaml:"timeout"`

	// TLS enables HTTPS when non-nil and switches the default port to 443.
	TLS *TLSOptions `yaml:"tls"`

	// Load configures the overload monitor consulted before each request
	// is admitted. When nil the monitor never reports overload.
	Load *LoadOptions `yaml:"load"`

	// CORS configures Cross-Origin Resource Sharing response headers.
	// A nil value (or `cors: false` in YAML) disables CORS entirely.
	CORS *CORSOptions `yaml:"cors"`

	// Security configures security response headers (HSTS, X-Frame-Options).
	// A nil value (or `security: false` in YAML) disables them entirely.
	Security *SecurityOptions `yaml:"security"`

	// CacheControlStatus lists the HTTP status codes that may carry
	// cache-control headers; all other statuses are forced to no-cache.
	// Default: [200]
	CacheControlStatus []int `yaml:"cache_control_status"`

	// Labels identifies this server among a cluster. A single YAML string
	// is accepted as a one-element list; duplicates are removed.
	Labels Labels `yaml:"labels"`

	// App holds arbitrary application state. The map reference is carried
	// into Settings as-is, it is never deep-copied.
	App map[string]any `yaml:"app"`

	// Plugins holds per-plugin state. Like App, the reference is preserved.
	Plugins map[string]any `yaml:"plugins"`
}

// TimeoutOptions contains the three server timeouts. The socket timeout
// bounds connection inactivity and defaults to two minutes; a negative
// value disables it. Client and server timeouts are disabled when zero
// and must stay below the socket timeout when both sides are enabled.
type TimeoutOptions struct {
	Socket time.Duration `yaml:"socket"`
	Client time.Duration `yaml:"client"`
	Server time.Duration `yaml:"server"`
}

// TLSOptions contains the TLS listener settings.
type TLSOptions struct {
	// CertFile is the path to the PEM-encoded certificate file.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key file.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3").
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// CipherSuites is a list of enabled cipher suite names.
	// If empty, Go's default secure cipher suites are used.
	CipherSuites []string `yaml:"cipher_suites"`

	// WatchCerts enables automatic certificate reload when the files
	// on disk change (e.g., after a Let's Encrypt renewal).
	WatchCerts bool `yaml:"watch_certs"`
}

// LoadOptions configures the overload monitor. A zero limit disables the
// corresponding check.
type LoadOptions struct {
	// SampleInterval is how often the monitor samples scheduler delay
	// and heap usage.
	// Default: 500ms
	SampleInterval time.Duration `yaml:"sample_interval"`

	// MaxHeapBytes rejects requests once heap usage exceeds this limit.
	MaxHeapBytes uint64 `yaml:"max_heap_bytes"`

	// MaxEventLoopDelay rejects requests once the sampled scheduler
	// delay exceeds this limit.
	MaxEventLoopDelay time.Duration `yaml:"max_event_loop_delay"`

	// MaxConcurrent rejects requests once this many are in flight.
	MaxConcurrent int64 `yaml:"max_concurrent"`
}

// Labels accepts either a single string or a list of strings in YAML.
type Labels []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Labels) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = Labels{s}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*l = Labels(list)
	return nil
}

// CORSOptions configures CORS response headers. The zero value enables
// CORS with defaults; set Disabled (or use `cors: false` in YAML) to turn
// it off while keeping the struct present.
type CORSOptions struct {
	// Origins is the ordered list of allowed origins. It may contain the
	// single entry "*" to allow any origin, or entries with "*" and "?"
	// wildcards which require MatchOrigin.
	Origins []string `yaml:"origin"`

	// Headers is the base Access-Control-Allow-Headers list.
	Headers []string `yaml:"headers"`

	// AdditionalHeaders is appended to Headers without replacing the
	// defaults.
	AdditionalHeaders []string `yaml:"additional_headers"`

	// Methods is the base Access-Control-Allow-Methods list.
	Methods []string `yaml:"methods"`

	// AdditionalMethods is appended to Methods.
	AdditionalMethods []string `yaml:"additional_methods"`

	// ExposedHeaders is the base Access-Control-Expose-Headers list.
	ExposedHeaders []string `yaml:"exposed_headers"`

	// AdditionalExposedHeaders is appended to ExposedHeaders.
	AdditionalExposedHeaders []string `yaml:"additional_exposed_headers"`

	// MatchOrigin enables per-request matching of the Origin header
	// against the configured origins. Wildcard origins require it.
	// Default: true
	MatchOrigin *bool `yaml:"match_origin"`

	// Credentials sets Access-Control-Allow-Credentials.
	Credentials bool `yaml:"credentials"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 86400 (one day)
	MaxAge int `yaml:"max_age"`

	// Disabled turns CORS off. YAML `cors: false` sets it.
	Disabled bool `yaml:"-"`
}

// UnmarshalYAML implements yaml.Unmarshaler. It accepts either a boolean
// (false disables CORS, true enables it with defaults) or a mapping.
func (o *CORSOptions) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return fmt.Errorf("cors must be a boolean or a mapping: %w", err)
		}
		*o = CORSOptions{Disabled: !enabled}
		return nil
	}
	type plain CORSOptions
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*o = CORSOptions(p)
	return nil
}

// SecurityOptions configures security response headers. The zero value
// enables both headers with defaults.
type SecurityOptions struct {
	// HSTS configures the Strict-Transport-Security header.
	HSTS HSTSOptions `yaml:"hsts"`

	// XFrame configures the X-Frame-Options header.
	XFrame XFrameOptions `yaml:"xframe"`

	// Disabled turns all security headers off. YAML `security: false`
	// sets it.
	Disabled bool `yaml:"-"`
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting a boolean or a
// mapping like CORSOptions.
func (o *SecurityOptions) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return fmt.Errorf("security must be a boolean or a mapping: %w", err)
		}
		*o = SecurityOptions{Disabled: !enabled}
		return nil
	}
	type plain SecurityOptions
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*o = SecurityOptions(p)
	return nil
}

// HSTSOptions configures the Strict-Transport-Security header. In YAML it
// accepts false (disabled), true (defaults), an integer max-age in
// seconds, or a mapping with max_age and include_subdomains.
type HSTSOptions struct {
	// MaxAge is the header max-age in seconds.
	// Default: 15768000 (six months)
	MaxAge int `yaml:"max_age"`

	// IncludeSubdomains appends "; includeSubdomains" to the header.
	IncludeSubdomains bool `yaml:"include_subdomains"`

	// Disabled suppresses the header.
	Disabled bool `yaml:"-"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *HSTSOptions) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var enabled bool
		if err := value.Decode(&enabled); err == nil {
			*o = HSTSOptions{Disabled: !enabled}
			return nil
		}
		var maxAge int
		if err := value.Decode(&maxAge); err == nil {
			*o = HSTSOptions{MaxAge: maxAge}
			return nil
		}
		return fmt.Errorf("hsts must be a boolean, an integer or a mapping")
	}
	type plain HSTSOptions
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*o = HSTSOptions(p)
	return nil
}

// XFrameOptions configures the X-Frame-Options header. In YAML it accepts
// false (disabled), true (DENY), a rule string, or a mapping with rule
// and source for allow-from rules.
type XFrameOptions struct {
	// Rule is the frame rule ("deny", "sameorigin" or "allow-from").
	// Default: "deny"
	Rule string `yaml:"rule"`

	// Source is the allowed origin for the allow-from rule. When empty,
	// allow-from degrades to SAMEORIGIN.
	Source string `yaml:"source"`

	// Disabled suppresses the header.
	Disabled bool `yaml:"-"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *XFrameOptions) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var enabled bool
		if err := value.Decode(&enabled); err == nil {
			if enabled {
				*o = XFrameOptions{Rule: "deny"}
			} else {
				*o = XFrameOptions{Disabled: true}
			}
			return nil
		}
		var rule string
		if err := value.Decode(&rule); err == nil {
			*o = XFrameOptions{Rule: rule}
			return nil
		}
		return fmt.Errorf("xframe must be a boolean, a string or a mapping")
	}
	type plain XFrameOptions
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*o = XFrameOptions(p)
	return nil
}
