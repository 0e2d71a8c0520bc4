package config

import (
	"fmt"
	"strings"
)

// Security holds the precomputed security header values. An empty string
// means the corresponding header is disabled. The values are consumed
// verbatim on every outgoing response and never recomputed.
type Security struct {
	// HSTS is the Strict-Transport-Security header value.
	HSTS string

	// XFrame is the X-Frame-Options header value.
	XFrame string
}

// deriveSecurity precomputes the security header values from the options.
func deriveSecurity(opts *SecurityOptions) *Security {
	return &Security{
		HSTS:   deriveHSTS(&opts.HSTS),
		XFrame: deriveXFrame(&opts.XFrame),
	}
}

// deriveHSTS builds the Strict-Transport-Security value.
func deriveHSTS(opts *HSTSOptions) string {
	if opts.Disabled {
		return ""
	}

	maxAge := opts.MaxAge
	if maxAge == 0 {
		maxAge = DefaultHSTSMaxAge
	}

	value := fmt.Sprintf("max-age=%d", maxAge)
	if opts.IncludeSubdomains {
		value += "; includeSubdomains"
	}
	return value
}

// deriveXFrame builds the X-Frame-Options value. An allow-from rule
// without a source degrades to SAMEORIGIN since ALLOW-FROM is meaningless
// without one.
func deriveXFrame(opts *XFrameOptions) string {
	if opts.Disabled {
		return ""
	}

	rule := opts.Rule
	if rule == "" {
		rule = DefaultXFrameRule
	}

	if strings.EqualFold(rule, "allow-from") {
		if opts.Source == "" {
			return "SAMEORIGIN"
		}
		return "ALLOW-FROM " + opts.Source
	}

	return strings.ToUpper(rule)
}
