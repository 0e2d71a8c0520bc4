package config

import (
	"regexp"
	"strings"
)

// OriginMode classifies the configured CORS origins.
type OriginMode int

const (
	// OriginAny allows every origin ("*" was the only configured entry).
	OriginAny OriginMode = iota

	// OriginList restricts origins to the qualified list plus any
	// wildcard patterns.
	OriginList
)

// CORS is the derived CORS state. All strings are computed once at
// construction; per-request work is limited to origin matching and
// header assignment.
type CORS struct {
	// Mode is the origin classification.
	Mode OriginMode

	// Qualified contains the origins without wildcard characters.
	Qualified []string

	// QualifiedString is Qualified joined with spaces, for the fast
	// exact-match response path.
	QualifiedString string

	// Wildcards contains one anchored pattern per wildcard origin.
	Wildcards []*regexp.Regexp

	// HeaderString is the precomputed Access-Control-Allow-Headers value.
	HeaderString string

	// MethodString is the precomputed Access-Control-Allow-Methods value.
	MethodString string

	// ExposedHeaderString is the precomputed Access-Control-Expose-Headers
	// value.
	ExposedHeaderString string

	// MatchOrigin enables per-request matching of the Origin header.
	MatchOrigin bool

	// Credentials sets Access-Control-Allow-Credentials.
	Credentials bool

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// deriveCORS classifies the configured origins and precomputes the header
// strings. The options have already passed Validate, so the "*" mixing and
// wildcard-without-matching rules hold.
func deriveCORS(opts *CORSOptions) (*CORS, error) {
	c := &CORS{
		HeaderString:        strings.Join(append(append([]string(nil), opts.Headers...), opts.AdditionalHeaders...), ", "),
		MethodString:        strings.Join(append(append([]string(nil), opts.Methods...), opts.AdditionalMethods...), ", "),
		ExposedHeaderString: strings.Join(append(append([]string(nil), opts.ExposedHeaders...), opts.AdditionalExposedHeaders...), ", "),
		MatchOrigin:         opts.MatchOrigin != nil && *opts.MatchOrigin,
		Credentials:         opts.Credentials,
		MaxAge:              opts.MaxAge,
	}

	if len(opts.Origins) == 1 && opts.Origins[0] == "*" {
		c.Mode = OriginAny
		return c, nil
	}

	c.Mode = OriginList
	for _, origin := range opts.Origins {
		if strings.ContainsAny(origin, "*?") {
			c.Wildcards = append(c.Wildcards, wildcardPattern(origin))
		} else {
			c.Qualified = append(c.Qualified, origin)
		}
	}
	c.QualifiedString = strings.Join(c.Qualified, " ")

	return c, nil
}

// MatchesOrigin reports whether the given request origin is allowed,
// checking the qualified list before the wildcard patterns.
func (c *CORS) MatchesOrigin(origin string) bool {
	if c.Mode == OriginAny {
		return true
	}
	for _, qualified := range c.Qualified {
		if qualified == origin {
			return true
		}
	}
	for _, pattern := range c.Wildcards {
		if pattern.MatchString(origin) {
			return true
		}
	}
	return false
}

// wildcardPattern converts a wildcard origin into an anchored pattern:
// literal segments are escaped, "*" becomes ".*" and "?" becomes ".".
func wildcardPattern(origin string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(origin)
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\?`, ".")
	return regexp.MustCompile("^" + quoted + "$")
}
