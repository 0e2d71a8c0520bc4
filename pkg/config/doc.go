// Package config resolves raw server options into immutable settings.
//
// The central entry point is Resolve, which merges caller-supplied
// Options over the built-in defaults, validates the merged result, and
// precomputes every derived response-header fragment: CORS allow/expose
// header strings and origin classification, security header values
// (Strict-Transport-Security, X-Frame-Options), and the cache-control
// status set. Derivation happens exactly once at construction so that
// per-response header assembly is plain string reuse.
//
// # Resolution
//
//	settings, err := config.Resolve(&config.Options{
//	    Location: "/api",
//	    CORS:     &config.CORSOptions{Origins: []string{"https://example.com"}},
//	})
//
// Resolve is a pure function of its input and the default table: it never
// mutates its argument, and resolving the same options twice yields
// byte-identical derived strings. The only state carried over by
// reference is the App and Plugins maps, which are shared shallowly by
// contract.
//
// # Validation
//
// Invalid options are programmer errors and fail resolution outright.
// All violations are collected into a ValidationError with dotted field
// paths:
//
//	configuration validation failed with 2 errors:
//	  - location: must not end with a slash
//	  - timeout.server: must be less than the socket timeout
//
// # File loading
//
// The vesper binary loads a YAML file through LoadFile (or
// LoadFileWithEnvOverrides, which applies VESPER_SECTION_FIELD
// environment overrides on top). Several option fields accept multiple
// YAML forms: cors and security accept false to disable, labels accepts
// a single string or a list, hsts accepts a boolean, an integer max-age
// or a mapping, and xframe accepts a boolean, a rule string or a mapping.
package config
