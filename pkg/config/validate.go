package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "timeout.server").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates server options after defaults have been applied.
// It returns a ValidationError if any rules fail, nil otherwise. All
// validation errors are collected and returned together. Invalid options
// are programmer errors: a server must never be constructed from them.
func Validate(opts *Options) error {
	var errs []FieldError

	errs = append(errs, validateLocation(opts.Location)...)
	errs = append(errs, validateTimeouts(&opts.Timeout)...)
	errs = append(errs, validateTLS(opts.TLS)...)
	errs = append(errs, validateCacheControl(opts.CacheControlStatus)...)
	errs = append(errs, validateCORS(opts.CORS)...)
	errs = append(errs, validateSecurity(opts.Security)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateLocation enforces the base URI prefix rules.
func validateLocation(location string) []FieldError {
	var errs []FieldError

	if strings.HasSuffix(location, "/") {
		errs = append(errs, FieldError{
			Field:   "location",
			Message: "must not end with a slash",
		})
	}

	return errs
}

// validateTimeouts enforces the timeout ordering invariants. The server
// and client timeouts must stay below the socket timeout, otherwise the
// socket would be torn down while its side is still allowed to proceed.
func validateTimeouts(t *TimeoutOptions) []FieldError {
	var errs []FieldError

	if t.Client < 0 {
		errs = append(errs, FieldError{
			Field:   "timeout.client",
			Message: "must be zero or positive",
		})
	}
	if t.Server < 0 {
		errs = append(errs, FieldError{
			Field:   "timeout.server",
			Message: "must be zero or positive",
		})
	}

	// A negative socket timeout disables it, lifting the ordering rules.
	if t.Socket > 0 {
		if t.Server > 0 && t.Server >= t.Socket {
			errs = append(errs, FieldError{
				Field:   "timeout.server",
				Message: "must be less than the socket timeout",
			})
		}
		if t.Client > 0 && t.Client >= t.Socket {
			errs = append(errs, FieldError{
				Field:   "timeout.client",
				Message: "must be less than the socket timeout",
			})
		}
	}

	return errs
}

// validateTLS checks TLS listener settings.
func validateTLS(tls *TLSOptions) []FieldError {
	if tls == nil {
		return nil
	}

	var errs []FieldError

	if tls.CertFile == "" {
		errs = append(errs, FieldError{
			Field:   "tls.cert_file",
			Message: "certificate file is required",
		})
	}
	if tls.KeyFile == "" {
		errs = append(errs, FieldError{
			Field:   "tls.key_file",
			Message: "key file is required",
		})
	}
	if tls.MinVersion != "" && tls.MinVersion != "1.2" && tls.MinVersion != "1.3" {
		errs = append(errs, FieldError{
			Field:   "tls.min_version",
			Message: fmt.Sprintf("unsupported TLS version %q (expected \"1.2\" or \"1.3\")", tls.MinVersion),
		})
	}

	return errs
}

// validateCacheControl checks the cacheable status code list.
func validateCacheControl(codes []int) []FieldError {
	var errs []FieldError

	for _, code := range codes {
		if code < 100 || code > 599 {
			errs = append(errs, FieldError{
				Field:   "cache_control_status",
				Message: fmt.Sprintf("%d is not a valid HTTP status code", code),
			})
		}
	}

	return errs
}

// validateCORS enforces the origin classification rules. The full
// derivation happens in Resolve; the rules checked here are the ones
// that make a configuration unresolvable.
func validateCORS(cors *CORSOptions) []FieldError {
	if cors == nil || cors.Disabled {
		return nil
	}

	var errs []FieldError

	anyOrigin := false
	wildcards := false
	for _, origin := range cors.Origins {
		if origin == "*" {
			anyOrigin = true
		} else if strings.ContainsAny(origin, "*?") {
			wildcards = true
		}
	}

	if anyOrigin && len(cors.Origins) > 1 {
		errs = append(errs, FieldError{
			Field:   "cors.origin",
			Message: `"*" cannot be combined with other origins`,
		})
	}

	if wildcards && cors.MatchOrigin != nil && !*cors.MatchOrigin {
		errs = append(errs, FieldError{
			Field:   "cors.origin",
			Message: "wildcard origins require match_origin",
		})
	}

	return errs
}

// validateSecurity checks security header settings.
func validateSecurity(sec *SecurityOptions) []FieldError {
	if sec == nil || sec.Disabled {
		return nil
	}

	var errs []FieldError

	if !sec.HSTS.Disabled && sec.HSTS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "security.hsts.max_age",
			Message: "must be zero or positive",
		})
	}

	return errs
}
