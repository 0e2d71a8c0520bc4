// Vesper is an HTTP(S) server host with admission control.
//
// It binds one or more listeners, rejects traffic early when the
// process is overloaded, decorates responses with precomputed CORS and
// security headers, and shuts down within a bounded drain window.
//
// Usage:
//
//	# Start the server with the default configuration file
//	vesper run
//
//	# Start with a custom configuration file
//	vesper run --config /etc/vesper/config.yaml
//
//	# Validate a configuration file without starting
//	vesper validate --config /etc/vesper/config.yaml
//
//	# Inspect the audit trail
//	vesper audit recent --limit 20
//
//	# Show version information
//	vesper version
package main

func main() {
	Execute()
}
