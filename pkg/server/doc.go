// Package server implements the HTTP(S) listener lifecycle: flexible
// positional construction, admission control under load, connection
// tracking, and shutdown bounded by a drain timeout.
//
// A Server is built with New from any combination of host, port and
// *config.Options, then started and stopped repeatedly on the same
// instance. Every inbound request passes the admission gate before the
// installed handler runs: when the load monitor reports overload the
// request is answered with 503 and a load snapshot, without touching
// the pipeline. Responses are decorated with the CORS and security
// header values precomputed at construction.
//
// Stop closes the listener immediately and races a drain timer against
// the graceful completion of in-flight connections; when the timer
// wins, the connection registry destroys the stragglers so Stop never
// exceeds its bound.
//
// Inject dispatches a synthetic request through the identical admission
// and header path without a network listener, for tests and health
// probes.
package server
