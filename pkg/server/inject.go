package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
)

// credentialsKey is the context key for pre-authenticated credentials
// supplied at injection time.
type credentialsKey struct{}

// CredentialsFrom returns the credentials attached to an injected
// request, or nil for requests arriving over the network.
func CredentialsFrom(ctx context.Context) map[string]any {
	creds, _ := ctx.Value(credentialsKey{}).(map[string]any)
	return creds
}

// InjectOptions describes a synthetic request.
type InjectOptions struct {
	// Method is the HTTP method. Default: GET.
	Method string

	// URL is the request target, path or absolute.
	URL string

	// Headers are added to the request verbatim.
	Headers http.Header

	// Payload is the request body.
	Payload string

	// RemoteAddr overrides the simulated peer address.
	RemoteAddr string

	// Credentials are attached to the request context, bypassing
	// authentication the way a pre-authenticated network request would.
	Credentials map[string]any
}

// InjectResult is the fully buffered response to an injected request.
type InjectResult struct {
	StatusCode int
	Headers    http.Header
	Body       string
}

// Inject dispatches a synthetic request through the same admission and
// header path used for network traffic, without a listener, and returns
// the buffered response. The server does not need to be listening.
func (s *Server) Inject(opts InjectOptions) (*InjectResult, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("inject URL is required")
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body *strings.Reader
	if opts.Payload != "" {
		body = strings.NewReader(opts.Payload)
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, opts.URL, body)
	for name, values := range opts.Headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	if opts.RemoteAddr != "" {
		req.RemoteAddr = opts.RemoteAddr
	}
	if opts.Credentials != nil {
		req = req.WithContext(context.WithValue(req.Context(), credentialsKey{}, opts.Credentials))
	}

	s.mu.Lock()
	handler := s.admit(s.decorate(s.handler))
	s.mu.Unlock()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	res := rec.Result()
	return &InjectResult{
		StatusCode: res.StatusCode,
		Headers:    res.Header,
		Body:       rec.Body.String(),
	}, nil
}
