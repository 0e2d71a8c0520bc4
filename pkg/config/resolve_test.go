package config

import (
	"testing"
	"time"
)

func TestResolveDefaults(t *testing.T) {
	settings, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve(nil) returned error: %v", err)
	}

	if settings.Timeout.Socket != DefaultSocketTimeout {
		t.Errorf("socket timeout = %v, want %v", settings.Timeout.Socket, DefaultSocketTimeout)
	}
	if settings.Timeout.Client != 0 {
		t.Errorf("client timeout = %v, want disabled", settings.Timeout.Client)
	}
	if !settings.CacheableStatus(200) {
		t.Error("200 should be cacheable by default")
	}
	if settings.CacheableStatus(404) {
		t.Error("404 should not be cacheable by default")
	}
	if settings.CORS != nil {
		t.Error("CORS should be disabled by default")
	}
	if settings.Security != nil {
		t.Error("security headers should be disabled by default")
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	opts := &Options{
		CORS: &CORSOptions{Origins: []string{"https://a.com"}},
	}

	if _, err := Resolve(opts); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if opts.Timeout.Socket != 0 {
		t.Errorf("input socket timeout mutated to %v", opts.Timeout.Socket)
	}
	if len(opts.CORS.Headers) != 0 {
		t.Errorf("input CORS headers mutated to %v", opts.CORS.Headers)
	}
	if opts.CacheControlStatus != nil {
		t.Errorf("input cache control status mutated to %v", opts.CacheControlStatus)
	}
}

func TestResolveIdempotent(t *testing.T) {
	opts := &Options{
		CORS: &CORSOptions{
			Origins:           []string{"https://a.com", "https://*.b.com"},
			AdditionalHeaders: []string{"X-Custom"},
		},
		Security: &SecurityOptions{
			HSTS: HSTSOptions{IncludeSubdomains: true},
		},
		Labels: Labels{"api", "edge", "api"},
	}

	first, err := Resolve(opts)
	if err != nil {
		t.Fatalf("first Resolve returned error: %v", err)
	}
	second, err := Resolve(opts)
	if err != nil {
		t.Fatalf("second Resolve returned error: %v", err)
	}

	if first.CORS.HeaderString != second.CORS.HeaderString {
		t.Errorf("header strings differ: %q vs %q", first.CORS.HeaderString, second.CORS.HeaderString)
	}
	if first.CORS.MethodString != second.CORS.MethodString {
		t.Errorf("method strings differ: %q vs %q", first.CORS.MethodString, second.CORS.MethodString)
	}
	if first.CORS.QualifiedString != second.CORS.QualifiedString {
		t.Errorf("qualified strings differ: %q vs %q", first.CORS.QualifiedString, second.CORS.QualifiedString)
	}
	if first.Security.HSTS != second.Security.HSTS {
		t.Errorf("HSTS values differ: %q vs %q", first.Security.HSTS, second.Security.HSTS)
	}
}

func TestResolveTimeouts(t *testing.T) {
	tests := []struct {
		name    string
		timeout TimeoutOptions
		wantErr bool
	}{
		{
			name:    "server not below socket",
			timeout: TimeoutOptions{Socket: 1000 * time.Millisecond, Server: 2000 * time.Millisecond},
			wantErr: true,
		},
		{
			name:    "server equal to socket",
			timeout: TimeoutOptions{Socket: 2 * time.Second, Server: 2 * time.Second},
			wantErr: true,
		},
		{
			name:    "server below socket",
			timeout: TimeoutOptions{Socket: 5000 * time.Millisecond, Server: 2000 * time.Millisecond},
			wantErr: false,
		},
		{
			name:    "client not below socket",
			timeout: TimeoutOptions{Socket: time.Second, Client: time.Minute},
			wantErr: true,
		},
		{
			name:    "client not below default socket",
			timeout: TimeoutOptions{Client: 3 * time.Minute},
			wantErr: true,
		},
		{
			name:    "disabled socket lifts ordering",
			timeout: TimeoutOptions{Socket: -1, Server: time.Hour, Client: time.Hour},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(&Options{Timeout: tt.timeout})
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveDisabledSocketNormalized(t *testing.T) {
	settings, err := Resolve(&Options{Timeout: TimeoutOptions{Socket: -1}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if settings.Timeout.Socket != 0 {
		t.Errorf("disabled socket timeout = %v, want 0", settings.Timeout.Socket)
	}
}

func TestResolveLocation(t *testing.T) {
	if _, err := Resolve(&Options{Location: "/api/"}); err == nil {
		t.Error("trailing slash location should fail")
	}

	settings, err := Resolve(&Options{Location: "/api"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if settings.Location != "/api" {
		t.Errorf("location = %q, want %q", settings.Location, "/api")
	}
}

func TestResolveLabels(t *testing.T) {
	settings, err := Resolve(&Options{Labels: Labels{"api", "edge", "api"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if len(settings.Labels) != 2 {
		t.Errorf("labels count = %d, want 2", len(settings.Labels))
	}
	if !settings.HasLabel("api") || !settings.HasLabel("edge") {
		t.Errorf("labels = %v, want api and edge", settings.Labels)
	}
}

func TestResolveCacheControlStatus(t *testing.T) {
	settings, err := Resolve(&Options{CacheControlStatus: []int{200, 204, 304}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	for _, code := range []int{200, 204, 304} {
		if !settings.CacheableStatus(code) {
			t.Errorf("status %d should be cacheable", code)
		}
	}
	if settings.CacheableStatus(500) {
		t.Error("status 500 should not be cacheable")
	}

	if _, err := Resolve(&Options{CacheControlStatus: []int{99}}); err == nil {
		t.Error("out-of-range status code should fail")
	}
}

func TestResolveSharesAppAndPlugins(t *testing.T) {
	app := map[string]any{"name": "demo"}
	plugins := map[string]any{"auth": struct{}{}}

	settings, err := Resolve(&Options{App: app, Plugins: plugins})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	// Shallow merge contract: the caller's references are preserved.
	app["added"] = true
	if _, ok := settings.App["added"]; !ok {
		t.Error("App map should be shared by reference")
	}
	if len(settings.Plugins) != 1 {
		t.Errorf("plugins = %v, want the caller's map", settings.Plugins)
	}
}
