package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorRecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(nil, registry)

	c.ServerUp(true)
	c.ConnectionOpened()
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.ObserveRequest(200, 5*time.Millisecond)
	c.ObserveRequest(404, time.Millisecond)
	c.RejectionObserved()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}

	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}

	for _, name := range []string{
		"vesper_server_up",
		"vesper_server_connections_active",
		"vesper_server_requests_total",
		"vesper_server_request_duration_seconds",
		"vesper_server_admission_rejections_total",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector(nil, nil)
	c.ServerUp(true)
	c.RejectionObserved()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("metrics endpoint returned %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "vesper_server_up 1") {
		t.Errorf("metrics output missing up gauge:\n%s", body)
	}
	if !strings.Contains(body, "vesper_server_admission_rejections_total 1") {
		t.Errorf("metrics output missing rejection counter:\n%s", body)
	}
}

func TestCollectorCustomNamespace(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewCollector(&Config{Namespace: "custom", Subsystem: "core"}, registry)

	// Registering the default names again must not collide.
	NewCollector(nil, prometheus.NewRegistry())
}
