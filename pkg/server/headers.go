package server

import (
	"net/http"
	"strconv"

	"vesper-hq/vesper/pkg/config"
)

// decorate applies the precomputed CORS and security header values
// around the request pipeline and answers CORS preflight requests
// directly. All header values were derived at construction; this layer
// only assigns strings.
func (s *Server) decorate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.applySecurity(w.Header())

		if cors := s.settings.CORS; cors != nil {
			if s.applyCORS(w.Header(), req, cors) {
				// Preflight: answer without invoking the pipeline.
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, req)
	})
}

// applyCORS assigns the CORS response headers and reports whether the
// request is a preflight that has been fully answered.
func (s *Server) applyCORS(h http.Header, req *http.Request, cors *config.CORS) bool {
	origin := req.Header.Get("Origin")

	switch {
	case cors.Mode == config.OriginAny:
		h.Set("Access-Control-Allow-Origin", "*")
	case cors.MatchOrigin && origin != "" && cors.MatchesOrigin(origin):
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	case cors.QualifiedString != "":
		h.Set("Access-Control-Allow-Origin", cors.QualifiedString)
	}

	if cors.Credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if cors.ExposedHeaderString != "" {
		h.Set("Access-Control-Expose-Headers", cors.ExposedHeaderString)
	}

	if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
		h.Set("Access-Control-Allow-Methods", cors.MethodString)
		h.Set("Access-Control-Allow-Headers", cors.HeaderString)
		h.Set("Access-Control-Max-Age", strconv.Itoa(cors.MaxAge))
		return true
	}

	return false
}

// applySecurity assigns the precomputed security header values. HSTS
// is only meaningful over TLS and is suppressed on plain listeners.
func (s *Server) applySecurity(h http.Header) {
	sec := s.settings.Security
	if sec == nil {
		return
	}
	if sec.HSTS != "" && s.settings.TLS != nil {
		h.Set("Strict-Transport-Security", sec.HSTS)
	}
	if sec.XFrame != "" {
		h.Set("X-Frame-Options", sec.XFrame)
	}
}

// responseWriter records the response status and enforces the
// cache-control status allow list: a response whose status is not in
// the configured set must not be cached.
type responseWriter struct {
	http.ResponseWriter
	settings    *config.Settings
	status      int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter, settings *config.Settings) *responseWriter {
	return &responseWriter{ResponseWriter: w, settings: settings}
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status

	if !w.settings.CacheableStatus(status) && w.Header().Get("Cache-Control") == "" {
		w.Header().Set("Cache-Control", "no-cache")
	}

	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(p)
}

// Status returns the written status code, defaulting to 200 when the
// handler never called WriteHeader.
func (w *responseWriter) Status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.status
}

// Flush forwards to the underlying writer when it supports streaming.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
