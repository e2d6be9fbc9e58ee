package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/server/middleware"
)

func jsonLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", buf)
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecoveryNoPanic(t *testing.T) {
	handler := middleware.Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecoveryPanic(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.Recovery(jsonLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/actions/increment", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Error.Code != errors.ErrCodeInternal {
		t.Errorf("expected %s, got %s", errors.ErrCodeInternal, body.Error.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestIDGeneratesID(t *testing.T) {
	var seen any
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.HeaderRequestID) == "" {
			t.Error("expected X-Request-Id in request headers")
		}
		seen = r.Context().Value(logger.RequestIDKey)
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	id := rr.Header().Get(middleware.HeaderRequestID)
	if id == "" {
		t.Fatal("expected X-Request-Id in response headers")
	}
	if seen != id {
		t.Errorf("expected context request id %q, got %v", id, seen)
	}
}

func TestRequestIDPreservesExisting(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "custom-id-123")
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(middleware.HeaderRequestID); got != "custom-id-123" {
		t.Fatalf("expected custom-id-123, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}
	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantOrigin  string
		wantStatus  int
		wantHandler bool
	}{
		{"allowed", http.MethodGet, "http://localhost:5173", false, "http://localhost:5173", http.StatusOK, true},
		{"disallowed", http.MethodGet, "https://evil.example", false, "", http.StatusOK, true},
		{"preflight", http.MethodOptions, "http://localhost:5173", true, "http://localhost:5173", http.StatusNoContent, false},
		{"plain options", http.MethodOptions, "http://localhost:5173", false, "http://localhost:5173", http.StatusOK, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/api/counter", http.NoBody)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			handler.ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Errorf("allow-origin = %q, want %q", got, tc.wantOrigin)
			}
			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			if called != tc.wantHandler {
				t.Errorf("handler called = %v, want %v", called, tc.wantHandler)
			}
			if tc.wantOrigin != "" && rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("expected credentials header")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLoggerLevels(t *testing.T) {
	tests := []struct {
		path      string
		status    int
		wantLevel string
	}{
		{"/api/counter", http.StatusOK, "debug"},
		{"/api/actions/reset", http.StatusForbidden, "warn"},
		{"/api/counter", http.StatusBadGateway, "error"},
		{"/health", http.StatusOK, ""},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		handler := middleware.RequestLogger(jsonLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))

		if tc.wantLevel == "" {
			if buf.Len() != 0 {
				t.Errorf("%s: expected no log line, got %q", tc.path, buf.String())
			}
			continue
		}
		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("%s: log line is not json: %v", tc.path, err)
		}
		if line["level"] != tc.wantLevel || line["status"] != float64(tc.status) || line["path"] != tc.path {
			t.Errorf("%s: unexpected log line %v", tc.path, line)
		}
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestBodySizeLimit(t *testing.T) {
	handler := middleware.BodySizeLimit("1KB")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRecorder()
	handler.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/api/ledger/import", strings.NewReader("[]")))
	if small.Code != http.StatusOK {
		t.Errorf("expected 200 for a small body, got %d", small.Code)
	}

	large := httptest.NewRecorder()
	handler.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/api/ledger/import", strings.NewReader(strings.Repeat("x", 2048))))
	if large.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for a large body, got %d", large.Code)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1KB", 1024},
		{"2mb", 2 << 20},
		{"1GB", 1 << 30},
		{"512", 512},
		{"10 MB", 10 << 20},
		{"", 7},
		{"lots", 7},
		{"-1MB", 7},
	}
	for _, tc := range tests {
		if got := middleware.ParseSize(tc.in, 7); got != tc.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-before")
				next.ServeHTTP(w, r)
				order = append(order, name+"-after")
			})
		}
	}

	handler := middleware.Chain(mark("m1"), mark("m2"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	expected := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Fatalf("expected %v, got %v", expected, order)
	}
}

// ---------------------------------------------------------------------------
// statusWriter
// ---------------------------------------------------------------------------

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestStatusWriterFlush(t *testing.T) {
	fr := &flushRecorder{ResponseWriter: httptest.NewRecorder()}

	handler := middleware.RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(fr, httptest.NewRequest(http.MethodGet, "/api/events", http.NoBody))

	if !fr.flushed {
		t.Error("expected Flush to be delegated to underlying writer")
	}
}
