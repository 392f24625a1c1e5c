package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorderCapturesWrittenStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.WriteHeader(http.StatusTeapot)
	if rec.status != http.StatusTeapot {
		t.Fatalf("expected recorded status 418, got %d", rec.status)
	}
}

func TestLoggingPassesThrough(t *testing.T) {
	handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	out := httptest.NewRecorder()
	handler.ServeHTTP(out, req)

	if out.Code != http.StatusCreated {
		t.Fatalf("expected 201 from downstream handler, got %d", out.Code)
	}
}

func TestLoggingDefaultsImplicitStatus(t *testing.T) {
	handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Write without an explicit WriteHeader.
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	out := httptest.NewRecorder()
	handler.ServeHTTP(out, req)

	if out.Code != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", out.Code)
	}
}
