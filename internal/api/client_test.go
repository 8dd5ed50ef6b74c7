package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gentaprep/genta-tui/internal/auth"
)

func TestDo_InjectsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, auth.StaticToken("tok-1"))
	status, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/v1/ping"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 200 {
		t.Errorf("status = %d, want 200", status)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
}

func TestDo_RetriesOnceOn401(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, auth.StaticToken("tok"))
	status, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 200 {
		t.Errorf("status = %d, want 200 after retry", status)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestDo_Persisted401InvokesHandler(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	redirected := false
	c := New(srv.URL, auth.StaticToken("tok"), WithUnauthorizedHandler(func() { redirected = true }))
	status, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401 Error", err)
	}
	if status != 401 {
		t.Errorf("status = %d, want 401", status)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want exactly 2 (one retry)", calls.Load())
	}
	if !redirected {
		t.Error("unauthorized handler not invoked")
	}
}

func TestDo_NoRedirectSuppressesHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	redirected := false
	c := New(srv.URL, auth.StaticToken("tok"), WithUnauthorizedHandler(func() { redirected = true }))
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", NoRedirect: true})
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401 Error", err)
	}
	if redirected {
		t.Error("unauthorized handler must not run when NoRedirect is set")
	}
}

func TestDo_DecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"VALIDATION_ERROR","message":"section is invalid","status":400,"errors":[{"field":"section","error":"unknown section"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, auth.StaticToken("tok"))
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x", Body: map[string]string{"section": "XX"}})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Status != 400 {
		t.Errorf("envelope = %+v", apiErr)
	}
	fe := apiErr.FieldErrors()
	if fe["section"] != "unknown section" {
		t.Errorf("field errors = %v", fe)
	}
}

func TestDo_SynthesizesEnvelopeForOpaqueBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := New(srv.URL, auth.StaticToken("tok"))
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if StatusOf(err) != 502 {
		t.Errorf("StatusOf = %d, want 502", StatusOf(err))
	}
}

func TestDo_ValidatesAgainstSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Missing questions_attempted / questions_correct.
		w.Write([]byte(`{"id":"s-1","started_at":"2026-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, auth.StaticToken("tok"))
	var out map[string]any
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/api/v1/sessions/s-1",
		Out:    &out,
		Schema: SchemaSession,
	})
	if err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestDo_TransportErrorHasNoStatus(t *testing.T) {
	c := New("http://127.0.0.1:1", auth.StaticToken("tok"))
	status, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if status != 0 || StatusOf(err) != 0 {
		t.Errorf("status = %d, StatusOf = %d, want 0", status, StatusOf(err))
	}
}

func TestUserMessage_RateLimited(t *testing.T) {
	err := &Error{
		Code: "RATE_LIMITED", Message: "slow down", Status: 429,
		Action: &Action{Type: "retry", Value: "30"},
	}
	msg := UserMessage(err)
	if msg != "Too many requests. Please try again in 30 seconds." {
		t.Errorf("msg = %q", msg)
	}
}

func TestUserMessage_ServerError(t *testing.T) {
	err := &Error{Code: "INTERNAL", Message: "boom", Status: 500}
	if UserMessage(err) != "Something went wrong. Please try again later." {
		t.Errorf("msg = %q", UserMessage(err))
	}
}

func TestUserMessage_TransportError(t *testing.T) {
	if UserMessage(errors.New("dial tcp: refused")) != "Network error. Check your connection and try again." {
		t.Errorf("msg = %q", UserMessage(errors.New("x")))
	}
}
