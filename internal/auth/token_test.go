package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "abc" {
		t.Errorf("token = %q, want abc", tok)
	}
}

func TestStaticToken_Empty(t *testing.T) {
	_, err := StaticToken("").Token(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "token")
	fs := NewFileStore(path)

	if _, err := fs.Token(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("missing file: err = %v, want ErrNoToken", err)
	}

	if err := fs.Save("  tok-123  "); err != nil {
		t.Fatalf("save: %v", err)
	}

	tok, err := fs.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok != "tok-123" {
		t.Errorf("token = %q, want tok-123 (trimmed)", tok)
	}

	if err := fs.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := fs.Token(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("after clear: err = %v, want ErrNoToken", err)
	}
	// Clearing again is fine.
	if err := fs.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}
