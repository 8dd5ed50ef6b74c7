// Package auth supplies bearer tokens to the API client.
//
// The identity provider itself is external; this package only stores and
// hands out tokens. Providers are injected into the API client so tests can
// substitute their own.
package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoToken indicates no credentials are available. The caller should
// direct the user to `genta login`.
var ErrNoToken = errors.New("not signed in")

// TokenProvider supplies a bearer token for outgoing requests. Token is
// called per request; implementations may refresh under the hood, which is
// what makes the client's single 401 retry meaningful.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed token. Used in tests and
// by the GENTA_TOKEN env override.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// FileStore keeps the token in a mode-0600 file under the user's config
// directory. It re-reads the file on every Token call so a token written by
// a concurrent `genta login` is picked up without restarting.
type FileStore struct {
	path string

	mu sync.Mutex
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Token reads the stored token. Returns ErrNoToken if the file is missing
// or empty.
func (f *FileStore) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", err
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// Save writes the token, creating parent directories as needed.
func (f *FileStore) Save(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(strings.TrimSpace(token)+"\n"), 0o600)
}

// Clear removes the stored token. Missing file is not an error.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
