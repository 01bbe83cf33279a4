package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// TokenStore supplies the bearer token for outgoing requests.
// An empty token means the request is sent without Authorization.
type TokenStore interface {
	Token() (string, error)
}

// NoToken never authenticates
type NoToken struct{}

func (NoToken) Token() (string, error) { return "", nil }

// StaticToken always sends the same token
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// FileTokenStore keeps the token in a file that is read on every request
type FileTokenStore struct {
	path string
}

// NewFileTokenStore stores the token at path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath is ~/.config/kalaasutra/token
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kalaasutra", "token"), nil
}

// Path returns the token file location
func (s *FileTokenStore) Path() string {
	return s.path
}

// Token returns the stored token, or "" when none has been saved
func (s *FileTokenStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save replaces the stored token atomically
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := renameio.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Clear removes the stored token
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
