package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a single 0600 file.
type FileTokenStore struct {
	Path string
}

// Load returns "" without error when no token has been saved.
func (f FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes the token file. A missing file is not an error.
func (f FileTokenStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// MemoryTokenStore holds the token for this run only. Used when the token comes
// from the environment.
type MemoryTokenStore struct {
	Token string
}

func (m *MemoryTokenStore) Load() (string, error) { return m.Token, nil }

func (m *MemoryTokenStore) Save(token string) error {
	m.Token = token
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.Token = ""
	return nil
}
