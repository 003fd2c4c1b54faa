// ABOUTME: Persists the session token in the XDG config directory
// ABOUTME: A missing or unreadable file means no token

package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// FileStore keeps the token in <configDir>/session.json
type FileStore struct {
	configDir string
}

type fileData struct {
	Token string `json:"token"`
}

// NewFileStore creates a FileStore rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// path returns the path to the session file
func (fs *FileStore) path() string {
	return filepath.Join(fs.configDir, "session.json")
}

// Load reads the persisted token
func (fs *FileStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(fs.path())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var d fileData
	if err := json.Unmarshal(data, &d); err != nil {
		// Invalid JSON, treat as logged out
		return "", nil
	}
	return d.Token, nil
}

// Save writes the token to disk, readable only by the owner
func (fs *FileStore) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fileData{Token: token}, "", "  ")
	if err != nil {
		return err
	}

	tmp := fs.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path())
}

// Clear removes the persisted token
func (fs *FileStore) Clear(_ context.Context) error {
	err := os.Remove(fs.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
