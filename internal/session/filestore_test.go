// ABOUTME: Tests for file-backed token persistence
// ABOUTME: Verifies round trip, permissions and tolerance of bad files

package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const (
	defaultWait = 2 * time.Second
	tick        = 5 * time.Millisecond
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	token, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token, got %q", token)
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	fs := NewFileStore(dir)
	ctx := context.Background()

	if err := fs.Save(ctx, "abc123"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	token, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if token != "abc123" {
		t.Errorf("expected abc123, got %q", token)
	}

	info, err := os.Stat(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}
}

func TestFileStore_InvalidJSONMeansNoToken(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	token, err := NewFileStore(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		t.Errorf("expected empty token, got %q", token)
	}
}

func TestFileStore_ClearIsIdempotent(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := fs.Save(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("first Clear failed: %v", err)
	}
	if err := fs.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
	if token, _ := fs.Load(ctx); token != "" {
		t.Errorf("expected empty token after Clear, got %q", token)
	}
}
