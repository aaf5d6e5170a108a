package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfine(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.log"), []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.log"), filepath.Join(root, "link.log")); err != nil {
		t.Skipf("Symlinks not supported: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative inside", "nginx/access.log", false},
		{"absolute inside", filepath.Join(root, "access.log"), false},
		{"dot dot escape", "../secret.log", true},
		{"absolute outside", filepath.Join(outside, "secret.log"), true},
		{"symlink escape", "link.log", true},
		{"sibling prefix", root + "-other/access.log", true},
	}
	for _, tt := range tests {
		_, err := confine(root, tt.path)
		if tt.wantErr && !errors.Is(err, ErrOutsideLogRoot) {
			t.Errorf("%s: expected ErrOutsideLogRoot, got %v", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: expected no error, got %v", tt.name, err)
		}
	}

	got, _ := confine(root, "nginx/access.log")
	if want := filepath.Join(root, "nginx", "access.log"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
