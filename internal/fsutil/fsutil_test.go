// Copyright © 2026 The flextools authors.

package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"0x2A", 42, false},
		{"0X2a", 42, false},
		{"  16  ", 16, false},
		{"not-a-number", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAddress(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAddress(%q) = nil error, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAddress(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAddress(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWriteOutputRefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("existing"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := WriteOutput(path, []byte("new"), false); err == nil {
		t.Error("WriteOutput without force should fail on an existing file")
	}
	if err := WriteOutput(path, []byte("new"), true); err != nil {
		t.Errorf("WriteOutput with force should succeed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("file contents = %q, want %q", got, "new")
	}
}

func TestWriteOutputCreatesNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fresh.txt")
	if err := WriteOutput(path, []byte("content"), false); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "content" {
		t.Errorf("file contents = %q, want %q", got, "content")
	}
}
