package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  file-secret \n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	tests := []struct {
		name      string
		src       Source
		expect    string
		errSubstr string
	}{
		{name: "file takes precedence", src: Source{Name: "google api key", Value: "inline", File: keyFile}, expect: "file-secret"},
		{name: "inline value", src: Source{Value: " inline "}, expect: "inline"},
		{name: "missing", src: Source{Name: "google api key"}, errSubstr: "google api key is not configured"},
		{name: "empty file", src: Source{Name: "gemini api key", File: emptyFile}, errSubstr: "is empty"},
		{name: "unreadable file", src: Source{File: filepath.Join(dir, "nope")}, errSubstr: "reading secret from file"},
		{name: "env before inline", src: Source{Env: "PROFILE_SCOUT_TEST_SECRET", Value: "inline"}, expect: "from-env"},
		{name: "env unset hint", src: Source{Name: "cse id", Env: "PROFILE_SCOUT_TEST_UNSET"}, errSubstr: "set PROFILE_SCOUT_TEST_UNSET"},
	}

	t.Setenv("PROFILE_SCOUT_TEST_SECRET", " from-env ")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.errSubstr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
					t.Fatalf("expected error containing %q, got %v", tt.errSubstr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
