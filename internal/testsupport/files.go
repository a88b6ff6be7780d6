package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"povcat/internal/catalogue"
)

// WriteJSON marshals v to path, creating parent directories.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadCatalogue decodes the catalogue file at path.
func ReadCatalogue(t testing.TB, path string) []catalogue.Entry {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read catalogue %s: %v", path, err)
	}
	entries, err := catalogue.Decode(data)
	if err != nil {
		t.Fatalf("decode catalogue %s: %v", path, err)
	}
	return entries
}
