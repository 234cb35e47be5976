package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()

	writeSourceFile(t, dir, "news.yml", `url: https://www.gov.uk/search/news-and-communications.atom
settings:
  enabled: true
  extract_pages: true
  max_entries: 50
`)
	writeSourceFile(t, dir, "consultations.yml", `url: https://www.gov.uk/search/policy-papers-and-consultations.atom
settings:
  enabled: false
`)

	loaded, err := NewLoader(dir).LoadAll()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("Expected 2 sources, got: %d", len(loaded))
	}

	// Sorted by file name
	if loaded[0].Name != "consultations" {
		t.Errorf("Expected 'consultations' first, got: %s", loaded[0].Name)
	}
	if loaded[1].Name != "news" {
		t.Errorf("Expected 'news' second, got: %s", loaded[1].Name)
	}

	news := loaded[1]
	if !news.Settings.Enabled {
		t.Error("Expected news source to be enabled")
	}
	if !news.Settings.ExtractPages {
		t.Error("Expected extract_pages to be set")
	}
	if news.Settings.MaxEntries != 50 {
		t.Errorf("Expected max entries 50, got: %d", news.Settings.MaxEntries)
	}
	if news.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got: %d", news.Settings.Timeout)
	}
}

func TestLoadAllMissingDirectory(t *testing.T) {
	loaded, err := NewLoader("/nonexistent/sources").LoadAll()
	if err != nil {
		t.Fatalf("Expected no error for missing directory, got: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected no sources, got: %d", len(loaded))
	}
}

func TestLoadAllEmptyDir(t *testing.T) {
	loaded, err := NewLoader("").LoadAll()
	if err != nil {
		t.Fatalf("Expected no error for unset directory, got: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected no sources, got: %d", len(loaded))
	}
}

func TestLoadAllMissingURL(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "broken.yml", `settings:
  enabled: true
`)

	_, err := NewLoader(dir).LoadAll()
	if err == nil {
		t.Error("Expected error for source without URL")
	}
}

func TestLoadAllInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "broken.yml", "url: [unclosed")

	_, err := NewLoader(dir).LoadAll()
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
