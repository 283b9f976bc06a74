package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLabels_MissingFileUsesDefaults(t *testing.T) {
	labels, err := LoadLabels(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}

	defaults := DefaultLabels()
	if len(labels.Technologies) != len(defaults.Technologies) {
		t.Errorf("Expected %d default technologies, got %d", len(defaults.Technologies), len(labels.Technologies))
	}
	if labels.MaxTechnologies != defaults.MaxTechnologies {
		t.Errorf("Expected MaxTechnologies %d, got %d", defaults.MaxTechnologies, labels.MaxTechnologies)
	}
}

func TestLoadLabels_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	content := "technologies:\n  - Go\n  - Rust\ntechnologyThreshold: 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write labels file: %v", err)
	}

	labels, err := LoadLabels(path)
	if err != nil {
		t.Fatalf("Failed to load labels: %v", err)
	}

	if len(labels.Technologies) != 2 || labels.Technologies[1] != "Rust" {
		t.Errorf("Expected technologies [Go Rust], got %v", labels.Technologies)
	}
	if labels.TechnologyThreshold != 0.5 {
		t.Errorf("Expected threshold 0.5, got %v", labels.TechnologyThreshold)
	}
	if len(labels.Complexity) != len(DefaultLabels().Complexity) {
		t.Errorf("Expected default complexity labels to be kept, got %v", labels.Complexity)
	}
}

func TestLoadLabels_InvalidThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	if err := os.WriteFile(path, []byte("technologyThreshold: 1.5\n"), 0600); err != nil {
		t.Fatalf("Failed to write labels file: %v", err)
	}

	if _, err := LoadLabels(path); err == nil {
		t.Fatal("Expected error for out-of-range threshold")
	}
}

func TestLabelStore_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	if err := os.WriteFile(path, []byte("complexity: [easy, hard]\n"), 0600); err != nil {
		t.Fatalf("Failed to write labels file: %v", err)
	}

	store, err := NewLabelStore(path)
	if err != nil {
		t.Fatalf("Failed to create label store: %v", err)
	}
	if got := store.Get().Complexity; len(got) != 2 {
		t.Fatalf("Expected 2 complexity labels, got %v", got)
	}

	if err := os.WriteFile(path, []byte("complexity: [\n"), 0600); err != nil {
		t.Fatalf("Failed to overwrite labels file: %v", err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("Expected reload error for malformed YAML")
	}
	if got := store.Get().Complexity; len(got) != 2 {
		t.Errorf("Expected previous labels to stay active, got %v", got)
	}

	if err := os.WriteFile(path, []byte("complexity: [low, medium, high]\n"), 0600); err != nil {
		t.Fatalf("Failed to overwrite labels file: %v", err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Unexpected reload error: %v", err)
	}
	if got := store.Get().Complexity; len(got) != 3 {
		t.Errorf("Expected 3 complexity labels after reload, got %v", got)
	}
}
