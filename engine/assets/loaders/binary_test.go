package loaders

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSPIRVLittleEndianWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vert.spv")

	// SPIR-V magic number followed by one arbitrary word.
	raw := []byte{
		0x03, 0x02, 0x23, 0x07,
		0x78, 0x56, 0x34, 0x12,
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	words, err := LoadSPIRV(path)
	if err != nil {
		t.Fatalf("LoadSPIRV failed: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0] != 0x07230203 {
		t.Errorf("expected SPIR-V magic 0x07230203, got 0x%08x", words[0])
	}
	if words[1] != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08x", words[1])
	}
}

func TestLoadSPIRVRejectsRaggedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.spv")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSPIRV(path); err == nil {
		t.Error("expected an error for a non-word-aligned file")
	}
}

func TestLoadSPIRVRejectsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.spv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSPIRV(path); err == nil {
		t.Error("expected an error for an empty file")
	}
}
