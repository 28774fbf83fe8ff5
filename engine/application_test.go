package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadApplicationConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	defaults := DefaultApplicationConfig()
	if config.Name != defaults.Name || config.StartWidth != defaults.StartWidth {
		t.Errorf("expected default config, got %+v", config)
	}
}

func TestLoadApplicationConfigOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	content := []byte("name = \"Test App\"\nstart_width = 800\nstart_height = 600\nlog_level = \"debug\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadApplicationConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Name != "Test App" {
		t.Errorf("expected overridden name, got %q", config.Name)
	}
	if config.StartWidth != 800 || config.StartHeight != 600 {
		t.Errorf("expected 800x600, got %dx%d", config.StartWidth, config.StartHeight)
	}
	// Fields the file omits keep their defaults.
	if config.AssetRoot != "assets" {
		t.Errorf("expected default asset root, got %q", config.AssetRoot)
	}
}

func TestLoadApplicationConfigRejectsZeroWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	if err := os.WriteFile(path, []byte("start_width = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadApplicationConfig(path); err == nil {
		t.Error("expected error for zero-area window config")
	}
}

func TestLoadApplicationConfigRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	if err := os.WriteFile(path, []byte("name = [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadApplicationConfig(path); err == nil {
		t.Error("expected parse error for malformed config")
	}
}
