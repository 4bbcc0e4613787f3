package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Debug {
		t.Error("expected debug to be false by default")
	}
	if cfg.Overwrite {
		t.Error("expected overwrite to be false by default")
	}
	if !cfg.Export.Models || !cfg.Export.Textures || !cfg.Export.Sidecars {
		t.Errorf("expected every export kind enabled, got %+v", cfg.Export)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
debug: true
overwrite: true
encoding: "Windows 1252"
export:
  models: true
  textures: false
  sidecars: false
logging:
  level: debug
  log_file: xnb.log
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}
	defer SetEncoding(Default().Encoding)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", configPath, err)
	}

	if !cfg.Debug || !cfg.Overwrite {
		t.Errorf("expected debug and overwrite set, got %+v", cfg)
	}
	if cfg.Export.Textures || cfg.Export.Sidecars || !cfg.Export.Models {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "xnb.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if GetEncoding().String() != "Windows 1252" {
		t.Errorf("GetEncoding()=%q; expected %q", GetEncoding().String(), "Windows 1252")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Encoding != Default().Encoding {
		t.Errorf("Encoding=%q; expected %q", cfg.Encoding, Default().Encoding)
	}
}

func TestSetEncoding(t *testing.T) {
	defer SetEncoding(Default().Encoding)

	for _, name := range []string{"Windows 1251", "windows 1251", "WINDOWS 1251"} {
		if err := SetEncoding(name); err != nil {
			t.Errorf("SetEncoding(%q)=%v", name, err)
		} else if GetEncoding() != charmap.Windows1251 {
			t.Errorf("SetEncoding(%q) selected %v; expected %v", name, GetEncoding(), charmap.Windows1251)
		}
	}
}

func TestListEncodings(t *testing.T) {
	names := ListEncodings()
	if !sort.StringsAreSorted(names) {
		t.Errorf("ListEncodings()=%v; expected sorted names", names)
	}
	for _, name := range names {
		if err := SetEncoding(name); err != nil {
			t.Errorf("SetEncoding(%q)=%v for a listed name", name, err)
		}
	}
	SetEncoding(Default().Encoding)
	if GetEncoding() != charmap.ISO8859_1 {
		t.Errorf("default encoding=%v; expected %v", GetEncoding(), charmap.ISO8859_1)
	}
}

func TestSetEncodingUnknown(t *testing.T) {
	if err := SetEncoding("KOI-9000"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
