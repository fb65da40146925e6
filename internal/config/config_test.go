package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ristryder/pgssup/common"
	"github.com/ristryder/pgssup/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pgssup.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if !strings.HasSuffix(resolved, filepath.Join(".config", "pgssup", "config.toml")) {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.VideoSize() != (common.Size{Height: 1080, Width: 1920}) {
		t.Fatalf("unexpected video size %v", cfg.VideoSize())
	}
	if cfg.Encoding.Workers < 1 {
		t.Fatalf("expected at least one worker, got %d", cfg.Encoding.Workers)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if position, err := cfg.DefaultPosition(); err != nil || position != (common.Position{}) {
		t.Fatalf("unexpected default position %v (%v)", position, err)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := writeConfig(t, `
[video]
width = 1280
height = 720

[encoding]
default_offset = "0,620"
workers = 3

[extract]
color_model = "BT709"

[logging]
format = "JSON"
level = "debug"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q (exists %v)", resolved, exists)
	}
	if cfg.VideoSize() != (common.Size{Height: 720, Width: 1280}) {
		t.Fatalf("unexpected video size %v", cfg.VideoSize())
	}
	if cfg.Encoding.Workers != 3 {
		t.Fatalf("unexpected workers %d", cfg.Encoding.Workers)
	}
	if position, _ := cfg.DefaultPosition(); position != (common.Position{X: 0, Y: 620}) {
		t.Fatalf("unexpected default position %v", position)
	}
	if cfg.Extract.ColorModel != "bt709" || cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("values were not normalized: %+v %+v", cfg.Extract, cfg.Logging)
	}
}

func TestLoadFillsOmittedValues(t *testing.T) {
	cfg, _, _, err := config.Load(writeConfig(t, "[encoding]\nworkers = 0\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Encoding.Workers != config.Default().Encoding.Workers {
		t.Fatalf("expected default workers, got %d", cfg.Encoding.Workers)
	}
	if cfg.Encoding.DefaultOffset != "0,0" {
		t.Fatalf("unexpected default offset %q", cfg.Encoding.DefaultOffset)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"width":       "[video]\nwidth = 70000\n",
		"height":      "[video]\nheight = -1\n",
		"offset":      "[encoding]\ndefault_offset = \"left\"\n",
		"workers":     "[encoding]\nworkers = 1000\n",
		"color model": "[extract]\ncolor_model = \"sepia\"\n",
		"log format":  "[logging]\nformat = \"xml\"\n",
		"log level":   "[logging]\nlevel = \"loud\"\n",
		"unknown key": "[video]\ndepth = 8\n",
		"broken toml": "[video\n",
	}

	for name, content := range cases {
		if _, _, _, err := config.Load(writeConfig(t, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
