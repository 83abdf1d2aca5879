package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "siteassets.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Brand.GradientStart != "#667eea" || cfg.Brand.GradientEnd != "#764ba2" {
		t.Errorf("unexpected gradient %s -> %s", cfg.Brand.GradientStart, cfg.Brand.GradientEnd)
	}
	if len(cfg.MissingIcons) != 7 {
		t.Errorf("missing icons = %d, want 7", len(cfg.MissingIcons))
	}
	if len(cfg.Cards) != 3 {
		t.Errorf("cards = %d, want 3", len(cfg.Cards))
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
output:
  icons_dir: out/icons
  images_dir: out/images
missing_icons:
  - target: icon-72x72.png
    source: apple-touch-icon.png
watch:
  debounce: 250ms
  min_interval: 5s
logging:
  level: debug
  format: text
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.IconsDir != "out/icons" {
		t.Errorf("icons_dir = %q", cfg.Output.IconsDir)
	}
	if len(cfg.MissingIcons) != 1 || cfg.MissingIcons[0].Target != "icon-72x72.png" {
		t.Errorf("missing_icons = %+v", cfg.MissingIcons)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.MinInterval != 5*time.Second {
		t.Errorf("min_interval = %v", cfg.Watch.MinInterval)
	}
	// Untouched sections keep their defaults.
	if len(cfg.Cards) != 3 {
		t.Errorf("cards = %d, want defaults", len(cfg.Cards))
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := writeConfig(t, "output:\n  images_dir: from-file\n")
	t.Setenv("SA_IMAGES_DIR", "from-env")
	t.Setenv("SA_FONT_EMOJI", "/a.ttf"+string(os.PathListSeparator)+"/b.ttf")
	t.Setenv("SA_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.ImagesDir != "from-env" {
		t.Errorf("images_dir = %q, want from-env", cfg.Output.ImagesDir)
	}
	if len(cfg.Fonts.Emoji) != 2 || cfg.Fonts.Emoji[1] != "/b.ttf" {
		t.Errorf("emoji fonts = %v", cfg.Fonts.Emoji)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoad_LoggingRotation(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.FileMaxSizeMB != 10 || cfg.Logging.FileMaxFiles != 3 || cfg.Logging.FileMaxAgeDays != 30 {
		t.Errorf("default rotation = %+v", cfg.Logging)
	}

	cfg, err = Load(writeConfig(t, `
logging:
  file_path: /tmp/siteassets.log
  file_max_size_mb: 5
  file_max_files: 2
  file_max_age_days: 7
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.FileMaxSizeMB != 5 || cfg.Logging.FileMaxFiles != 2 || cfg.Logging.FileMaxAgeDays != 7 {
		t.Errorf("rotation = %+v", cfg.Logging)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad color", "brand:\n  gradient_start: purple\n", "invalid color"},
		{"empty dir", "output:\n  icons_dir: \"\"\n", "icons_dir"},
		{"bad level", "logging:\n  level: loud\n", "log level"},
		{"bad format", "logging:\n  format: xml\n", "log format"},
		{"negative rotation", "logging:\n  file_max_files: -1\n", "must not be negative"},
		{"dup target", "missing_icons:\n  - {target: a.png, source: b.png}\n  - {target: a.png, source: c.png}\n", "duplicate target"},
		{"band outside", "cards:\n  - {name: x, width: 10, height: 10, band: {top: 5, bottom: 20, alpha: 1}}\n", "band"},
		{"zero size", "cards:\n  - {name: x, width: 0, height: 10}\n", "invalid size"},
		{"path in name", "cards:\n  - {name: ../x, width: 1, height: 1}\n", "path separators"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("SA_CONFIG_PATH", "")
	if got := ResolvePath(""); got != DefaultPath {
		t.Errorf("ResolvePath() = %q, want %q", got, DefaultPath)
	}
	t.Setenv("SA_CONFIG_PATH", "/etc/siteassets.yaml")
	if got := ResolvePath(""); got != "/etc/siteassets.yaml" {
		t.Errorf("env path = %q", got)
	}
	if got := ResolvePath("flag.yaml"); got != "flag.yaml" {
		t.Errorf("flag path = %q", got)
	}
}
