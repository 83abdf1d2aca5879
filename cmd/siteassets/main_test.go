package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sydlexius/siteassets/internal/assets"
	"github.com/sydlexius/siteassets/internal/seo"
)

func writeTestConfig(t *testing.T) (cfgPath, icons, images string) {
	t.Helper()
	root := t.TempDir()
	icons = filepath.Join(root, "icons")
	images = filepath.Join(root, "images")
	cfgPath = filepath.Join(root, "siteassets.yaml")
	body := "output:\n" +
		"  icons_dir: " + icons + "\n" +
		"  images_dir: " + images + "\n" +
		"fonts:\n" +
		"  text: [/nonexistent/regular.ttf]\n" +
		"  bold: [/nonexistent/bold.ttf]\n" +
		"  emoji: [/nonexistent/emoji.ttf]\n" +
		"logging:\n" +
		"  format: json\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, icons, images
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "siteassets ") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"bogus"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("err = %v, want unknown command", err)
	}
	if !strings.Contains(stderr.String(), "usage:") {
		t.Error("expected usage on stderr")
	}
}

func TestRun_NoCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want errUsage", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("brand:\n  gradient_start: purple-ish\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	err := run([]string{"-config", path, "favicons"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("err = %v, want config error", err)
	}
}

func TestRun_All(t *testing.T) {
	cfgPath, icons, images := writeTestConfig(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-config", cfgPath, "all"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	for _, name := range []string{
		"favicon-16x16.png", "favicon-32x32.png", "apple-touch-icon.png",
		"android-chrome-192x192.png", "android-chrome-512x512.png", "favicon.ico",
		"icon-72x72.png", "icon-384x384.png", "mstile-150x150.png", "favicon.svg",
	} {
		if _, err := os.Stat(filepath.Join(icons, name)); err != nil {
			t.Errorf("icons/%s: %v", name, err)
		}
	}
	for _, name := range []string{
		"og-image.png", "twitter-card.png", "logo.png", "logo-mark.png", "social.html",
	} {
		if _, err := os.Stat(filepath.Join(images, name)); err != nil {
			t.Errorf("images/%s: %v", name, err)
		}
	}

	logs := stdout.String()
	if !strings.Contains(logs, `"msg":"complete"`) {
		t.Errorf("expected completion summary in logs, got:\n%s", logs)
	}
	if !strings.Contains(logs, `"run_id"`) {
		t.Error("expected run_id on log lines")
	}
}

func TestRun_MissingIconsWithoutSources(t *testing.T) {
	cfgPath, icons, _ := writeTestConfig(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-config", cfgPath, "missing-icons"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(icons, "icon-72x72.png")); !os.IsNotExist(err) {
		t.Errorf("icon-72x72.png should not exist without its source, err = %v", err)
	}
	if !strings.Contains(stdout.String(), "source file not found") {
		t.Error("expected a warning for each missing source")
	}
}

func TestRun_SeoWritesPlaceholders(t *testing.T) {
	cfgPath, icons, images := writeTestConfig(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-config", cfgPath, "seo"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, a := range seo.Placeholders() {
		data, err := os.ReadFile(filepath.Join(images, a.Name))
		if err != nil {
			t.Fatalf("images/%s: %v", a.Name, err)
		}
		blob, err := fs.ReadFile(seo.Resources(), a.Source)
		if err != nil {
			t.Fatal(err)
		}
		want, err := assets.Decode(blob)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, want) {
			t.Errorf("images/%s is not the embedded placeholder", a.Name)
		}
	}
	if _, err := os.Stat(filepath.Join(icons, "favicon.svg")); err != nil {
		t.Errorf("icons/favicon.svg: %v", err)
	}
}

func TestRun_AllKeepsRenderedCards(t *testing.T) {
	cfgPath, _, images := writeTestConfig(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-config", cfgPath, "all"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(images, "og-image.png"))
	if err != nil {
		t.Fatal(err)
	}
	blob, err := fs.ReadFile(seo.Resources(), "og-image.png.b64")
	if err != nil {
		t.Fatal(err)
	}
	placeholder, err := assets.Decode(blob)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(data, placeholder) {
		t.Error("og-image.png should be the rendered card, not the placeholder")
	}
}

func TestRun_SeoSummaryCountsUnchanged(t *testing.T) {
	cfgPath, _, _ := writeTestConfig(t)

	var first, stderr bytes.Buffer
	if err := run([]string{"-config", cfgPath, "seo"}, &first, &stderr); err != nil {
		t.Fatalf("first run: %v", err)
	}
	var second bytes.Buffer
	if err := run([]string{"-config", cfgPath, "seo"}, &second, &stderr); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(second.String(), `"created":0`) {
		t.Errorf("second run should create nothing, logs:\n%s", second.String())
	}
}
