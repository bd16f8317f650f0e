package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/williampepple1/site-snapshot/pkg/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
	if len(cfg.Site.Pages) != len(DefaultPages) {
		t.Errorf("default pages = %d, want %d", len(cfg.Site.Pages), len(DefaultPages))
	}
	for _, c := range cfg.Fetch.Categories {
		if c == models.CategoryOther {
			t.Error("other bucket should not be fetched by default")
		}
	}
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.Site.Pages[0].Path = "/changed"
	a.Fetch.Categories[0] = models.CategoryOther

	b := Default()
	if b.Site.Pages[0].Path != "/" {
		t.Errorf("mutating one config leaked into DefaultPages: %q", b.Site.Pages[0].Path)
	}
	if b.Fetch.Categories[0] != models.CategoryCSS {
		t.Errorf("mutating one config leaked into DefaultFetchCategories: %q", b.Fetch.Categories[0])
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  base_url: https://example.com
  pages:
    - path: /
      filename: home.html
    - path: /account
      filename: account.html
      requires_auth: true
browser:
  nav_timeout: 45s
  stealth: true
fetch:
  delay: 250ms
  categories: [css, other]
output:
  root: out
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.BaseURL != "https://example.com" {
		t.Errorf("BaseURL = %q", cfg.Site.BaseURL)
	}
	if len(cfg.Site.Pages) != 2 || !cfg.Site.Pages[1].RequiresAuth {
		t.Errorf("Pages = %+v", cfg.Site.Pages)
	}
	if cfg.Browser.NavTimeout != 45*time.Second {
		t.Errorf("NavTimeout = %v, want 45s", cfg.Browser.NavTimeout)
	}
	if !cfg.Browser.Stealth {
		t.Error("Stealth should be enabled")
	}
	if cfg.Fetch.Delay != 250*time.Millisecond {
		t.Errorf("Delay = %v, want 250ms", cfg.Fetch.Delay)
	}
	if len(cfg.Fetch.Categories) != 2 || cfg.Fetch.Categories[1] != models.CategoryOther {
		t.Errorf("Categories = %v", cfg.Fetch.Categories)
	}

	// untouched values keep their defaults
	if cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", cfg.Fetch.Timeout)
	}
	if cfg.Browser.ScrollStep != 500 {
		t.Errorf("ScrollStep = %d, want default 500", cfg.Browser.ScrollStep)
	}
	if cfg.Fetch.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want default", cfg.Fetch.UserAgent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() on a missing file should fail")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "site: [not: a map")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() on malformed YAML should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"relative base url", func(c *AppConfig) { c.Site.BaseURL = "/just/a/path" }},
		{"no pages", func(c *AppConfig) { c.Site.Pages = nil }},
		{"page without filename", func(c *AppConfig) { c.Site.Pages[0].Filename = "" }},
		{"filename with directory", func(c *AppConfig) { c.Site.Pages[0].Filename = "../index.html" }},
		{"duplicate filename", func(c *AppConfig) { c.Site.Pages[1].Filename = c.Site.Pages[0].Filename }},
		{"unknown category", func(c *AppConfig) { c.Fetch.Categories = []models.Category{"videos"} }},
		{"empty output root", func(c *AppConfig) { c.Output.Root = "" }},
		{"screenshot collision", func(c *AppConfig) { c.Site.Pages[1].Filename = "index.htm" }},
		{"filename shadows its own screenshot", func(c *AppConfig) { c.Site.Pages[0].Filename = "index.png" }},
		{"filename shadows another screenshot", func(c *AppConfig) { c.Site.Pages[1].Filename = "index.png" }},
		{"zero navigation timeout", func(c *AppConfig) { c.Browser.NavTimeout = 0 }},
		{"negative fetch delay", func(c *AppConfig) { c.Fetch.Delay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if code := models.ErrorCode(err); code != models.ErrCodeInvalidConfig {
				t.Errorf("error code = %q, want %q", code, models.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SNAPSHOT_BASE_URL", "https://staging.example.com")
	t.Setenv("SNAPSHOT_OUTPUT", "/tmp/snap")
	t.Setenv("SNAPSHOT_HEADLESS", "false")
	t.Setenv("SNAPSHOT_FETCH_DELAY", "1s")
	t.Setenv("SNAPSHOT_FETCH_TIMEOUT", "not-a-duration")
	t.Setenv("SNAPSHOT_PROXY", "http://p1:8080, http://p2:8080")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Site.BaseURL != "https://staging.example.com" {
		t.Errorf("BaseURL = %q", cfg.Site.BaseURL)
	}
	if cfg.Output.Root != "/tmp/snap" {
		t.Errorf("Output.Root = %q", cfg.Output.Root)
	}
	if cfg.Browser.Headless {
		t.Error("Headless should be false")
	}
	if cfg.Fetch.Delay != time.Second {
		t.Errorf("Delay = %v, want 1s", cfg.Fetch.Delay)
	}
	if cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("invalid duration should keep the default, got %v", cfg.Fetch.Timeout)
	}
	if !cfg.Proxies.Enabled || len(cfg.Proxies.List) != 2 || cfg.Proxies.List[1] != "http://p2:8080" {
		t.Errorf("Proxies = %+v", cfg.Proxies)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("SNAPSHOT_LOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SNAPSHOT_LOG_LEVEL", "")
	os.Unsetenv("SNAPSHOT_LOG_LEVEL")

	LoadDotEnv(filepath.Join(dir, "missing.env"), envFile)

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug from .env", cfg.Log.Level)
	}
}
