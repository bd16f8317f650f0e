package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/williampepple1/site-snapshot/pkg/models"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Site    SiteConfig    `yaml:"site"`
	Browser BrowserConfig `yaml:"browser"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Proxies ProxyConfig   `yaml:"proxies"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// SiteConfig describes what to snapshot
type SiteConfig struct {
	BaseURL string            `yaml:"base_url"`
	Pages   []models.PageSpec `yaml:"pages"`
}

// BrowserConfig holds the browser configuration for the render stage
type BrowserConfig struct {
	Headless        bool          `yaml:"headless"`
	NoSandbox       bool          `yaml:"no_sandbox"`
	ExecPath        string        `yaml:"exec_path"`
	UserDataDir     string        `yaml:"user_data_dir"`
	UserAgent       string        `yaml:"user_agent"`
	Stealth         bool          `yaml:"stealth"`
	ViewportWidth   int64         `yaml:"viewport_width"`
	ViewportHeight  int64         `yaml:"viewport_height"`
	NavTimeout      time.Duration `yaml:"nav_timeout"`
	IdleWindow      time.Duration `yaml:"idle_window"`
	IdleMaxInflight int           `yaml:"idle_max_inflight"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	ScrollStep      int           `yaml:"scroll_step"`
	ScrollInterval  time.Duration `yaml:"scroll_interval"`
	PostScrollDelay time.Duration `yaml:"post_scroll_delay"`
}

// FetchConfig holds the asset download configuration
type FetchConfig struct {
	Timeout    time.Duration     `yaml:"timeout"`
	Delay      time.Duration     `yaml:"delay"`
	UserAgent  string            `yaml:"user_agent"`
	Categories []models.Category `yaml:"categories"`
	ChromeTLS  bool              `yaml:"chrome_tls"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// OutputConfig holds the output location
type OutputConfig struct {
	Root string `yaml:"root"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *AppConfig {
	pages := make([]models.PageSpec, len(DefaultPages))
	copy(pages, DefaultPages)
	categories := make([]models.Category, len(DefaultFetchCategories))
	copy(categories, DefaultFetchCategories)

	return &AppConfig{
		Site: SiteConfig{
			BaseURL: DefaultBaseURL,
			Pages:   pages,
		},
		Browser: BrowserConfig{
			Headless:        true,
			NoSandbox:       true,
			UserAgent:       DefaultUserAgent,
			ViewportWidth:   1920,
			ViewportHeight:  1080,
			NavTimeout:      30 * time.Second,
			IdleWindow:      500 * time.Millisecond,
			IdleMaxInflight: 2,
			SettleDelay:     2 * time.Second,
			ScrollStep:      500,
			ScrollInterval:  100 * time.Millisecond,
			PostScrollDelay: 1 * time.Second,
		},
		Fetch: FetchConfig{
			Timeout:    30 * time.Second,
			Delay:      100 * time.Millisecond,
			UserAgent:  DefaultUserAgent,
			Categories: categories,
		},
		Proxies: ProxyConfig{
			Rotate: true,
			List:   []string{},
		},
		Output: OutputConfig{
			Root: "scraped-content",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads the configuration from a YAML file on top of the defaults
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	if config.Browser.UserAgent == "" {
		config.Browser.UserAgent = DefaultUserAgent
	}
	if config.Fetch.UserAgent == "" {
		config.Fetch.UserAgent = DefaultUserAgent
	}

	return config, nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set are never overridden.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides configuration values from SNAPSHOT_* environment variables
func (c *AppConfig) ApplyEnv() {
	c.Site.BaseURL = envOr("SNAPSHOT_BASE_URL", c.Site.BaseURL)
	c.Output.Root = envOr("SNAPSHOT_OUTPUT", c.Output.Root)
	c.Browser.Headless = envBoolOr("SNAPSHOT_HEADLESS", c.Browser.Headless)
	c.Browser.ExecPath = envOr("SNAPSHOT_CHROME_PATH", c.Browser.ExecPath)
	c.Browser.UserDataDir = envOr("SNAPSHOT_USER_DATA_DIR", c.Browser.UserDataDir)
	c.Fetch.Delay = envDurationOr("SNAPSHOT_FETCH_DELAY", c.Fetch.Delay)
	c.Fetch.Timeout = envDurationOr("SNAPSHOT_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Log.Level = envOr("SNAPSHOT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("SNAPSHOT_LOG_FORMAT", c.Log.Format)

	if p := os.Getenv("SNAPSHOT_PROXY"); p != "" {
		c.Proxies.Enabled = true
		c.Proxies.List = splitList(p)
	}
}

// Validate checks the configuration for values the pipeline cannot work with
func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return models.NewSnapshotError(models.ErrCodeInvalidConfig,
			fmt.Sprintf("base URL %q must be an absolute URL", c.Site.BaseURL), err)
	}
	if len(c.Site.Pages) == 0 {
		return models.NewSnapshotError(models.ErrCodeInvalidConfig, "no pages configured", nil)
	}

	// both the HTML snapshot and the screenshot of every page must get a file of their own
	owners := make(map[string]int, 2*len(c.Site.Pages))
	for i, p := range c.Site.Pages {
		if p.Path == "" || p.Filename == "" {
			return models.NewSnapshotError(models.ErrCodeInvalidConfig,
				fmt.Sprintf("page %d needs both path and filename", i), nil)
		}
		if strings.ContainsAny(p.Filename, `/\`) {
			return models.NewSnapshotError(models.ErrCodeInvalidConfig,
				fmt.Sprintf("page filename %q must not contain a directory", p.Filename), nil)
		}
		for _, name := range []string{p.Filename, p.ScreenshotFilename()} {
			if j, taken := owners[name]; taken {
				return models.NewSnapshotError(models.ErrCodeInvalidConfig,
					fmt.Sprintf("pages %q and %q both write %q", c.Site.Pages[j].Path, p.Path, name), nil)
			}
			owners[name] = i
		}
	}

	for _, cat := range c.Fetch.Categories {
		if _, err := models.ParseCategory(string(cat)); err != nil {
			return models.NewSnapshotError(models.ErrCodeInvalidConfig, "invalid fetch category", err)
		}
	}

	if c.Browser.NavTimeout <= 0 || c.Fetch.Timeout <= 0 {
		return models.NewSnapshotError(models.ErrCodeInvalidConfig, "navigation and fetch timeouts must be positive", nil)
	}
	if c.Fetch.Delay < 0 {
		return models.NewSnapshotError(models.ErrCodeInvalidConfig, "fetch delay must not be negative", nil)
	}

	if c.Output.Root == "" {
		return models.NewSnapshotError(models.ErrCodeInvalidConfig, "output root is empty", nil)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
