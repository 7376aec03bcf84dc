// Package config handles configuration for storecheck.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/storefront-qa/storecheck/pkg/core"
	"github.com/storefront-qa/storecheck/pkg/wait"
)

// Config is the run configuration (storecheck.yaml). Zero values fall back
// to defaults suitable for a local OpenCart deployment.
type Config struct {
	// Target storefront
	BaseURL string `yaml:"baseUrl"`

	// Scenario selection: IDs as the test data provider names them.
	// Empty means run every registered scenario.
	Scenarios []string `yaml:"scenarios"`

	// Browser settings
	Browser  string  `yaml:"browser"` // chromium, firefox, webkit
	Headless bool    `yaml:"headless"`
	SlowMoMs float64 `yaml:"slowMoMs"`

	// Synchronization settings
	Timeout   Duration `yaml:"timeout"`   // Per-condition wait budget
	Poll      Duration `yaml:"poll"`      // Poll interval
	Stability Duration `yaml:"stability"` // Window a state must hold

	// Artifacts
	OutputDir     string `yaml:"outputDir"`     // Run reports
	ScreenshotDir string `yaml:"screenshotDir"` // Failure captures
	LogFile       string `yaml:"logFile"`

	// Store database, for fixture maintenance such as clearing login
	// throttling between runs. Empty disables DB access.
	DatabaseDSN string `yaml:"databaseDsn"`

	// Extra environment passed through to flows
	Env map[string]string `yaml:"env"`
}

// Duration is a time.Duration that unmarshals from YAML strings such as
// "15s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return core.ErrInvalidConfig.WithMessage("bad duration %q", raw).WithCause(err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Defaults for a local deployment.
const (
	DefaultBaseURL   = "http://localhost/opencart/upload/index.php"
	DefaultBrowser   = "chromium"
	DefaultTimeout   = Duration(15 * time.Second)
	DefaultPoll      = Duration(250 * time.Millisecond)
	DefaultOutputDir = "reports"
)

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("parsing %s", path).WithCause(err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// LoadFromDir looks for storecheck.yaml or storecheck.yml in the directory.
// A missing file is not an error; the defaults plus environment are enough
// to run against a local store.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"storecheck.yaml", "storecheck.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Browser == "" {
		c.Browser = DefaultBrowser
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Poll == 0 {
		c.Poll = DefaultPoll
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = filepath.Join(c.OutputDir, "screenshots")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.OutputDir, "storecheck.log")
	}
}

// applyEnv overlays STORECHECK_* environment variables, loading a .env
// file first when one is present. The environment wins over the file so CI
// can point the same config at different deployments.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("STORECHECK_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("STORECHECK_BROWSER"); v != "" {
		c.Browser = v
	}
	if v := os.Getenv("STORECHECK_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Headless = b
		}
	}
	if v := os.Getenv("STORECHECK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("STORECHECK_DB_DSN"); v != "" {
		c.DatabaseDSN = v
	}
}

// WaitOptions converts the synchronization settings for the wait engine.
func (c *Config) WaitOptions() wait.Options {
	return wait.Options{
		Timeout:   c.Timeout.Std(),
		Poll:      c.Poll.Std(),
		Stability: c.Stability.Std(),
	}
}

// Validate rejects configurations the run cannot start with.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return core.ErrInvalidConfig.WithMessage("baseUrl is required")
	}
	switch c.Browser {
	case "chromium", "firefox", "webkit":
	default:
		return core.ErrInvalidConfig.WithMessage("unknown browser %q", c.Browser)
	}
	if c.Poll <= 0 || c.Timeout <= 0 {
		return core.ErrInvalidConfig.WithMessage("timeout and poll must be positive")
	}
	if c.Poll > c.Timeout {
		return core.ErrInvalidConfig.WithMessage("poll %s exceeds timeout %s", c.Poll, c.Timeout)
	}
	return nil
}
