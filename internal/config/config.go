package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/synotools/synoexport/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".synoexport", "config.json")
	DefaultOutputDir  = "."
	DefaultLogLevel   = "info"
	DefaultTimeout    = 30 * time.Second
)

// Config is everything one export run needs. The CLI layers values into it:
// flags over environment over .env over the config file over defaults.
type Config struct {
	OutputDir   string        `json:"output_dir,omitempty"`
	ServerURL   string        `json:"server_url,omitempty"`
	Username    string        `json:"username,omitempty"`
	Password    string        `json:"password,omitempty"`
	Force       bool          `json:"force,omitempty"`
	SkipHistory bool          `json:"skip_history,omitempty"`
	LogLevel    string        `json:"log_level,omitempty"`
	Insecure    bool          `json:"insecure,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
}

// Validate normalizes the config in place and reports the first problem. The
// output dir is resolved to an absolute path.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	outputDir, err := utils.ResolvePath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("invalid output dir %q: %w", c.OutputDir, err)
	}
	c.OutputDir = outputDir

	if c.ServerURL == "" {
		return fmt.Errorf("server url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server url %q: scheme must be http or https", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server url %q: missing host", c.ServerURL)
	}

	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be debug, info, warn or error", c.LogLevel)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s: must not be negative", c.Timeout)
	}

	return nil
}

// Save writes the config as json. Used to seed a config file; the password
// is stored as given, so callers should leave it empty unless asked.
func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Load reads a config file written by Save.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
