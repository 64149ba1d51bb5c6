package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Adapter timeouts stay inside this window.
const (
	MinSourceTimeout = 8 * time.Second
	MaxSourceTimeout = 10 * time.Second
)

type Server struct {
	ListenAddress        string        `yaml:"listen_address"`
	ReadTimeout          time.Duration `yaml:"read_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	IdleTimeout          time.Duration `yaml:"idle_timeout"`
	CacheMaxAge          time.Duration `yaml:"cache_max_age"`          // s-maxage on /api/contests
	StaleWhileRevalidate time.Duration `yaml:"stale_while_revalidate"` // 0 omits the directive
	AllowedOrigin        string        `yaml:"allowed_origin"`
}

type Source struct {
	Enabled    *bool             `yaml:"enabled"` // nil means enabled
	BaseURL    string            `yaml:"base_url"`
	Timeout    time.Duration     `yaml:"timeout"`
	UserAgent  string            `yaml:"user_agent"`
	Limit      *int              `yaml:"limit"` // 0 = uncapped, nil = platform default
	MaxRetries int               `yaml:"max_retries"`
	Backoff    time.Duration     `yaml:"backoff"`
	MaxBackoff time.Duration     `yaml:"max_backoff"`
	Headers    map[string]string `yaml:"headers"`
}

// IsEnabled reports whether the source should be queried.
func (s Source) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

type Sources struct {
	Codeforces Source `yaml:"codeforces"`
	AtCoder    Source `yaml:"atcoder"`
	LeetCode   Source `yaml:"leetcode"`
	CodeChef   Source `yaml:"codechef"`
}

type Database struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	URL    string `yaml:"url"`
}

type Admin struct {
	Key string `yaml:"key"` // empty disables admin routes
}

type Log struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

type Metrics struct {
	Enable *bool  `yaml:"enable"`
	Path   string `yaml:"path"`
}

// Enabled reports whether the metrics endpoint is served.
func (m Metrics) Enabled() bool { return m.Enable == nil || *m.Enable }

type Config struct {
	Server   Server   `yaml:"server"`
	Sources  Sources  `yaml:"sources"`
	Database Database `yaml:"database"`
	Admin    Admin    `yaml:"admin"`
	Log      Log      `yaml:"log"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Load reads the YAML file at path, applies environment overrides and
// fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse yaml: %w", err)
			}
		}
	}
	c.applyEnv(os.Getenv)
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("CODEWINDER_LISTEN_ADDRESS"); v != "" {
		c.Server.ListenAddress = v
	}
	if v := getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := getenv("ADMIN_KEY"); v != "" {
		c.Admin.Key = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.CacheMaxAge == 0 {
		c.Server.CacheMaxAge = 5 * time.Minute
	}
	if c.Server.StaleWhileRevalidate == 0 {
		c.Server.StaleWhileRevalidate = 10 * time.Minute
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}

	sourceDefaults(&c.Sources.Codeforces, "https://codeforces.com", 10*time.Second, 5)
	sourceDefaults(&c.Sources.AtCoder, "https://kenkoooo.com/atcoder", 10*time.Second, 5)
	sourceDefaults(&c.Sources.LeetCode, "https://leetcode.com", 8*time.Second, 0)
	sourceDefaults(&c.Sources.CodeChef, "https://www.codechef.com", 10*time.Second, 0)

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.URL == "" && c.Database.Driver == "sqlite" {
		c.Database.URL = "file:codewinder.db?_pragma=busy_timeout(5000)"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

func sourceDefaults(s *Source, baseURL string, timeout time.Duration, limit int) {
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if s.BaseURL == "" {
		s.BaseURL = baseURL
	}
	switch {
	case s.Timeout == 0:
		s.Timeout = timeout
	case s.Timeout < MinSourceTimeout:
		s.Timeout = MinSourceTimeout
	case s.Timeout > MaxSourceTimeout:
		s.Timeout = MaxSourceTimeout
	}
	if s.Limit == nil {
		s.Limit = &limit
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = 1
	}
	if s.Backoff == 0 {
		s.Backoff = 500 * time.Millisecond
	}
	if s.MaxBackoff == 0 {
		s.MaxBackoff = 2 * time.Second
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database url required (database.url or DATABASE_URL)")
	}
	if c.Server.WriteTimeout <= MaxSourceTimeout {
		return fmt.Errorf("server.write_timeout %s must exceed the source timeout %s", c.Server.WriteTimeout, MaxSourceTimeout)
	}
	for name, s := range map[string]Source{
		"codeforces": c.Sources.Codeforces,
		"atcoder":    c.Sources.AtCoder,
		"leetcode":   c.Sources.LeetCode,
		"codechef":   c.Sources.CodeChef,
	} {
		if s.Limit != nil && *s.Limit < 0 {
			return fmt.Errorf("sources.%s.limit must not be negative", name)
		}
	}
	return nil
}
