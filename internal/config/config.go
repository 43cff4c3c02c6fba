// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	SiteRoot     string `env:"SITE_ROOT" envDefault:"."`
	SkeletonPath string `env:"SKELETON_PATH" envDefault:"templates/index.html"`

	// DataBaseURL switches the data loader from the site root to HTTP.
	DataBaseURL    string `env:"DATA_BASE_URL"`
	AboutMeSource  string `env:"ABOUT_ME_SOURCE" envDefault:"./data/aboutMeData.json"`
	ProjectsSource string `env:"PROJECTS_SOURCE" envDefault:"./data/projectsData.json"`

	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`

	// MaxPages bounds live pages; the longest idle is evicted first. Zero
	// means unbounded.
	MaxPages int `env:"MAX_PAGES" envDefault:"1000"`

	TrackingDB string `env:"TRACKING_DB"`
	AdminToken string `env:"ADMIN_TOKEN"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	OTELEndpoint string `env:"OTEL_ENDPOINT"`

	MessageIllegal string `env:"CONTACT_MESSAGE_ILLEGAL" envDefault:"[^a-zA-Z0-9@._-]"`

	GinMode string `env:"GIN_MODE" envDefault:"release"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("MAX_PAGES must not be negative, got %d", c.MaxPages)
	}
	if _, err := c.MessagePattern(); err != nil {
		return err
	}
	return nil
}

// MessagePattern compiles the illegal-character pattern for contact messages.
func (c *Config) MessagePattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.MessageIllegal)
	if err != nil {
		return nil, fmt.Errorf("CONTACT_MESSAGE_ILLEGAL: %w", err)
	}
	return re, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
