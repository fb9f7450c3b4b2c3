package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Source struct {
		// Mode selects where the two input documents come from:
		// "documents" loads a prebuilt dataset + default-params pair,
		// "direct" assembles the dataset from the public sources.
		Mode         string        `yaml:"mode" default:"direct"`
		DataURL      string        `yaml:"data_url"`
		ParamsURL    string        `yaml:"params_url"`
		PolicyRate   string        `yaml:"policy_rate_url" default:"https://www.cnb.cz/cs/casto-kladene-dotazy/.galleries/vyvoj_repo_historie.txt"`
		EurostatBase string        `yaml:"eurostat_base_url" default:"https://ec.europa.eu/eurostat/api/dissemination/statistics/1.0/data"`
		GeoCode      string        `yaml:"geo_code" default:"CZ"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" default:"90s"`
		CacheTTL     time.Duration `yaml:"cache_ttl" default:"24h"`
		StartPeriod  string        `yaml:"start_period" default:"2000-01"`
		EndPeriod    string        `yaml:"end_period" default:"2026-12"`
	} `yaml:"source"`
	Rule struct {
		// Fallback coefficients for direct mode, used when the assembled
		// dataset is too short for calibration; documents mode takes the
		// defaults from the params document instead.
		Rho   float64 `yaml:"rho" default:"0.80"`
		RStar float64 `yaml:"rstar" default:"1.5"`
		Alpha float64 `yaml:"alpha" default:"1.5"`
		Beta  float64 `yaml:"beta" default:"0.5"`
	} `yaml:"rule"`
	Scheduler struct {
		QuietPeriod time.Duration `yaml:"quiet_period" default:"250ms"`
	} `yaml:"scheduler"`
	Export struct {
		Width          int `yaml:"width" default:"1920"`
		Height         int `yaml:"height" default:"1080"`
		TitleBand      int `yaml:"title_band" default:"96"`
		ReferenceWidth int `yaml:"reference_width" default:"960"`
	} `yaml:"export"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"ratescope"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("RATESCOPE_SOURCE_MODE"); v != "" {
		c.Source.Mode = v
	}
	if v := os.Getenv("RATESCOPE_DATA_URL"); v != "" {
		c.Source.DataURL = v
	}
	if v := os.Getenv("RATESCOPE_PARAMS_URL"); v != "" {
		c.Source.ParamsURL = v
	}
	if v := os.Getenv("RATESCOPE_REDIS_ADDR"); v != "" {
		host, port, err := splitHostPort(v)
		if err != nil {
			return nil, fmt.Errorf("RATESCOPE_REDIS_ADDR: %w", err)
		}
		c.Redis.Enabled = true
		c.Redis.Host = host
		c.Redis.Port = port
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Source.Mode {
	case "documents":
		if c.Source.DataURL == "" || c.Source.ParamsURL == "" {
			return fmt.Errorf("source.data_url and source.params_url are required in documents mode")
		}
	case "direct":
		if c.Source.PolicyRate == "" {
			return fmt.Errorf("source.policy_rate_url is required in direct mode")
		}
	default:
		return fmt.Errorf("source.mode must be 'documents' or 'direct', got '%s'", c.Source.Mode)
	}
	if c.Rule.Rho < 0 || c.Rule.Rho > 0.99 {
		return fmt.Errorf("rule.rho must be in [0, 0.99], got %v", c.Rule.Rho)
	}
	if c.Rule.RStar < -2 || c.Rule.RStar > 5 {
		return fmt.Errorf("rule.rstar must be in [-2, 5], got %v", c.Rule.RStar)
	}
	if c.Rule.Alpha < 0 || c.Rule.Alpha > 3 {
		return fmt.Errorf("rule.alpha must be in [0, 3], got %v", c.Rule.Alpha)
	}
	if c.Rule.Beta < 0 || c.Rule.Beta > 3 {
		return fmt.Errorf("rule.beta must be in [0, 3], got %v", c.Rule.Beta)
	}
	if c.Scheduler.QuietPeriod <= 0 {
		return fmt.Errorf("scheduler.quiet_period must be positive")
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 || c.Export.ReferenceWidth <= 0 {
		return fmt.Errorf("export dimensions must be positive")
	}
	if c.Export.TitleBand >= c.Export.Height {
		return fmt.Errorf("export.title_band must be smaller than export.height")
	}
	return nil
}

func splitHostPort(addr string) (string, int, error) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return addr, 6379, nil
	}
	port, err := strconv.Atoi(addr[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q", addr)
	}
	return addr[:i], port, nil
}
