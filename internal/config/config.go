// Package config provides configuration loading for the tracker client and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/tracker/internal/logging"
)

// EnvJWTSecret overrides the server signing secret
const EnvJWTSecret = "TRACKER_JWT_SECRET"

// Client is the configuration of the tracker CLI.
type Client struct {
	Log            logging.Config `yaml:"log"`
	ServerURL      string         `yaml:"server_url"`
	DBPath         string         `yaml:"db_path"`
	RequestTimeout time.Duration  `yaml:"request_timeout"`
	ProbeInterval  time.Duration  `yaml:"probe_interval"`
	MaxRetries     int            `yaml:"max_retries"`
}

// Server is the configuration of the reference server.
type Server struct {
	Log       logging.Config `yaml:"log"`
	Address   string         `yaml:"address"`
	DBPath    string         `yaml:"db_path"`
	JWTSecret string         `yaml:"jwt_secret"`
	TokenTTL  time.Duration  `yaml:"token_ttl"`

	// RateLimit запросов с одного адреса за RateWindow; 0 отключает ограничение
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// DefaultClient returns the client defaults
func DefaultClient() *Client {
	return &Client{
		Log:            logging.DefaultConfig(),
		ServerURL:      "http://localhost:8080",
		DBPath:         "tracker.db",
		RequestTimeout: 15 * time.Second,
		ProbeInterval:  10 * time.Second,
		MaxRetries:     5,
	}
}

// DefaultServer returns the server defaults
func DefaultServer() *Server {
	return &Server{
		Log:        logging.DefaultConfig(),
		Address:    ":8080",
		DBPath:     "tracker-server.db",
		TokenTTL:   30 * 24 * time.Hour,
		RateLimit:  600,
		RateWindow: time.Minute,
	}
}

// DefaultClientPath returns ~/.tracker/config.yaml
func DefaultClientPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".tracker", "config.yaml")
}

// LoadClient loads the client configuration.
// A missing file at the default location yields the defaults; an explicit path must exist.
func LoadClient(path string) (*Client, error) {
	cfg := DefaultClient()
	if err := load(path, DefaultClientPath(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadServer loads the server configuration and applies environment overrides.
func LoadServer(path string) (*Server, error) {
	cfg := DefaultServer()
	if path != "" {
		if err := load(path, "", cfg); err != nil {
			return nil, err
		}
	}
	if secret := os.Getenv(EnvJWTSecret); secret != "" {
		cfg.JWTSecret = secret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path, defaultPath string, dst any) error {
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the client configuration
func (c *Client) Validate() error {
	var errs []error
	if c.ServerURL == "" {
		errs = append(errs, errors.New("server_url is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.ProbeInterval <= 0 {
		errs = append(errs, errors.New("probe_interval must be positive"))
	}
	if c.MaxRetries <= 0 {
		errs = append(errs, errors.New("max_retries must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}

// Validate checks the server configuration
func (s *Server) Validate() error {
	var errs []error
	if s.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if s.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if len(s.JWTSecret) < 32 {
		errs = append(errs, fmt.Errorf("jwt_secret must be at least 32 bytes (or set %s)", EnvJWTSecret))
	}
	if s.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if s.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit must not be negative"))
	}
	if s.RateLimit > 0 && s.RateWindow <= 0 {
		errs = append(errs, errors.New("rate_window must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return nil
}
