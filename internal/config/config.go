// Package config carries the service configuration for the workbench server.
// Construction uses functional options; a YAML file can contribute options
// ahead of command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultHost binds the server to loopback only.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the workbench server port.
	DefaultPort = 8950
	// DefaultPollInterval is the job polling cadence.
	DefaultPollInterval = 2 * time.Second
)

// ServiceConfig holds the resolved server configuration. Fields are
// immutable after construction; read them through the accessors.
type ServiceConfig struct {
	host           string
	port           int
	jobServiceURL  string
	pollInterval   time.Duration
	eventLogDir    string
	allowedOrigins []string
	verbose        bool
}

// Option configures a ServiceConfig.
type Option func(*ServiceConfig)

// WithHost sets the listen host.
func WithHost(host string) Option {
	return func(c *ServiceConfig) {
		if host != "" {
			c.host = host
		}
	}
}

// WithPort sets the listen port.
func WithPort(port int) Option {
	return func(c *ServiceConfig) {
		if port > 0 {
			c.port = port
		}
	}
}

// WithJobServiceURL sets the remote pipeline job service base URL. Empty
// selects the simulated pipeline.
func WithJobServiceURL(url string) Option {
	return func(c *ServiceConfig) { c.jobServiceURL = url }
}

// WithPollInterval sets the job polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *ServiceConfig) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithEventLogDir sets the directory for NDJSON session logs. Empty disables
// event logging.
func WithEventLogDir(dir string) Option {
	return func(c *ServiceConfig) { c.eventLogDir = dir }
}

// WithAllowedOrigins sets the CORS allow-list.
func WithAllowedOrigins(origins []string) Option {
	return func(c *ServiceConfig) { c.allowedOrigins = origins }
}

// WithVerbose enables debug logging.
func WithVerbose(v bool) Option {
	return func(c *ServiceConfig) { c.verbose = v }
}

// NewServiceConfig creates a config with defaults, then applies options in
// order. A nil option is a programming error and panics.
func NewServiceConfig(opts ...Option) *ServiceConfig {
	c := &ServiceConfig{
		host:         DefaultHost,
		port:         DefaultPort,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		if opt == nil {
			panic("config: nil option")
		}
		opt(c)
	}
	return c
}

// Host returns the listen host.
func (c *ServiceConfig) Host() string { return c.host }

// Port returns the listen port.
func (c *ServiceConfig) Port() int { return c.port }

// JobServiceURL returns the job service base URL, or empty for the simulated
// pipeline.
func (c *ServiceConfig) JobServiceURL() string { return c.jobServiceURL }

// PollInterval returns the job polling cadence.
func (c *ServiceConfig) PollInterval() time.Duration { return c.pollInterval }

// EventLogDir returns the NDJSON session log directory, or empty when event
// logging is disabled.
func (c *ServiceConfig) EventLogDir() string { return c.eventLogDir }

// AllowedOrigins returns the CORS allow-list.
func (c *ServiceConfig) AllowedOrigins() []string { return c.allowedOrigins }

// Verbose reports whether debug logging is enabled.
func (c *ServiceConfig) Verbose() bool { return c.verbose }

// fileConfig is the YAML shape of a config file.
type fileConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	JobServiceURL  string   `yaml:"job_service_url"`
	PollInterval   string   `yaml:"poll_interval"`
	EventLogDir    string   `yaml:"event_log_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Verbose        bool     `yaml:"verbose"`
}

// LoadFile reads a YAML config file and returns the options it contributes.
// Callers append flag-derived options after these so flags win.
func LoadFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	opts := []Option{
		WithHost(fc.Host),
		WithPort(fc.Port),
		WithJobServiceURL(fc.JobServiceURL),
		WithEventLogDir(fc.EventLogDir),
		WithVerbose(fc.Verbose),
	}
	if fc.AllowedOrigins != nil {
		opts = append(opts, WithAllowedOrigins(fc.AllowedOrigins))
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing poll_interval %q: %w", fc.PollInterval, err)
		}
		opts = append(opts, WithPollInterval(d))
	}
	return opts, nil
}
