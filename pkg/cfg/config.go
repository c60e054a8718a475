package cfg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	serrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/registry"
	"github.com/SAP/stewardci-provenance/pkg/registry/sqlite"
)

const (
	// EnvPrefix is the prefix of environment variables overriding
	// configuration values, e.g. PROVENANCE_REGISTRY_DRIVER.
	EnvPrefix = "PROVENANCE_"

	// DriverMemory keeps the registry in memory.
	DriverMemory = "memory"
	// DriverSQLite persists the registry in a SQLite database file.
	DriverSQLite = "sqlite"
)

// Config is the configuration of the provenance server.
type Config struct {
	Registry RegistryConfig `yaml:"registry" envPrefix:"REGISTRY_"`
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Metrics  MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
	Ingest   IngestConfig   `yaml:"ingest" envPrefix:"INGEST_"`
}

// RegistryConfig selects the registry storage.
type RegistryConfig struct {
	// Driver is either "memory" or "sqlite".
	Driver string `yaml:"driver" env:"DRIVER"`

	// Path is the database file of the sqlite driver.
	Path string `yaml:"path" env:"PATH"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Listen string `yaml:"listen" env:"LISTEN"`
}

// MetricsConfig configures the metrics server.
type MetricsConfig struct {
	Port uint16 `yaml:"port" env:"PORT"`
}

// IngestConfig configures the ingest controller.
type IngestConfig struct {
	// Threadiness is the number of ingest workers.
	Threadiness int `yaml:"threadiness" env:"THREADINESS"`

	// MaxRetries is the number of retries of reports failing with
	// recoverable errors. Zero disables retries.
	MaxRetries int `yaml:"maxRetries" env:"MAX_RETRIES"`

	// HeartbeatInterval is the interval of controller heartbeats.
	// Zero disables heartbeats.
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval" env:"HEARTBEAT_INTERVAL"`

	// MaintenanceModeFile enables maintenance mode while it contains
	// "true", e.g. a key of a mounted ConfigMap. Empty disables the check.
	MaintenanceModeFile string `yaml:"maintenanceModeFile" env:"MAINTENANCE_MODE_FILE"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{Driver: DriverMemory},
		Server:   ServerConfig{Listen: ":8080"},
		Metrics:  MetricsConfig{Port: 9090},
		Ingest: IngestConfig{
			Threadiness:       2,
			MaxRetries:        5,
			HeartbeatInterval: time.Minute,
		},
	}
}

// Load loads the configuration from the YAML file at path, if not
// empty, and applies overrides from the process environment.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, serrors.Config(errors.Wrapf(err, "failed to read configuration file %q", path))
		}
	}
	return Parse(data, nil)
}

// Parse parses YAML configuration data on top of the defaults and
// applies environment overrides. If environment is nil, the process
// environment is used.
func Parse(data []byte, environment map[string]string) (*Config, error) {
	config := Default()

	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(config); err != nil && err != io.EOF {
			return nil, serrors.Config(errors.Wrap(err, "invalid configuration"))
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return nil, serrors.Config(errors.Wrap(err, "invalid configuration in environment"))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Registry.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Registry.Path == "" {
			return serrors.Config(fmt.Errorf("registry driver %q requires a path", DriverSQLite))
		}
	default:
		return serrors.Config(fmt.Errorf("unknown registry driver %q", c.Registry.Driver))
	}
	if c.Server.Listen == "" {
		return serrors.Config(fmt.Errorf("server listen address is empty"))
	}
	if c.Metrics.Port == 0 {
		return serrors.Config(fmt.Errorf("metrics port must not be 0"))
	}
	if c.Ingest.Threadiness < 1 {
		return serrors.Config(fmt.Errorf("ingest threadiness must be at least 1 but is %d", c.Ingest.Threadiness))
	}
	if c.Ingest.MaxRetries < 0 {
		return serrors.Config(fmt.Errorf("ingest max retries must not be negative but is %d", c.Ingest.MaxRetries))
	}
	if c.Ingest.HeartbeatInterval < 0 {
		return serrors.Config(fmt.Errorf("ingest heartbeat interval must not be negative but is %s", c.Ingest.HeartbeatInterval))
	}
	return nil
}

// OpenStore opens the configured registry store. The caller must close
// it if it implements io.Closer.
func (c RegistryConfig) OpenStore(ctx context.Context) (registry.Store, error) {
	switch c.Driver {
	case DriverSQLite:
		store, err := sqlite.Open(ctx, c.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return registry.NewMemoryStore(), nil
	default:
		return nil, serrors.Config(fmt.Errorf("unknown registry driver %q", c.Driver))
	}
}
