// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env:"..." tag.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers understood by the application.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing. env-default fills in values that are safe to assume.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	HTTPServer `yaml:"http_server"`
	Storage    Storage `yaml:"storage"`
	CORS       CORS    `yaml:"cors"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr            string        `yaml:"address"          env:"HTTP_SERVER_ADDR" env-required:"true"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Storage selects and configures the document store.
type Storage struct {
	// Driver is "mongo" (default) or "sqlite".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`

	// URI is the MongoDB connection string, e.g. "mongodb://localhost:27017".
	URI        string `yaml:"uri"        env:"STORAGE_URI" env-default:"mongodb://localhost:27017"`
	Database   string `yaml:"database"   env:"STORAGE_DATABASE" env-default:"school"`
	Collection string `yaml:"collection" env:"STORAGE_COLLECTION" env-default:"students"`

	// Path is the SQLite file used when Driver is "sqlite".
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/students.db"`

	// ConnectTimeout bounds the initial connect + ping at startup.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"STORAGE_CONNECT_TIMEOUT" env-default:"10s"`
}

// CORS lists the origins allowed to call the API from a browser.
// Empty (or "*") means every origin is allowed.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// AllowsAnyOrigin reports whether the permissive default applies.
func (c CORS) AllowsAnyOrigin() bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file, applies env overrides and
	// env-default values, and enforces env-required.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Storage.URI == "" || c.Storage.Database == "" || c.Storage.Collection == "" {
			return errors.New("storage: mongo driver needs uri, database and collection")
		}
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage: sqlite driver needs path")
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}
	return nil
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to fatal on failure: if this
// returns, the config is valid.
func MustLoad() *Config {
	// Docker / Kubernetes pass config through the environment.
	configPath := os.Getenv("CONFIG_PATH")

	// Local runs:
	//   go run ./cmd/students-api --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}
