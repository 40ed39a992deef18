package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration of the api-server. Every field has a
// default so the server starts with an empty environment (DEMO_KEY included).
type Config struct {
	Port            int           `env:"BACKEND_PORT" envDefault:"3000"`
	APIKey          string        `env:"API_KEY" envDefault:"DEMO_KEY"`
	RoverEndpoint   string        `env:"ROVER_ENDPOINT" envDefault:"https://api.nasa.gov/mars-photos/api/v1"`
	APODEndpoint    string        `env:"APOD_ENDPOINT" envDefault:"https://api.nasa.gov/planetary/apod"`
	StaticDir       string        `env:"STATIC_DIR" envDefault:"web/public"`
	BackendURL      string        `env:"BACKEND_URL"`
	GRPCAddr        string        `env:"GRPC_ADDR" envDefault:":7071"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
	DBPath          string        `env:"MARSROVER_DB_PATH"`
	Verbose         bool          `env:"MARSROVER_VERBOSE"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	return load(env.Options{})
}

// LoadConfigFrom reads Config from the given variables instead of the
// process environment.
func LoadConfigFrom(environ map[string]string) (Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	return cfg, nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
