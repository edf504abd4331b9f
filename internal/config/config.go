// Package config loads the oasmeta command configuration.
//
// Configuration is merged from three layers, highest precedence last:
//
//  1. An optional .env file next to the configuration file.
//  2. The configuration file, when one is given. Files ending in .toml are
//     read as TOML, anything else as YAML.
//  3. Environment variables prefixed OASMETA_, where "__" separates levels
//     (OASMETA_SERVER__LISTEN_ADDR sets server.listen_addr).
//
// Fields left unset keep the values from Default.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"

	"github.com/erraggy/oasmeta/metadata"
	"github.com/erraggy/oasmeta/oaserrors"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "OASMETA_"

// Server holds HTTP server tunables.
type Server struct {
	ListenAddr      string        `koanf:"listen_addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	MetricsPath     string        `koanf:"metrics_path" validate:"omitempty,startswith=/"`
}

// Middleware mirrors the metadata middleware options.
type Middleware struct {
	MatchSubPaths      bool  `koanf:"match_sub_paths"`
	MaxBodySize        int64 `koanf:"max_body_size" validate:"gt=0"`
	MaxMultipartMemory int64 `koanf:"max_multipart_memory" validate:"gt=0"`
	MaxMultipartSize   int64 `koanf:"max_multipart_size" validate:"gt=0"`
}

// Log configures the process logger.
type Log struct {
	Level   string `koanf:"level" validate:"oneof=debug info warn error"`
	File    string `koanf:"file"`
	Console bool   `koanf:"console"`
}

// Config is the command configuration.
type Config struct {
	Spec       string     `koanf:"spec" validate:"required"`
	Server     Server     `koanf:"server"`
	Middleware Middleware `koanf:"middleware"`
	Log        Log        `koanf:"log"`
}

// Default returns the configuration used for unset fields.
func Default() Config {
	return Config{
		Server: Server{
			ListenAddr:      "localhost:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MetricsPath:     "/metrics",
		},
		Middleware: Middleware{
			MatchSubPaths:      true,
			MaxBodySize:        metadata.DefaultMaxBodySize,
			MaxMultipartMemory: metadata.DefaultMaxMultipartMemory,
			MaxMultipartSize:   metadata.DefaultMaxMultipartSize,
		},
		Log: Log{
			Level:   "info",
			Console: true,
		},
	}
}

var validate = validator.New()

// Load merges the .env file, the configuration file at path (skipped when path is
// empty) and the environment over Default, applies overrides in order, then
// validates the result.
//
// Errors are *oaserrors.ConfigError.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	// .env is optional
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, &oaserrors.ConfigError{Option: "config", Value: path, Message: "cannot read configuration file", Cause: err}
		}
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, &oaserrors.ConfigError{Option: "config", Value: path, Message: "invalid configuration file", Cause: err}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, &oaserrors.ConfigError{Option: "env", Message: "invalid environment override", Cause: err}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &oaserrors.ConfigError{Option: "config", Message: "cannot decode configuration", Cause: err}
	}
	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return tomlParser{}
	}
	return yaml.Parser()
}

// envKey maps OASMETA_SERVER__LISTEN_ADDR to server.listen_addr.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// Validate checks field constraints and reports the first failure as a
// *oaserrors.ConfigError naming the field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &oaserrors.ConfigError{
			Option:  fieldPath(fe.Namespace()),
			Value:   fe.Value(),
			Message: "failed " + fe.Tag() + " constraint",
		}
	}
	return &oaserrors.ConfigError{Option: "config", Cause: err}
}

// fieldPath turns "Config.Server.ListenAddr" into "Server.ListenAddr".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// MiddlewareOptions returns the metadata options the configuration selects.
func (c *Config) MiddlewareOptions() []metadata.Option {
	return []metadata.Option{
		metadata.WithMatchSubPaths(c.Middleware.MatchSubPaths),
		metadata.WithMaxBodySize(c.Middleware.MaxBodySize),
		metadata.WithMaxMultipartMemory(c.Middleware.MaxMultipartMemory),
		metadata.WithMaxMultipartSize(c.Middleware.MaxMultipartSize),
	}
}
