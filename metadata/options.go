package metadata

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erraggy/oasmeta/oaserrors"
)

// Default resource limits.
const (
	// DefaultMaxBodySize bounds JSON, urlencoded and text bodies (100 KiB).
	DefaultMaxBodySize int64 = 100 << 10
	// DefaultMaxMultipartMemory is the part of a multipart body kept in
	// memory; the remainder of file parts is spooled to temporary files.
	DefaultMaxMultipartMemory int64 = 32 << 20
	// DefaultMaxMultipartSize bounds a whole multipart body, in memory and
	// on disk (64 MiB).
	DefaultMaxMultipartSize int64 = 64 << 20
)

// ErrorHandler writes the response for a request whose parameters could not
// be parsed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler answers with the status from oaserrors.StatusCode and
// the error text.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, err.Error(), oaserrors.StatusCode(err))
}

// Option is a functional option for configuring the middleware.
type Option func(*config) error

// config holds the configuration for cache construction and request processing.
type config struct {
	logger Logger

	// matchSubPaths is the default for paths that do not declare
	// x-swagger-router-handle-subpaths.
	matchSubPaths bool

	// Resource limits
	maxBodySize        int64
	maxMultipartMemory int64
	maxMultipartSize   int64

	errorHandler ErrorHandler
	registerer   prometheus.Registerer
	parsers      []Parser
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		logger:             NopLogger{},
		matchSubPaths:      true,
		maxBodySize:        DefaultMaxBodySize,
		maxMultipartMemory: DefaultMaxMultipartMemory,
		maxMultipartSize:   DefaultMaxMultipartSize,
		errorHandler:       DefaultErrorHandler,
	}
}

func applyOptions(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.registerer == nil {
		cfg.registerer = prometheus.NewRegistry()
	}
	return cfg, nil
}

// WithLogger sets the logger for cache construction and request processing.
// Default is NopLogger.
func WithLogger(l Logger) Option {
	return func(c *config) error {
		if l == nil {
			return &oaserrors.ConfigError{Option: "WithLogger", Message: "logger cannot be nil"}
		}
		c.logger = l
		return nil
	}
}

// WithMatchSubPaths sets whether request paths with trailing segments below a
// declared template match it. A path item's x-swagger-router-handle-subpaths
// extension takes precedence. Default is true.
func WithMatchSubPaths(match bool) Option {
	return func(c *config) error {
		c.matchSubPaths = match
		return nil
	}
}

// WithMaxBodySize sets the largest JSON, urlencoded or text body accepted.
// Larger bodies fail with a *oaserrors.ResourceLimitError. Default is 100 KiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "WithMaxBodySize", Value: n, Message: "must be positive"}
		}
		c.maxBodySize = n
		return nil
	}
}

// WithMaxMultipartMemory sets the number of bytes of a multipart body kept in
// memory. Default is 32 MiB.
func WithMaxMultipartMemory(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "WithMaxMultipartMemory", Value: n, Message: "must be positive"}
		}
		c.maxMultipartMemory = n
		return nil
	}
}

// WithMaxMultipartSize sets the largest multipart/form-data body accepted,
// counting spooled file parts. Larger bodies fail with a
// *oaserrors.ResourceLimitError. Default is 64 MiB.
func WithMaxMultipartSize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "WithMaxMultipartSize", Value: n, Message: "must be positive"}
		}
		c.maxMultipartSize = n
		return nil
	}
}

// WithErrorHandler sets the handler used by Handler when a request fails to
// parse. Default is DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) error {
		if h == nil {
			return &oaserrors.ConfigError{Option: "WithErrorHandler", Message: "handler cannot be nil"}
		}
		c.errorHandler = h
		return nil
	}
}

// WithRegisterer sets where the middleware registers its Prometheus
// collectors. Default is a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) error {
		if reg == nil {
			return &oaserrors.ConfigError{Option: "WithRegisterer", Message: "registerer cannot be nil"}
		}
		c.registerer = reg
		return nil
	}
}

// WithParsers replaces the built-in parsers of the same kinds.
func WithParsers(parsers ...Parser) Option {
	return func(c *config) error {
		for _, p := range parsers {
			if p == nil {
				return &oaserrors.ConfigError{Option: "WithParsers", Message: "parser cannot be nil"}
			}
			if p.Kind() == ParserNone {
				return &oaserrors.ConfigError{Option: "WithParsers", Value: fmt.Sprintf("%T", p), Message: "parser must declare a kind"}
			}
		}
		c.parsers = append(c.parsers, parsers...)
		return nil
	}
}
