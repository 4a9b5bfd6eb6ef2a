// Package config declares httpcored's configuration surface: one field
// per tunable, bound to a command-line flag, optionally overridden by a
// YAML file, and validated as a whole before the server starts.
package config

import (
	"flag"
	"fmt"
	"io/ioutil"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	defaultAddress            = ":8443"
	defaultMaxRequestBody     = 10 << 20 // 10MiB
	defaultMaxAggregatedBody  = 2 << 20  // 2MiB
	defaultInitialWindowSize  = 65535
	defaultRouteCacheSize     = 4096
	defaultShutdownTimeout    = 20 * time.Second
	defaultShutdownQuietTime  = 5 * time.Second
	defaultApplicationLogLvl  = "info"
	defaultIdleTimeout        = 90 * time.Second
	defaultExpectContinueWait = 1 * time.Second
)

// Config is httpcored's full configuration surface. Every field except
// MaxConcurrentStreams (settable only from the YAML file) binds to a
// flag of the same shape; ConfigFile, when set, is parsed as YAML
// and overlaid on top of the flag defaults before flags are re-applied,
// so an explicit flag always wins over the file.
type Config struct {
	ConfigFile string

	// generic:
	Address              string `yaml:"address"`
	CertFile             string `yaml:"tls-cert"`
	KeyFile              string `yaml:"tls-key"`
	MaxRequestBody       int64  `yaml:"max-request-body"`
	MaxAggregatedBody    int64  `yaml:"max-aggregated-body"`
	InitialWindowSize    int    `yaml:"initial-window-size"`
	RouteCacheSize       int    `yaml:"route-cache-size"`
	IgnoreTrailingSlash  bool   `yaml:"ignore-trailing-slash"`
	MaxConcurrentStreams uint32 `yaml:"max-concurrent-streams"`

	IdleTimeout        time.Duration `yaml:"idle-timeout"`
	ExpectContinueWait time.Duration `yaml:"expect-continue-wait"`
	ShutdownTimeout    time.Duration `yaml:"shutdown-timeout"`
	ShutdownQuietTime  time.Duration `yaml:"shutdown-quiet-time"`

	// blocking dispatch pool:
	BlockingPoolSize  int `yaml:"blocking-pool-size"`
	BlockingPoolQueue int `yaml:"blocking-pool-queue"`

	// logging, metrics:
	EnablePrometheusMetrics bool   `yaml:"enable-prometheus-metrics"`
	MetricsListener         string `yaml:"metrics-listener"`
	ApplicationLogLevel     string `yaml:"application-log-level"`
	AccessLogDisabled       bool   `yaml:"access-log-disabled"`
}

// New returns a Config with defaults bound to a flag.FlagSet, mirroring
// the project's field-per-option convention: one flag.*Var call per
// field, named after its yaml tag. MaxConcurrentStreams has no flag.
func New() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ConfigFile, "config-file", "", "path to a YAML config file overlaid on the flag defaults")
	flag.StringVar(&cfg.Address, "address", defaultAddress, "address to listen on")
	flag.StringVar(&cfg.CertFile, "tls-cert", "", "TLS certificate file (required for HTTP/2)")
	flag.StringVar(&cfg.KeyFile, "tls-key", "", "TLS key file (required for HTTP/2)")
	flag.Int64Var(&cfg.MaxRequestBody, "max-request-body", defaultMaxRequestBody, "maximum accepted request body size in bytes")
	flag.Int64Var(&cfg.MaxAggregatedBody, "max-aggregated-body", defaultMaxAggregatedBody, "maximum size in bytes the aggregator will buffer")
	flag.IntVar(&cfg.InitialWindowSize, "initial-window-size", defaultInitialWindowSize, "HTTP/2 initial flow-control window size in bytes")
	flag.IntVar(&cfg.RouteCacheSize, "route-cache-size", defaultRouteCacheSize, "maximum number of entries kept in the route match cache")
	flag.BoolVar(&cfg.IgnoreTrailingSlash, "ignore-trailing-slash", false, "treat a trailing slash as insignificant when matching routes")
	flag.DurationVar(&cfg.IdleTimeout, "idle-timeout", defaultIdleTimeout, "connection idle timeout")
	flag.DurationVar(&cfg.ExpectContinueWait, "expect-continue-wait", defaultExpectContinueWait, "how long to wait for a request body after sending a 100-continue")
	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", defaultShutdownTimeout, "maximum time graceful shutdown waits before a forced close")
	flag.DurationVar(&cfg.ShutdownQuietTime, "shutdown-quiet-time", defaultShutdownQuietTime, "quiet period between GOAWAY and forced close")
	flag.IntVar(&cfg.BlockingPoolSize, "blocking-pool-size", 64, "number of workers in the blocking-handler dispatch pool")
	flag.IntVar(&cfg.BlockingPoolQueue, "blocking-pool-queue", 256, "bounded queue depth in front of the blocking-handler dispatch pool")
	flag.BoolVar(&cfg.EnablePrometheusMetrics, "enable-prometheus-metrics", false, "serve Prometheus metrics")
	flag.StringVar(&cfg.MetricsListener, "metrics-listener", ":9911", "address the metrics endpoint listens on")
	flag.StringVar(&cfg.ApplicationLogLevel, "application-log-level", defaultApplicationLogLvl, "logrus level name")
	flag.BoolVar(&cfg.AccessLogDisabled, "access-log-disabled", false, "disable the access log decorator")

	return cfg
}

// Parse parses the process's command-line flags, then — if a config
// file was named — overlays YAML onto the struct and re-applies the
// flags so an explicit flag still takes precedence over the file.
func (c *Config) Parse() error {
	flag.Parse()

	if len(flag.Args()) != 0 {
		return fmt.Errorf("invalid arguments: %v", flag.Args())
	}

	if c.ConfigFile != "" {
		raw, err := ioutil.ReadFile(c.ConfigFile)
		if err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return fmt.Errorf("unmarshalling config file: %w", err)
		}
		flag.Parse()
	}

	if _, err := log.ParseLevel(c.ApplicationLogLevel); err != nil {
		return fmt.Errorf("invalid application-log-level: %w", err)
	}

	return c.Validate()
}

// Validate enforces the cross-field invariants a flag.FlagSet can't
// express on its own.
func (c *Config) Validate() error {
	if c.MaxAggregatedBody > c.MaxRequestBody {
		return fmt.Errorf("max-aggregated-body (%d) cannot exceed max-request-body (%d)", c.MaxAggregatedBody, c.MaxRequestBody)
	}
	if c.ShutdownQuietTime > c.ShutdownTimeout {
		return fmt.Errorf("shutdown-quiet-time (%s) cannot exceed shutdown-timeout (%s)", c.ShutdownQuietTime, c.ShutdownTimeout)
	}
	if c.InitialWindowSize <= 0 {
		return fmt.Errorf("initial-window-size must be positive, got %d", c.InitialWindowSize)
	}
	if c.RouteCacheSize < 0 {
		return fmt.Errorf("route-cache-size cannot be negative, got %d", c.RouteCacheSize)
	}
	if c.BlockingPoolSize <= 0 {
		return fmt.Errorf("blocking-pool-size must be positive, got %d", c.BlockingPoolSize)
	}
	if c.BlockingPoolQueue < 0 {
		return fmt.Errorf("blocking-pool-queue cannot be negative, got %d", c.BlockingPoolQueue)
	}
	return nil
}
