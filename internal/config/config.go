package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultScanWindowLead  = 2 * time.Hour
	defaultScanWindowGrace = 2 * time.Hour
)

type LookupFunc func(key string) (string, bool)

type Secrets struct {
	DatabaseURL   string
	RedisAddr     string
	JWTSigningKey []byte
	GatewayAddr   string
}

// Config holds process-wide settings. Plain settings are read once by Load;
// secrets are read on first use and can be re-read with Refresh.
type Config struct {
	HTTPAddr        string
	ScanWindowLead  time.Duration
	ScanWindowGrace time.Duration
	JaegerEndpoint  string
	LogLevel        logrus.Level

	lookup LookupFunc

	mu      sync.RWMutex
	secrets *Secrets
}

type Option func(*Config)

// WithLookup replaces environment lookup, mostly for tests.
func WithLookup(lookup LookupFunc) Option {
	return func(c *Config) {
		c.lookup = lookup
	}
}

// WithSecrets preloads secrets so they are never read from the environment.
func WithSecrets(s Secrets) Option {
	return func(c *Config) {
		c.secrets = &s
	}
}

func Load(opts ...Option) (*Config, error) {
	c := &Config{
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(c)
	}

	var errs []error

	c.HTTPAddr = c.get("HTTP_ADDR", defaultHTTPAddr)

	lead, err := c.duration("SCAN_WINDOW_LEAD", defaultScanWindowLead)
	errs = append(errs, err)
	c.ScanWindowLead = lead

	grace, err := c.duration("SCAN_WINDOW_GRACE", defaultScanWindowGrace)
	errs = append(errs, err)
	c.ScanWindowGrace = grace

	c.JaegerEndpoint = c.get("JAEGER_ENDPOINT", "")
	if c.JaegerEndpoint == "" {
		if gateway := c.get("GATEWAY_ADDR", ""); gateway != "" {
			c.JaegerEndpoint = fmt.Sprintf("%s/jaeger-api/api/traces", gateway)
		}
	}

	level, err := logrus.ParseLevel(c.get("LOG_LEVEL", "info"))
	errs = append(errs, err)
	c.LogLevel = level

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// Secrets returns the current secrets, loading and validating them on first use.
func (c *Config) Secrets() (Secrets, error) {
	c.mu.RLock()
	s := c.secrets
	c.mu.RUnlock()
	if s != nil {
		return *s, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.secrets != nil {
		return *c.secrets, nil
	}

	loaded, err := c.loadSecrets()
	if err != nil {
		return Secrets{}, err
	}
	c.secrets = &loaded

	return loaded, nil
}

// Refresh re-reads secrets. On failure the previous secrets stay in place.
func (c *Config) Refresh() error {
	loaded, err := c.loadSecrets()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.secrets = &loaded
	c.mu.Unlock()

	return nil
}

func (c *Config) JWTSigningKey() ([]byte, error) {
	s, err := c.Secrets()
	if err != nil {
		return nil, err
	}
	return s.JWTSigningKey, nil
}

func (c *Config) loadSecrets() (Secrets, error) {
	var missing []string
	required := func(keys ...string) string {
		for _, key := range keys {
			if v := c.get(key, ""); v != "" {
				return v
			}
		}
		missing = append(missing, strings.Join(keys, "|"))
		return ""
	}

	s := Secrets{
		DatabaseURL:   required("DATABASE_URL", "POSTGRES_URL"),
		RedisAddr:     required("REDIS_ADDR"),
		JWTSigningKey: []byte(required("JWT_SIGNING_KEY")),
		GatewayAddr:   c.get("GATEWAY_ADDR", ""),
	}

	if len(missing) > 0 {
		return Secrets{}, fmt.Errorf("missing required secrets: %s", strings.Join(missing, ", "))
	}
	if len(s.JWTSigningKey) < 32 {
		return Secrets{}, fmt.Errorf("JWT_SIGNING_KEY must be at least 32 bytes")
	}

	return s, nil
}

func (c *Config) get(key, fallback string) string {
	if v, ok := c.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (c *Config) duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := c.get(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return fallback, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
