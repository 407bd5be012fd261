package config_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekeeper/internal/config"
)

type fakeEnv struct {
	lock sync.Mutex
	vars map[string]string
}

func (e *fakeEnv) Lookup(key string) (string, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()

	v, ok := e.vars[key]
	return v, ok
}

func (e *fakeEnv) Set(key, value string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.vars[key] = value
}

var signingKey = strings.Repeat("k", 32)

func TestLoad_Defaults(t *testing.T) {
	env := &fakeEnv{vars: map[string]string{}}

	cfg, err := config.Load(config.WithLookup(env.Lookup))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Hour, cfg.ScanWindowLead)
	assert.Equal(t, 2*time.Hour, cfg.ScanWindowGrace)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.JaegerEndpoint)
}

func TestLoad_Overrides(t *testing.T) {
	env := &fakeEnv{vars: map[string]string{
		"HTTP_ADDR":         ":9090",
		"SCAN_WINDOW_LEAD":  "90m",
		"SCAN_WINDOW_GRACE": "0s",
		"GATEWAY_ADDR":      "http://gateway",
		"LOG_LEVEL":         "debug",
	}}

	cfg, err := config.Load(config.WithLookup(env.Lookup))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 90*time.Minute, cfg.ScanWindowLead)
	assert.Equal(t, time.Duration(0), cfg.ScanWindowGrace)
	assert.Equal(t, "http://gateway/jaeger-api/api/traces", cfg.JaegerEndpoint)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	env := &fakeEnv{vars: map[string]string{
		"SCAN_WINDOW_LEAD":  "soon",
		"SCAN_WINDOW_GRACE": "-1h",
	}}

	_, err := config.Load(config.WithLookup(env.Lookup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCAN_WINDOW_LEAD")
	assert.Contains(t, err.Error(), "SCAN_WINDOW_GRACE")
}

func TestSecrets_LoadedOnFirstUse(t *testing.T) {
	env := &fakeEnv{vars: map[string]string{}}

	cfg, err := config.Load(config.WithLookup(env.Lookup))
	require.NoError(t, err, "secrets must not be required to load plain settings")

	_, err = cfg.Secrets()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL|POSTGRES_URL")
	assert.Contains(t, err.Error(), "REDIS_ADDR")
	assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")

	env.Set("POSTGRES_URL", "postgres://localhost/db")
	env.Set("REDIS_ADDR", "localhost:6379")
	env.Set("JWT_SIGNING_KEY", signingKey)

	secrets, err := cfg.Secrets()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/db", secrets.DatabaseURL)
	assert.Equal(t, []byte(signingKey), secrets.JWTSigningKey)
}

func TestSecrets_Refresh(t *testing.T) {
	env := &fakeEnv{vars: map[string]string{
		"DATABASE_URL":    "postgres://localhost/db",
		"REDIS_ADDR":      "localhost:6379",
		"JWT_SIGNING_KEY": signingKey,
	}}

	cfg, err := config.Load(config.WithLookup(env.Lookup))
	require.NoError(t, err)

	key, err := cfg.JWTSigningKey()
	require.NoError(t, err)
	assert.Equal(t, []byte(signingKey), key)

	rotated := strings.Repeat("r", 40)
	env.Set("JWT_SIGNING_KEY", rotated)

	key, err = cfg.JWTSigningKey()
	require.NoError(t, err)
	assert.Equal(t, []byte(signingKey), key, "secrets are cached until refreshed")

	require.NoError(t, cfg.Refresh())

	key, err = cfg.JWTSigningKey()
	require.NoError(t, err)
	assert.Equal(t, []byte(rotated), key)

	env.Set("JWT_SIGNING_KEY", "short")
	require.Error(t, cfg.Refresh())

	key, err = cfg.JWTSigningKey()
	require.NoError(t, err)
	assert.Equal(t, []byte(rotated), key, "failed refresh keeps the previous secrets")
}

func TestWithSecrets(t *testing.T) {
	cfg, err := config.Load(
		config.WithLookup(func(string) (string, bool) { return "", false }),
		config.WithSecrets(config.Secrets{JWTSigningKey: []byte(signingKey)}),
	)
	require.NoError(t, err)

	key, err := cfg.JWTSigningKey()
	require.NoError(t, err)
	assert.Equal(t, []byte(signingKey), key)
}
