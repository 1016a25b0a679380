package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useEnvFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("ENV_FILE", path)

	// godotenv sets what the file holds; unset it again afterwards
	for _, line := range strings.Split(content, "\n") {
		key, _, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(key); !set {
			t.Cleanup(func() { _ = os.Unsetenv(key) })
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "sportfed.db", cfg.DBDatabase)
	assert.Equal(t, "jwt", cfg.AuthProvider)
	assert.Equal(t, 5*time.Minute, cfg.RoleCacheTTL)
	assert.Equal(t, 10, cfg.DBConnectionLimit)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadFromEnvFile(t *testing.T) {
	useEnvFile(t, "PORT=8080\nDB_TYPE=postgres\nDB_DATABASE=sportfed\nAUTH_JWT_SECRET=from-file\nROLE_CACHE_TTL=90s\nALLOWED_ORIGIN=https://a.example, https://b.example\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 90*time.Second, cfg.RoleCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestEnvironmentOverridesEnvFile(t *testing.T) {
	useEnvFile(t, "PORT=8080\nAUTH_JWT_SECRET=from-file\n")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"jwt without key":           {"AUTH_PROVIDER": "jwt"},
		"unknown db type":           {"DB_TYPE": "oracle", "AUTH_JWT_SECRET": "s"},
		"unknown auth provider":     {"AUTH_PROVIDER": "ldap"},
		"authorizer without url":    {"AUTH_PROVIDER": "authorizer", "AUTHZ_CLIENT_ID": "id"},
		"non numeric port":          {"PORT": "http", "AUTH_JWT_SECRET": "s"},
		"unknown log level":         {"LOG_LEVEL": "loud", "AUTH_JWT_SECRET": "s"},
		"authorizer without client": {"AUTH_PROVIDER": "authorizer", "AUTHZ_URL": "https://authz.example"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadAuthorizer(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("AUTH_PROVIDER", "authorizer")
	t.Setenv("AUTHZ_URL", "https://authz.example")
	t.Setenv("AUTHZ_CLIENT_ID", "client")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "authorizer", cfg.AuthProvider)
}

func TestGetEnvHelpersFallBack(t *testing.T) {
	t.Setenv("SPORTFED_TEST_INT", "nope")
	t.Setenv("SPORTFED_TEST_DURATION", "later")

	assert.Equal(t, 3, getEnvAsInt("SPORTFED_TEST_INT", 3))
	assert.Equal(t, time.Second, getEnvAsDuration("SPORTFED_TEST_DURATION", time.Second))
	assert.Equal(t, "x", getEnv("SPORTFED_TEST_UNSET", "x"))
}
