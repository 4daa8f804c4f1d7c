package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	v "github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	return p
}

func reset(t *testing.T) {
	t.Helper()

	v.Reset()
	t.Cleanup(v.Reset)
}

func TestLoadDefaults(t *testing.T) {
	reset(t)
	t.Setenv("AUTH_SECRET", "s3cret")

	require.NoError(t, Load(filepath.Join(t.TempDir(), "missing.toml")))

	assert.Equal(t, "info", v.GetString("app.log_level"))
	assert.Equal(t, 8080, v.GetInt("host.port"))
	assert.Equal(t, "fs_session", v.GetString("session.cookie_name"))
	assert.Equal(t, 24*time.Hour, v.GetDuration("session.ttl"))
	assert.Equal(t, "local", v.GetString("storage.type"))
	assert.Equal(t, int64(50<<20), v.GetInt64("upload.max_size"))
	assert.Equal(t, 5*time.Second, v.GetDuration("download.grace_period"))
	assert.Equal(t, "s3cret", v.GetString("auth.secret"))
}

func TestLoadFile(t *testing.T) {
	reset(t)

	p := writeConfig(t, `
[auth]
secret = "abc"

[admin]
emails = ["admin@x.com"]

[upload]
max_size = 2

[download]
grace_period = "10s"
`)

	require.NoError(t, Load(p))

	assert.Equal(t, []string{"admin@x.com"}, v.GetStringSlice("admin.emails"))
	assert.Equal(t, int64(2<<20), v.GetInt64("upload.max_size"))
	assert.Equal(t, 10*time.Second, v.GetDuration("download.grace_period"))
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"no auth key", map[string]string{}},
		{"bad log level", map[string]string{"AUTH_SECRET": "x", "APP_LOG_LEVEL": "loud"}},
		{"bad port", map[string]string{"AUTH_SECRET": "x", "HOST_PORT": "70000"}},
		{"bad driver", map[string]string{"AUTH_SECRET": "x", "DATABASE_DRIVER": "mysql"}},
		{"bad storage", map[string]string{"AUTH_SECRET": "x", "STORAGE_TYPE": "ftp"}},
		{"s3 without bucket", map[string]string{"AUTH_SECRET": "x", "STORAGE_TYPE": "s3"}},
		{"r2 without account", map[string]string{"AUTH_SECRET": "x", "STORAGE_TYPE": "r2", "STORAGE_BUCKET": "b"}},
		{"minio without endpoint", map[string]string{"AUTH_SECRET": "x", "STORAGE_TYPE": "minio", "STORAGE_BUCKET": "b"}},
		{"zero upload size", map[string]string{"AUTH_SECRET": "x", "UPLOAD_MAX_SIZE": "0"}},
		{"ssl without cert", map[string]string{"AUTH_SECRET": "x", "HOST_SSL_ENABLED": "true"}},
		{"staging shorter than grace", map[string]string{"AUTH_SECRET": "x", "DOWNLOAD_STAGING_MAX_AGE": "1s"}},
		{"zero rate limit", map[string]string{"AUTH_SECRET": "x", "SECURITY_RATE_LIMIT": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset(t)
			for k, val := range tt.env {
				t.Setenv(k, val)
			}

			assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.toml")))
		})
	}
}

func TestLoadSplitsListsFromEnv(t *testing.T) {
	reset(t)
	t.Setenv("AUTH_SECRET", "x")
	t.Setenv("ADMIN_EMAILS", "a@x.com, b@x.com,,")
	t.Setenv("HOST_CORS_ORIGINS", "https://a.example,https://b.example")

	require.NoError(t, Load(filepath.Join(t.TempDir(), "missing.toml")))

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, v.GetStringSlice("admin.emails"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, v.GetStringSlice("host.cors_origins"))
}

func TestLoadKeepsListsFromFile(t *testing.T) {
	reset(t)

	p := writeConfig(t, `
[auth]
secret = "abc"

[admin]
emails = ["a@x.com", "b@x.com"]
`)

	require.NoError(t, Load(p))
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, v.GetStringSlice("admin.emails"))
}
