// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath = pflag.String("config", "config.toml", "Path to the config file")

	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "r2", "minio", "local"}
	validDrivers      = []string{"sqlite", "postgres"}
)

var envKeys = []string{
	"app.log_level",

	"host.port",
	"host.base_url",
	"host.cors_origins",
	"host.ssl.enabled",
	"host.ssl.certificate_path",
	"host.ssl.certificate_key_path",

	"auth.secret",
	"auth.public_key_path",
	"auth.issuer",
	"auth.audience",

	"session.cookie_name",
	"session.ttl",

	"admin.emails",

	"database.driver",
	"database.dsn",

	"storage.type",
	"storage.bucket",
	"storage.local_path",

	"aws.access_key_id",
	"aws.secret_access_key",
	"aws.region",
	"aws.endpoint",
	"aws.path_style",

	"cloudflare.account_id",
	"cloudflare.access_key_id",
	"cloudflare.secret_access_key",

	"minio.endpoint",
	"minio.access_key",
	"minio.secret_key",

	"upload.max_size",

	"download.grace_period",
	"download.staging_dir",
	"download.staging_max_age",
	"download.sweep_interval",

	"security.rate_limit",
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	return Load(*configPath)
}

// Load reads the config file at path, if there is one, on top of the defaults
// and the environment. Every key can be set from the environment by upper
// casing it and replacing dots with underscores, e.g. AUTH_SECRET.
func Load(path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	//
	// ENVS
	//
	for _, k := range envKeys {
		v.BindEnv(k)
	}

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.base_url", "http://localhost:8080")
	v.SetDefault("host.cors_origins", []string{})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("session.cookie_name", "fs_session")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("admin.emails", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")

	v.SetDefault("aws.region", "us-east-1")

	v.SetDefault("upload.max_size", 50)

	v.SetDefault("download.grace_period", 5*time.Second)
	v.SetDefault("download.staging_dir", filepath.Join(os.TempDir(), "file-share-staging"))
	v.SetDefault("download.staging_max_age", time.Hour)
	v.SetDefault("download.sweep_interval", 15*time.Minute)

	v.SetDefault("security.rate_limit", 20)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Printf("[WARNING]: No config file found at %s, using defaults and environment variables\n", path)
	}

	normaliseList("admin.emails")
	normaliseList("host.cors_origins")

	if err := validate(); err != nil {
		return err
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

// normaliseList accepts both real lists and comma separated strings, which is
// what environment variables give us
func normaliseList(key string) {
	out := []string{}
	for _, e := range v.GetStringSlice(key) {
		for _, part := range strings.Split(e, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	v.Set(key, out)
}

func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if p := v.GetInt("host.port"); p <= 0 || p > 65535 {
		return errors.New("invalid port provided")
	}

	if v.GetString("host.base_url") == "" {
		return errors.New("host.base_url can't be empty")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if v.GetString("auth.secret") == "" && v.GetString("auth.public_key_path") == "" {
		return errors.New("either auth.secret or auth.public_key_path must be set")
	}

	if v.GetString("session.cookie_name") == "" {
		return errors.New("session.cookie_name can't be empty")
	}

	if v.GetDuration("session.ttl") <= 0 {
		return errors.New("session.ttl must be bigger than 0")
	}

	if len(v.GetStringSlice("admin.emails")) == 0 {
		fmt.Println("[WARNING]: No admin.emails configured, the admin listings will be unreachable")
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database.dsn can't be empty")
	}

	if err := validateStorage(); err != nil {
		return err
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetDuration("download.grace_period") <= 0 {
		return errors.New("download.grace_period must be bigger than 0")
	}

	if v.GetString("download.staging_dir") == "" {
		return errors.New("download.staging_dir can't be empty")
	}

	if v.GetDuration("download.staging_max_age") < v.GetDuration("download.grace_period") {
		return errors.New("download.staging_max_age can't be shorter than download.grace_period")
	}

	if v.GetDuration("download.sweep_interval") <= 0 {
		return errors.New("download.sweep_interval must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	return nil
}

func validateStorage() error {
	t := v.GetString("storage.type")
	if !slices.Contains(validStorageTypes, t) {
		return errors.New("invalid storage type provided")
	}

	required := map[string][]string{
		"s3":    {"storage.bucket", "aws.access_key_id", "aws.secret_access_key", "aws.region"},
		"r2":    {"storage.bucket", "cloudflare.account_id", "cloudflare.access_key_id", "cloudflare.secret_access_key"},
		"minio": {"storage.bucket", "minio.endpoint", "minio.access_key", "minio.secret_key"},
		"local": {"storage.local_path"},
	}

	for _, k := range required[t] {
		if v.GetString(k) == "" {
			return fmt.Errorf("%s can't be empty when using %s storage", k, t)
		}
	}

	return nil
}
