package app

import (
	a "bitwise74/file-share/aws"
	"bitwise74/file-share/cloudflare"
	"bitwise74/file-share/db"
	"bitwise74/file-share/internal"
	"bitwise74/file-share/internal/blob"
	"bitwise74/file-share/internal/service"
	"bitwise74/file-share/internal/session"
	"bitwise74/file-share/pkg/security"
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// NewDeps builds every dependency from the loaded config
func NewDeps(ctx context.Context) (*internal.Deps, error) {
	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	verifier, err := newVerifier()
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage, %w", err)
	}

	staging, err := service.NewStaging(afero.NewOsFs(), viper.GetString("download.staging_dir"))
	if err != nil {
		return nil, err
	}

	return internal.NewDeps(conn, verifier, blobs, staging, internal.Config{
		SessionTTL:    viper.GetDuration("session.ttl"),
		CookieName:    viper.GetString("session.cookie_name"),
		SecureCookies: viper.GetBool("host.ssl.enabled"),
		BaseURL:       viper.GetString("host.base_url"),
		AdminEmails:   viper.GetStringSlice("admin.emails"),
		GracePeriod:   viper.GetDuration("download.grace_period"),
		MaxUploadSize: viper.GetInt64("upload.max_size"),
		RateLimit:     viper.GetInt("security.rate_limit"),
	}), nil
}

func newVerifier() (session.Verifier, error) {
	issuer := viper.GetString("auth.issuer")
	audience := viper.GetString("auth.audience")

	if p := viper.GetString("auth.public_key_path"); p != "" {
		pem, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read auth public key, %w", err)
		}

		return security.NewRSAVerifier(pem, issuer, audience)
	}

	return security.NewHMACVerifier([]byte(viper.GetString("auth.secret")), issuer, audience), nil
}

func newBlobStore(ctx context.Context) (blob.Store, error) {
	switch t := viper.GetString("storage.type"); t {
	case "s3":
		c, err := a.NewS3(ctx)
		if err != nil {
			return nil, err
		}
		return blob.NewS3Store(c), nil
	case "r2":
		c, err := cloudflare.NewR2(ctx)
		if err != nil {
			return nil, err
		}
		return blob.NewS3Store(c), nil
	case "minio":
		return blob.NewMinioStore(ctx)
	case "local":
		return blob.NewDiskStore(viper.GetString("storage.local_path"))
	default:
		return nil, fmt.Errorf("unsupported storage type '%s'", t)
	}
}
