// Package cloudflare provides a client for Cloudflare's R2 object storage
package cloudflare

import (
	a "bitwise74/file-share/aws"
	"context"
	"fmt"

	"github.com/spf13/viper"
)

// R2Endpoint returns the account scoped S3 endpoint of R2
func R2Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// NewR2 connects to the R2 bucket configured under cloudflare.*. R2 speaks the
// S3 protocol so the regular S3 client is returned.
func NewR2(ctx context.Context) (*a.S3Client, error) {
	return a.NewS3WithOptions(ctx, a.S3Options{
		AccessKeyID:     viper.GetString("cloudflare.access_key_id"),
		SecretAccessKey: viper.GetString("cloudflare.secret_access_key"),
		Region:          "auto",
		Bucket:          viper.GetString("storage.bucket"),
		Endpoint:        R2Endpoint(viper.GetString("cloudflare.account_id")),
	})
}
