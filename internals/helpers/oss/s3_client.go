// file: internals/helpers/oss/s3_client.go
package helper

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

/* =======================================================================
   S3-compatible gateway (Cloudflare R2, AWS S3, MinIO)
======================================================================= */

type S3Config struct {
	Endpoint   string // host[:port], tanpa skema. R2: <account>.r2.cloudflarestorage.com
	Region     string // R2: "auto"
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string // wajib untuk R2 (custom domain / r2.dev)
	UseSSL     bool
}

type S3Service struct {
	Client     *minio.Client
	BucketName string
	PublicBase string
}

var _ Gateway = (*S3Service)(nil)

func NewS3Service(ctx context.Context, cfg S3Config, log *zap.Logger) (*S3Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("missing config: S3_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}
	if log == nil {
		log = zap.NewNop()
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %w", err)
	}

	ok, err := client.BucketExists(ctx, cfg.Bucket)
	switch {
	case err != nil:
		// R2 token scoped ke object saja bisa ditolak di level bucket
		log.Warn("s3: skip bucket check", zap.String("bucket", cfg.Bucket), zap.Error(err))
	case !ok:
		return nil, fmt.Errorf("bucket %s not found", cfg.Bucket)
	default:
		log.Info("s3: bucket ready", zap.String("bucket", cfg.Bucket), zap.String("endpoint", endpoint))
	}

	return &S3Service{
		Client:     client,
		BucketName: cfg.Bucket,
		PublicBase: strings.TrimSpace(cfg.PublicBase),
	}, nil
}

func (s *S3Service) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if size <= 0 {
		size = -1
	}
	_, err := s.Client.PutObject(ctx, s.BucketName, key, r, size, minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: "inline",
		CacheControl:       cacheForever,
	})
	return err
}

func (s *S3Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.Client.RemoveObject(ctx, s.BucketName, key, minio.RemoveObjectOptions{})
}

func (s *S3Service) PublicURL(key string) string {
	if s.PublicBase != "" {
		return JoinPublicURL(s.PublicBase, key)
	}
	if key == "" {
		return ""
	}
	return JoinPublicURL(s.Client.EndpointURL().String()+"/"+s.BucketName, key)
}
