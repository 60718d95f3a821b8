package config

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrStorageDisabled is returned when no bucket is configured
var ErrStorageDisabled = errors.New("image storage is not configured")

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client        *s3.Client
	BucketName    string
	PublicBaseURL string
}

// NewS3Config initializes the S3 client for the recipe image bucket
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if cfg.S3Bucket == "" {
		return nil, ErrStorageDisabled
	}

	// Load AWS config from environment or shared config
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			// MinIO and other S3-compatible stores
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.S3PublicBaseURL
	if base == "" {
		base = "https://" + cfg.S3Bucket + ".s3." + cfg.S3Region + ".amazonaws.com"
	}

	return &S3Config{
		Client:        client,
		BucketName:    cfg.S3Bucket,
		PublicBaseURL: strings.TrimRight(base, "/"),
	}, nil
}

// ObjectURL returns the public URL of an object key
func (s *S3Config) ObjectURL(key string) string {
	return s.PublicBaseURL + "/" + strings.TrimLeft(key, "/")
}
