package audiostore

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"parley-go/internal/config"
	"parley-go/internal/parley"
)

// Static S3 credentials, for S3-compatible services outside the AWS credential chain.
const (
	envS3AccessKeyID     = "PARLEY_S3_ACCESS_KEY_ID"
	envS3SecretAccessKey = "PARLEY_S3_SECRET_ACCESS_KEY"
)

// NewAudioStorageFromConfig creates an AudioStorage implementation based on the audio config type.
func NewAudioStorageFromConfig(ctx context.Context, cfg config.AudioConfig) (parley.AudioStorage, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStorage(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem audio storage requires dir to be set")
		}
		s, err := NewFileSystemStorage(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 audio storage requires s3_bucket to be set")
		}
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Storage(client, cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown audio storage type: %s", cfg.Type)
	}
}

func newS3Client(ctx context.Context, cfg config.AudioConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if id, secret := os.Getenv(envS3AccessKeyID), os.Getenv(envS3SecretAccessKey); id != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, secret, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
