package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config describes an S3-compatible document backend. BaseEndpoint is
// optional and supports MinIO-style deployments.
type S3Config struct {
	Region       string
	Bucket       string
	KeyPrefix    string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// S3Storage keeps uploaded evidence files in an object bucket, mirroring the
// same unit/year/month key layout the local backend uses on disk. It covers
// the remote-drive deployment variant where operators share one store.
type S3Storage struct {
	client *s3.Client
	bucket string
	prefix string
	region string
	url    string
}

// NewS3Storage builds the client from static credentials and validates the
// bucket name is present.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("documents: s3 bucket is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.KeyPrefix, "/"),
		region: cfg.Region,
		url:    strings.TrimRight(cfg.BaseEndpoint, "/"),
	}, nil
}

func (s *S3Storage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3Storage) location(key string) string {
	if s.url != "" {
		return fmt.Sprintf("%s/%s/%s", s.url, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	objectKey := s.objectKey(key)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func (s *S3Storage) Save(ctx context.Context, key string, source io.Reader) (string, error) {
	objectKey := s.objectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   source,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return s.location(objectKey), nil
}

// EnsureDir is a no-op for object stores; the prefix location is returned
// for symmetry with the filesystem backend.
func (s *S3Storage) EnsureDir(_ context.Context, dir string) (string, error) {
	return s.location(s.objectKey(dir)), nil
}
