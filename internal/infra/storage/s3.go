package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Prefix       string
	UsePathStyle bool
}

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Reader reads objects from an S3-compatible bucket.
type S3Reader struct {
	client objectGetter
	bucket string
	prefix string
	logger *zap.Logger
}

type S3ReaderOption func(*S3Reader)

func WithLogger(logger *zap.Logger) S3ReaderOption {
	return func(r *S3Reader) {
		r.logger = logger
	}
}

func NewS3Reader(ctx context.Context, cfg S3Config, opts ...S3ReaderOption) (*S3Reader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newS3Reader(client, cfg.Bucket, cfg.Prefix, opts...), nil
}

func newS3Reader(client objectGetter, bucket, prefix string, opts ...S3ReaderOption) *S3Reader {
	r := &S3Reader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *S3Reader) Read(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimLeft(strings.TrimSpace(ref), "/")
	if ref == "" {
		return nil, ErrNotFound
	}

	key := ref
	if r.prefix != "" {
		key = path.Join(r.prefix, ref)
	}

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	r.logger.Debug("collateral fetched", zap.String("key", key), zap.Int("bytes", len(data)))
	return data, nil
}
