package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	cfg "github.com/aoe2league/recbot/internal/config"
)

const (
	putTimeout  = 30 * time.Second
	headTimeout = 10 * time.Second
	listTimeout = 30 * time.Second
)

// S3Gateway implements Gateway for S3-compatible storage.
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type S3Gateway struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

// NewS3Gateway creates a gateway bound to the configured bucket. Static
// credentials are used when provided, otherwise the default AWS chain.
func NewS3Gateway(ctx context.Context, c cfg.StorageConfig, log *slog.Logger) (*S3Gateway, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "s3"))
	log.Info("initializing object store",
		slog.String("bucket", c.Bucket),
		slog.String("region", c.Region),
		slog.String("endpoint", c.Endpoint),
	)

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(c.Region))
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var client *s3.Client
	if c.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true // required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	gw := &S3Gateway{
		client: client,
		bucket: c.Bucket,
		logger: log,
	}

	// Fail fast at startup when the bucket is unreachable.
	headCtx, cancel := context.WithTimeout(ctx, headTimeout)
	defer cancel()
	if _, err := client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(c.Bucket)}); err != nil {
		return nil, fmt.Errorf("bucket %q not accessible: %w", c.Bucket, err)
	}
	return gw, nil
}

// Put stores the object bytes at key.
func (g *S3Gateway) Put(ctx context.Context, key string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, putTimeout)
	defer cancel()

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrGatewayUnavailable, key, err)
	}
	return nil
}

// Exists reports whether an object is stored at key.
func (g *S3Gateway) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, headTimeout)
	defer cancel()

	_, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("%w: head %s: %v", ErrGatewayUnavailable, key, err)
}

// Delete removes the object at key.
func (g *S3Gateway) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, headTimeout)
	defer cancel()

	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrGatewayUnavailable, key, err)
	}
	return nil
}

// List returns all object keys under prefix, following pagination.
func (g *S3Gateway) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %v", ErrGatewayUnavailable, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}
