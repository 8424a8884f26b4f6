package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader publishes finished renders to object storage.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// objectPutter is the slice of the S3 API the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader implements Uploader against S3-compatible object storage.
type S3Uploader struct {
	client objectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// Option configures the uploader.
type Option func(*S3Uploader)

// WithClient injects a custom S3 client (primarily for tests).
func WithClient(client objectPutter) Option {
	return func(u *S3Uploader) {
		if client != nil {
			u.client = client
		}
	}
}

// WithLogger attaches a logger for upload diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(u *S3Uploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// New constructs an S3Uploader for the given bucket. The ambient AWS
// configuration chain supplies credentials and endpoint; region overrides
// the chain when non-empty.
func New(ctx context.Context, bucket, prefix, region string, opts ...Option) (*S3Uploader, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("delivery bucket required")
	}

	uploader := &S3Uploader{
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(uploader)
	}

	if uploader.client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{}
		if region = strings.TrimSpace(region); region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		uploader.client = s3.NewFromConfig(cfg)
	}
	return uploader, nil
}

// Upload puts localPath into the bucket under the configured prefix and
// returns the object key. Delivery is best-effort from the pipeline's view:
// the caller logs failures and the run still completes.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open render: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat render: %w", err)
	}

	key := filepath.Base(localPath)
	if u.prefix != "" {
		key = path.Join(u.prefix, key)
	}

	u.logger.Info("uploading render",
		"bucket", u.bucket,
		"key", key,
		"size_bytes", info.Size(),
	)

	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
	}); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

var _ Uploader = (*S3Uploader)(nil)
