package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MediaPrefix is the bucket prefix for uploaded media, which is also the
// path under the public site.
const MediaPrefix = "images/news_images/"

// ObjectPutter is the subset of the S3 API used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the S3 client.
type Options struct {
	Bucket          string
	Region          string
	Endpoint        string // S3-compatible endpoint, empty for AWS
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// MediaStore uploads media files and returns their public URL.
type MediaStore struct {
	api     ObjectPutter
	bucket  string
	baseURL string
	now     func() time.Time
	suffix  func() string
}

// NewS3Client builds an S3 client. Static credentials and a custom endpoint
// are used when given; otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, opts Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func NewMediaStore(api ObjectPutter, bucket, publicBaseURL string) *MediaStore {
	return &MediaStore{
		api:     api,
		bucket:  bucket,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		now:     time.Now,
		suffix:  func() string { return uuid.NewString()[:8] },
	}
}

// ObjectKey returns a fresh key for an uploaded image.
func (m *MediaStore) ObjectKey() string {
	return fmt.Sprintf("%s%d_%s.png", MediaPrefix, m.now().UnixMilli(), m.suffix())
}

// UploadImage stores data under a new key and returns its public URL.
func (m *MediaStore) UploadImage(ctx context.Context, data []byte) (string, error) {
	key := m.ObjectKey()

	_, err := m.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		logger.Get().Error().Err(err).Str("bucket", m.bucket).Str("key", key).Msg("Media upload failed")
		return "", apperr.Connectivity(err, "failed to upload media")
	}

	logger.Get().Info().Str("key", key).Int("bytes", len(data)).Msg("Media uploaded")
	return m.baseURL + "/" + key, nil
}
