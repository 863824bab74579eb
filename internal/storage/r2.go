package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/OpreaAngel-Freelance/oil/internal/backoff"
	"github.com/OpreaAngel-Freelance/oil/internal/metrics"
	"github.com/OpreaAngel-Freelance/oil/pkg/config"
	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

// Client hands out pre-signed upload URLs and deletes stored objects.
type Client interface {
	GetUploadURL(ctx context.Context, key string, metadata map[string]string) (*domain.UploadURLResponse, error)
	DeleteFile(ctx context.Context, key string) error
}

// R2Client talks to Cloudflare R2 through its S3-compatible API. Uploads
// never pass through this service; clients PUT directly to the signed URL.
type R2Client struct {
	s3        *s3.Client
	presigner *s3.PresignClient
	logger    *slog.Logger

	bucket    string
	publicURL string
	expiry    time.Duration
	retry     backoff.Policy
}

func NewR2Client(ctx context.Context, cfg config.R2, logger *slog.Logger) (*R2Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})
	return &R2Client{
		s3:        client,
		presigner: s3.NewPresignClient(client),
		logger:    logger,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		expiry:    time.Duration(cfg.PresignExpirySeconds) * time.Second,
		retry: backoff.Exponential(cfg.RetryMaxAttempts,
			time.Duration(cfg.RetryBaseSeconds)*time.Second,
			time.Duration(cfg.RetryMaxSeconds)*time.Second),
	}, nil
}

// NormalizeKey forces keys into the uploads/ prefix and generates a random
// key when none is given.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "uploads/" + uuid.NewString()
	}
	if !strings.HasPrefix(key, "uploads/") {
		return "uploads/" + key
	}
	return key
}

func (c *R2Client) GetUploadURL(ctx context.Context, key string, metadata map[string]string) (*domain.UploadURLResponse, error) {
	key = NormalizeKey(key)

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}
	if ct, ok := metadata["content-type"]; ok && ct != "" {
		input.ContentType = aws.String(ct)
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}

	var signed *v4.PresignedHTTPRequest
	attempt := 0
	err := backoff.Retry(ctx, c.retry, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.PresignRetriesTotal.Inc()
			c.logger.Warn("retrying presign", "key", key, "attempt", attempt)
		}
		req, err := c.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(c.expiry))
		if err != nil {
			return err
		}
		signed = req
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("presign upload url: %w", err)
	}

	return &domain.UploadURLResponse{
		URL:       signed.URL,
		Method:    signed.Method,
		Key:       key,
		Metadata:  metadata,
		ExpiresIn: int(c.expiry / time.Second),
		PublicURL: c.publicURL + "/" + key,
	}, nil
}

func (c *R2Client) DeleteFile(ctx context.Context, key string) error {
	err := backoff.Retry(ctx, c.retry, func(ctx context.Context) error {
		_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}
