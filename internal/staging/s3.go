// Package staging uploads warehouse load files to the S3 staging
// bucket consumed by the bulk COPY path.
package staging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/inkwell-labs/bookmetrics/internal/config"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader stages CSV files into the configured bucket.
type Uploader struct {
	bucket string
	api    s3API
}

// NewUploader builds an S3-backed uploader from the staging config.
// Static credentials and a custom endpoint are optional; the default
// AWS credential chain applies otherwise.
func NewUploader(ctx context.Context, cfg config.StagingConfig) (*Uploader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{bucket: cfg.Bucket, api: client}, nil
}

// NewUploaderWithAPI wires a custom API implementation; used by tests.
func NewUploaderWithAPI(bucket string, api s3API) *Uploader {
	return &Uploader{bucket: bucket, api: api}
}

// Upload puts body under key and returns the s3:// URI the COPY
// command references.
func (u *Uploader) Upload(ctx context.Context, key string, body []byte) (string, error) {
	_, err := u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", u.bucket, key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	slog.Info("[Staging] Uploaded file", "uri", uri, "bytes", len(body))
	return uri, nil
}
