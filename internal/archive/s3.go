// Package archive backs up the SQLite database to S3-compatible object
// storage. Snapshots are zstd-compressed and uploaded on a fixed schedule;
// a fresh instance can restore the latest snapshot before opening the
// database.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/klauspost/compress/zstd"
)

// ErrNotFound is returned when no snapshot object exists.
var ErrNotFound = errors.New("archive: object not found")

// StoreConfig holds object storage credentials.
type StoreConfig struct {
	Endpoint    string // Custom endpoint for R2/MinIO, empty for AWS
	Region      string
	AccessKeyID string
	SecretKey   string
	Bucket      string
}

// ObjectStore wraps the S3 API for snapshot objects.
type ObjectStore struct {
	s3     *s3.Client
	bucket string
}

// NewObjectStore creates an S3-backed object store.
func NewObjectStore(ctx context.Context, cfg StoreConfig) (*ObjectStore, error) {
	if cfg.AccessKeyID == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("archive: access key, secret key, and bucket are required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// R2 and MinIO resolve buckets by path, not subdomain.
			o.UsePathStyle = true
		}
	})

	return &ObjectStore{s3: client, bucket: cfg.Bucket}, nil
}

// Upload stores an object and returns its ETag.
func (o *ObjectStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := o.s3.PutObject(ctx, input)
	if err != nil {
		return "", fmt.Errorf("archive: upload %q: %w", key, err)
	}
	return trimETag(result.ETag), nil
}

// Download retrieves an object. The caller must close the body.
func (o *ObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := o.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("archive: download %q: %w", key, err)
	}
	return result.Body, trimETag(result.ETag), nil
}

// Head returns an object's ETag without downloading the body.
func (o *ObjectStore) Head(ctx context.Context, key string) (string, error) {
	result, err := o.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("archive: head %q: %w", key, err)
	}
	return trimETag(result.ETag), nil
}

func trimETag(etag *string) string {
	if etag == nil {
		return ""
	}
	return strings.Trim(*etag, "\"")
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}
	return false
}

// CompressFile writes a zstd-compressed copy of srcPath to dstPath.
func CompressFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("archive: open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("archive: create dest: %w", err)
	}
	defer dst.Close()

	encoder, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("archive: create encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		_ = encoder.Close()
		return fmt.Errorf("archive: compress: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("archive: close encoder: %w", err)
	}
	return nil
}

// DecompressStream streams a zstd-compressed reader into dstPath.
func DecompressStream(r io.Reader, dstPath string) error {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("archive: create decoder: %w", err)
	}
	defer decoder.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("archive: create dest: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, decoder); err != nil {
		return fmt.Errorf("archive: decompress: %w", err)
	}
	return nil
}
