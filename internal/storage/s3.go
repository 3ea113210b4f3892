package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/OFFIS-RIT/charnet/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrObjectNotFound is returned when the requested key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectAPI is the part of *s3.Client used by the S3 loader and store.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ClientParams holds the connection settings for an S3 compatible store.
type S3ClientParams struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3ClientParamsFromEnv reads AWS_REGION, AWS_ENDPOINT, AWS_ACCESS_KEY and
// AWS_SECRET_KEY.
func S3ClientParamsFromEnv() S3ClientParams {
	return S3ClientParams{
		Region:    util.GetEnv("AWS_REGION"),
		Endpoint:  util.GetEnv("AWS_ENDPOINT"),
		AccessKey: util.GetEnv("AWS_ACCESS_KEY"),
		SecretKey: util.GetEnv("AWS_SECRET_KEY"),
	}
}

// NewS3Client creates a path-style S3 client with static credentials.
func NewS3Client(ctx context.Context, params S3ClientParams) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	}
	if params.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(params.Endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// GetFile downloads key from bucket. A missing key is reported as
// ErrObjectNotFound.
func GetFile(ctx context.Context, client ObjectAPI, bucket string, key string) ([]byte, error) {
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrObjectNotFound, bucket, key)
		}
		return nil, fmt.Errorf("failed to get file from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	return buf.Bytes(), nil
}

// PutFile uploads body to key. The content type is derived from the key's
// extension.
func PutFile(ctx context.Context, client ObjectAPI, bucket string, key string, body []byte) error {
	mimeType := mime.TypeByExtension(filepath.Ext(key))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return nil
}
