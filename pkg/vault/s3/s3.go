// Package s3 provides a vault backed by AWS S3 or an S3-compatible service.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/papercomputeco/skillgate/pkg/vault"
)

// API is the subset of the S3 client used by Store.
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config holds configuration for Store.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // Optional custom endpoint (for MinIO, LocalStack, etc.)
	Prefix   string // Optional key prefix
}

// <prefix><tenant>/<user>/<path>, with principal.NoTenant for no tenant.
// <prefix>[<tenant>/]<user>/<path>.
type Store struct {
	client API
	bucket string
	prefix string
}

// NewStore creates a new S3-backed vault using the default AWS credential
// chain.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	})

	return NewStoreWithClient(client, cfg), nil
}

// NewStoreWithClient creates a Store around an existing client.
func NewStoreWithClient(client API, cfg Config) *Store {
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}
}

// Create uploads with If-None-Match: * so an existing key fails with 412.
func (s *Store) Create(ctx context.Context, ref vault.Ref, content []byte, mimeType string) (string, error) {
	key, err := s.key(ref)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(mimeType),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isConflict(err) {
			return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrConflict)
		}
		return "", fmt.Errorf("s3 put failed for %s: %w", key, err)
	}

	return key, nil
}

// Update overwrites an existing object, keeping its content type.
func (s *Store) Update(ctx context.Context, ref vault.Ref, content []byte) (string, error) {
	key, err := s.key(ref)
	if err != nil {
		return "", err
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
		}
		return "", fmt.Errorf("s3 head failed for %s: %w", key, err)
	}

	contentType := head.ContentType
	if contentType == nil {
		contentType = aws.String(vault.MimeType(ref.Path))
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("s3 put failed for %s: %w", key, err)
	}

	return key, nil
}

func (s *Store) Get(ctx context.Context, ref vault.Ref) ([]byte, error) {
	key, err := s.key(ref)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", ref.Path, vault.ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get failed for %s: %w", key, err)
	}
	defer func() { _ = result.Body.Close() }()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3 object %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) key(ref vault.Ref) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	return s.prefix + ref.Principal.Tenant() + "/" + ref.Principal.UserID + "/" + ref.Path, nil
}

// isConflict reports a failed If-None-Match precondition. S3 answers 412,
// or 409 when a concurrent conditional write wins the race.
func isConflict(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return httpStatus(err) == http.StatusPreconditionFailed
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	return httpStatus(err) == http.StatusNotFound
}

func httpStatus(err error) int {
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
