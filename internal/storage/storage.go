// Package storage keeps uploaded documents in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL is the base under which stored objects are served. Defaults to <endpoint>/<bucket>.
	PublicURL string
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Bucket struct {
	api     objectAPI
	bucket  string
	baseURL string
}

// New builds a bucket client. Static credentials are used when given, otherwise the default AWS chain.
func New(ctx context.Context, cfg Config) (*Bucket, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newBucket(client, cfg), nil
}

func newBucket(api objectAPI, cfg Config) *Bucket {
	base := cfg.PublicURL
	if base == "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &Bucket{
		api:     api,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
	}
}

// Upload stores body under key and returns the object's public URL.
func (b *Bucket) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading upload body: %w", err)
	}

	_, err = b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	return b.PublicURL(key), nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	return nil
}

func (b *Bucket) PublicURL(key string) string {
	return b.baseURL + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL recovers the object key from a URL returned by Upload.
func (b *Bucket) KeyFromURL(raw string) (string, bool) {
	prefix := b.baseURL + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}

	key, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil || key == "" {
		return "", false
	}

	return key, true
}
