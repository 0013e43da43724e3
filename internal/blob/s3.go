package blob

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}
)

// S3Config describes an S3-compatible backend (AWS or MinIO).
type S3Config struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
	// PublicBase is the URL prefix clients use to fetch objects. Defaults to
	// BaseEndpoint.
	PublicBase string
}

// S3Store writes objects with PutObject. The client is created lazily on
// first use.
type S3Store struct {
	cfg S3Config

	once      sync.Once
	client    *s3.Client
	clientErr error
}

func NewS3Store(cfg S3Config) *S3Store {
	if cfg.PublicBase == "" {
		cfg.PublicBase = cfg.BaseEndpoint
	}
	return &S3Store{cfg: cfg}
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	s.once.Do(func() {
		cfg, err := loadDefaultAWSConfig(ctx,
			config.WithRegion(s.cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				s.cfg.AccessKey,
				s.cfg.SecretKey,
				"",
			)))
		if err != nil {
			s.clientErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		s.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
			o.UsePathStyle = true
		})
	})
	return s.client, s.clientErr
}

func (s *S3Store) UploadBlob(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	return putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
}

func (s *S3Store) PublicURL(bucket, path string) string {
	return joinURL(s.cfg.PublicBase, bucket, path)
}
