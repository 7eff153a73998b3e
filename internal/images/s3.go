package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"pgfinder/pg-api/internal/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const keyCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

type S3Config struct {
	Region          string
	AccessKey       string
	SecretAccessKey string
	Bucket          string
	// Endpoint is set for S3 compatible stores such as Cloudflare R2
	Endpoint  string
	PublicURL string
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3 uploads data URI images to a bucket and stores their public URL.
// Plain URLs pass through.
type S3 struct {
	up        uploader
	bucket    string
	publicURL string
}

// NewS3 connects to the bucket and makes sure it exists.
func NewS3(ctx context.Context, c S3Config) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = c.Region
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			if o.Region == "" {
				o.Region = "auto"
			}
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.Bucket),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", c.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return newS3(manager.NewUploader(client), c.Bucket, c.PublicURL), nil
}

func newS3(up uploader, bucket, publicURL string) *S3 {
	return &S3{
		up:        up,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (s *S3) Store(ctx context.Context, folder, src string) (string, error) {
	if !isDataURI(src) {
		return src, nil
	}

	data, err := decodeDataURI(src)
	if err != nil {
		return "", err
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", apperr.New(apperr.ErrValidation, fmt.Sprintf("Unsupported image type %s", mime.String()))
	}

	name, err := gonanoid.Generate(keyCharset, 12)
	if err != nil {
		return "", fmt.Errorf("failed to generate image key, %w", err)
	}

	key := folder + "/" + name + mime.Extension()

	_, err = s.up.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(mime.String()),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		zap.L().Error("Failed to upload image", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload image, %w", err)
	}

	return s.publicURL + "/" + key, nil
}
