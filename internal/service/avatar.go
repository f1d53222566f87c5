package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const avatarKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var ErrUnsupportedImage = errors.New("unsupported image type")

// AvatarConfig points at an S3-compatible bucket (Cloudflare R2 shaped
// endpoint). PublicBaseURL is prepended to object keys to form the URL
// stored on the user.
type AvatarConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

type AvatarStore struct {
	c          *s3.Client
	bucket     *string
	publicBase string
}

// NewAvatarStore builds the S3 client and head-checks the bucket so a
// misconfigured deployment fails at startup rather than on first upload.
func NewAvatarStore(cfg AvatarConfig) (*AvatarStore, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(cfg.Bucket)

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
		o.Region = "auto"
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return nil, fmt.Errorf("bucket '%s' does not exist", cfg.Bucket)
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &AvatarStore{
		c:          client,
		bucket:     bucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores the image under a random avatars/ key and returns its
// public URL. Avatars are small enough for a single PutObject.
func (a *AvatarStore) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedImage
	}

	id, err := gonanoid.Generate(avatarKeyAlphabet, 16)
	if err != nil {
		return "", fmt.Errorf("failed to generate avatar key, %w", err)
	}
	key := "avatars/" + id + ext

	_, err = a.c.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        a.bucket,
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar, %w", err)
	}

	return a.publicBase + "/" + key, nil
}
