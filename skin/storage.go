package skin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mc-launcher/config"
	"mc-launcher/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Storage persists a validated skin and returns the reference recorded on the
// identity.
type Storage interface {
	Put(ctx context.Context, username string, data []byte) (string, error)
}

// NewStorage picks the bucket storage when SKIN_BUCKET is set, otherwise the
// local skin directory.
func NewStorage(ctx context.Context, cfg config.Config) (Storage, error) {
	if cfg.SkinBucket == "" {
		return &LocalStorage{Dir: cfg.SkinDir}, nil
	}
	return NewBucketStorage(ctx, cfg)
}

// LocalStorage writes skins as <Dir>/<username>.png.
type LocalStorage struct {
	Dir string
}

func (s *LocalStorage) Put(ctx context.Context, username string, data []byte) (string, error) {
	if s.Dir == "" {
		return "", ErrNoStorage
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create skin directory '%s': %w", s.Dir, err)
	}
	dest := filepath.Join(s.Dir, username+".png")
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write skin '%s': %w", dest, err)
	}
	logger.Log.Infow("Skin stored", zap.String("username", username), zap.String("path", dest))
	return dest, nil
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BucketStorage uploads skins to an S3-compatible bucket under skins/<username>.png.
type BucketStorage struct {
	client    objectPutter
	bucket    string
	publicURL string
}

func NewBucketStorage(ctx context.Context, cfg config.Config) (*BucketStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.R2AccountID != "" {
		opts = append(opts, awsconfig.WithRegion("auto"))
	}
	if cfg.R2AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2AccessKeyID, cfg.R2AccessKeySecret, "",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load bucket config: %w", err)
	}

	endpoint := ""
	if cfg.R2AccountID != "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicURL := cfg.SkinPublicURL
	if publicURL == "" {
		if endpoint != "" {
			publicURL = endpoint + "/" + cfg.SkinBucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.SkinBucket)
		}
	}

	return newBucketStorage(client, cfg.SkinBucket, publicURL), nil
}

func newBucketStorage(client objectPutter, bucket, publicURL string) *BucketStorage {
	return &BucketStorage{client: client, bucket: bucket, publicURL: publicURL}
}

func (s *BucketStorage) Put(ctx context.Context, username string, data []byte) (string, error) {
	key := "skins/" + username + ".png"
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload skin to bucket: %w", err)
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	logger.Log.Infow("Skin uploaded", zap.String("username", username), zap.String("url", url))
	return url, nil
}
