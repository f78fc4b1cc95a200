package enroll

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// S3AssetStoreConfig holds the settings for the S3-compatible asset store.
// BaseEndpoint supports MinIO and other S3 lookalikes.
type S3AssetStoreConfig struct {
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	// Prefix namespaces uploaded keys, e.g. "profile_photos".
	Prefix string
}

// S3AssetStore uploads assets to an S3 bucket and returns the object key as
// the opaque reference stored on the user record.
type S3AssetStore struct {
	cfg    S3AssetStoreConfig
	client *s3.Client
}

var _ AssetStore = (*S3AssetStore)(nil)

func NewS3AssetStore(ctx context.Context, cfg S3AssetStoreConfig) (*S3AssetStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to configure asset store")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
	})

	return &S3AssetStore{
		cfg:    cfg,
		client: client,
	}, nil
}

func (s *S3AssetStore) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	key := s.storageKey(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryOperation, "failed to upload asset")
	}

	return key, nil
}

func (s *S3AssetStore) storageKey(name string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%d/%d/%s%s", s.cfg.Prefix, d.Year(), d.Month(), d.Day(), uuid.New(), path.Ext(name))
}
