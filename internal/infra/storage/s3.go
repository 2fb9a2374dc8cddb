package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"secondhand/internal/config"
)

const s3KeyPrefix = "products/"

// S3へアップロードし、公開URLを返す
type S3ImageStore struct {
	uploader      *s3manager.Uploader
	bucket        string
	region        string
	publicBaseURL string
}

func NewS3ImageStore(cfg config.S3Config) (*S3ImageStore, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	// キー未指定ならSDKのデフォルト（環境変数/IAMロール）
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3ImageStore{
		uploader:      s3manager.NewUploader(sess),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *S3ImageStore) Save(ctx context.Context, filename string, contentType string, body io.Reader) (string, error) {
	key := s3KeyPrefix + generateFileName(filename, time.Now())

	in := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.UploadWithContext(ctx, in); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *S3ImageStore) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
