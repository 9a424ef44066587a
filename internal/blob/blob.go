// Package blob stores journal entry images. S3 backs the cloud target;
// a plain directory backs local development.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tendjournal/tend/internal/config"
)

// Store saves and removes image blobs. Put returns the stable URL or path
// recorded on the entry.
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// New selects the backend from config: S3 when a bucket is configured,
// the local upload directory otherwise.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, errors.Wrap(err, "load aws config")
		}
		return &S3Store{
			client: s3.NewFromConfig(awsCfg),
			bucket: cfg.S3Bucket,
			region: cfg.AWSRegion,
		}, nil
	}
	return &LocalStore{dir: cfg.UploadDir}, nil
}

func keyFor(contentType string) string {
	ext := ".png"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return "entries/" + uuid.New().String() + ext
}

// S3Store keeps images in an S3 bucket under entries/.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

func (s *S3Store) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	key := keyFor(contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, "s3 put")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	marker := ".amazonaws.com/"
	i := strings.Index(url, marker)
	if i < 0 {
		return errors.Errorf("not an s3 url: %s", url)
	}
	key := url[i+len(marker):]
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "s3 delete")
}

// LocalStore keeps images under a directory on the service host.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore { return &LocalStore{dir: dir} }

func (l *LocalStore) Put(_ context.Context, data []byte, contentType string) (string, error) {
	key := keyFor(contentType)
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "create upload dir")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write image")
	}
	return filepath.ToSlash(path), nil
}

func (l *LocalStore) Delete(_ context.Context, url string) error {
	// refuse paths that escape the upload directory
	clean := filepath.Clean(filepath.FromSlash(url))
	root := filepath.Clean(l.dir)
	if !strings.HasPrefix(clean, root+string(filepath.Separator)) {
		return errors.Errorf("path outside upload dir: %s", url)
	}
	if err := os.Remove(clean); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "remove image")
	}
	return nil
}
