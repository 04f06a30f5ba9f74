package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/justsurfingit/applicant-intake/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetService stores application assets in a MinIO bucket.
type AssetService struct {
	client *minio.Client
	bucket string
	config config.MinioConfig
}

func NewAssetService(cfg config.MinioConfig) (*AssetService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &AssetService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *AssetService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	// Assets are handed out as plain URLs, so objects under orgs/ must be
	// anonymously readable. Listing stays private.
	policy, err := publicReadPolicy(s.bucket, assetPrefix)
	if err != nil {
		return err
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	return nil
}

const assetPrefix = "orgs/"

type policyStatement struct {
	Effect    string              `json:"Effect"`
	Principal map[string][]string `json:"Principal"`
	Action    []string            `json:"Action"`
	Resource  []string            `json:"Resource"`
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

func publicReadPolicy(bucket, prefix string) (string, error) {
	raw, err := json.Marshal(bucketPolicy{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string][]string{"AWS": {"*"}},
			Action:    []string{"s3:GetObject"},
			Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/%s*", bucket, prefix)},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build bucket policy: %w", err)
	}
	return string(raw), nil
}

func (s *AssetService) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	return s.put(ctx, objectName, r, size, minio.PutObjectOptions{ContentType: contentType})
}

// UploadWithProgress reports bytesTransferred/totalBytes*100 while the
// object is streamed.
func (s *AssetService) UploadWithProgress(ctx context.Context, objectName string, r io.Reader, size int64, contentType string, onProgress func(float64)) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if onProgress != nil {
		opts.Progress = newProgressReader(size, onProgress)
	}
	return s.put(ctx, objectName, r, size, opts)
}

func (s *AssetService) put(ctx context.Context, objectName string, r io.Reader, size int64, opts minio.PutObjectOptions) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, opts)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return s.PublicURL(objectName), nil
}

// PublicURL returns a public URL for the object (if bucket policy allows)
func (s *AssetService) PublicURL(objectName string) string {
	if s.config.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.config.PublicBaseURL, "/"), s.bucket, objectName)
	}
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, objectName)
}

// progressReader is handed to minio as PutObjectOptions.Progress; minio
// reads from it as many bytes as it has sent.
type progressReader struct {
	mu    sync.Mutex
	total int64
	sent  int64
	fn    func(float64)
}

func newProgressReader(total int64, fn func(float64)) *progressReader {
	return &progressReader{total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	p.mu.Lock()
	p.sent += int64(len(b))
	if p.total > 0 && p.sent > p.total {
		p.sent = p.total
	}
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.sent) / float64(p.total) * 100
	}
	p.mu.Unlock()

	p.fn(pct)
	return len(b), nil
}
