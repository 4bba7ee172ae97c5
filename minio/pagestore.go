// Package minio archives raw fetched pages in S3-compatible object storage.
package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/siterag"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// commitTimeout bounds Commit and Abort, which take no context.
const commitTimeout = 30 * time.Second

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string
	Prefix          string // Object name prefix, e.g. "html_files"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Ensure PageStore implements siterag.PageStore at compile time.
var _ siterag.PageStore = (*PageStore)(nil)

// PageStore writes each page to <prefix>/<flat name>.html. Commit writes a
// manifest listing the run's pages; Abort removes the objects the run wrote.
type PageStore struct {
	client *minio.Client
	bucket string
	prefix string

	mu    sync.Mutex
	saved []manifestEntry
}

// Manifest describes one archived crawl run.
type Manifest struct {
	CommittedAt string          `json:"committed_at"`
	Pages       []manifestEntry `json:"pages"`
}

type manifestEntry struct {
	URL    string `json:"url"`
	Object string `json:"object"`
	Hash   string `json:"hash"`
}

// New creates a PageStore.
func New(config Config) (*PageStore, error) {
	if config.Endpoint == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "minio endpoint is required")
	}
	if config.Bucket == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "minio bucket is required")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &PageStore{
		client: client,
		bucket: config.Bucket,
		prefix: strings.Trim(config.Prefix, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *PageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ObjectName returns the object name a page URL is archived under.
func (s *PageStore) ObjectName(rawURL string) (string, error) {
	name, err := siterag.PageName(rawURL)
	if err != nil {
		return "", err
	}
	return path.Join(s.prefix, name), nil
}

func (s *PageStore) Save(ctx context.Context, page *siterag.Page) error {
	object, err := s.ObjectName(page.URL)
	if err != nil {
		return err
	}
	hash := fmt.Sprintf("%016x", xxhash.Sum64String(page.Content))

	_, err = s.client.PutObject(ctx, s.bucket, object, strings.NewReader(page.Content), int64(len(page.Content)), minio.PutObjectOptions{
		ContentType: "text/html; charset=utf-8",
		UserMetadata: map[string]string{
			"Source-Url":   page.URL,
			"Content-Hash": hash,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put page %s: %w", page.URL, err)
	}

	s.mu.Lock()
	s.saved = append(s.saved, manifestEntry{URL: page.URL, Object: object, Hash: hash})
	s.mu.Unlock()
	return nil
}

func (s *PageStore) Commit() error {
	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	s.mu.Lock()
	manifest := Manifest{
		CommittedAt: time.Now().UTC().Format(time.RFC3339),
		Pages:       append([]manifestEntry(nil), s.saved...),
	}
	s.saved = nil
	s.mu.Unlock()

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	object := path.Join(s.prefix, "manifest.json")
	_, err = s.client.PutObject(ctx, s.bucket, object, strings.NewReader(string(data)), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put manifest: %w", err)
	}
	return nil
}

func (s *PageStore) Abort() error {
	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	s.mu.Lock()
	saved := s.saved
	s.saved = nil
	s.mu.Unlock()

	for _, e := range saved {
		if err := s.client.RemoveObject(ctx, s.bucket, e.Object, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove %s: %w", e.Object, err)
		}
	}
	return nil
}
