package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// AvatarStore uploads profile pictures to a bucket.
type AvatarStore struct {
	client *storage.Client
	bucket string
}

func NewAvatarStore(client *storage.Client, bucket string) *AvatarStore {
	return &AvatarStore{client: client, bucket: bucket}
}

// Upload streams r to a fresh object under avatars/<userID>/ and returns its public URL.
func (s *AvatarStore) Upload(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	objectPath := ObjectPath(userID, filename)
	wc := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // single request for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return PublicURL(s.bucket, objectPath), nil
}

// ObjectPath names a new avatar object, keeping the original extension.
func ObjectPath(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("avatars", userID, uuid.NewString()+ext)
}

// PublicURL builds a public URL for an object (assuming public read access)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
