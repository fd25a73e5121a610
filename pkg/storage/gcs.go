package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ObjectStore abstracts the bucket the workflow writes to. Uploaded images
// are removed once text extraction finishes; generated audio stays behind a
// short-lived signed URL.
type ObjectStore interface {
	Store(ctx context.Context, key string, data []byte, contentType string) error
	Presign(key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error

	// URI returns the address other cloud services use to read the object.
	URI(key string) string
}

// StorageError wraps bucket failures with the operation and object key.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore builds a bucket client, preferring inline credentials, then a
// credentials file, then the ambient default chain.
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	var client *gcs.Client
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = gcs.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = gcs.NewClient(ctx, option.WithCredentialsFile(credFile))
	} else {
		client, err = gcs.NewClient(ctx)
	}
	if err != nil {
		return nil, &StorageError{Op: "connect", Key: bucket, Err: err}
	}

	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Store(ctx context.Context, key string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := bytes.NewReader(data).WriteTo(w); err != nil {
		_ = w.Close()
		return &StorageError{Op: "store", Key: key, Err: err}
	}
	if err := w.Close(); err != nil {
		return &StorageError{Op: "store", Key: key, Err: err}
	}
	return nil
}

func (s *GCSStore) Presign(key string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(key, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", &StorageError{Op: "presign", Key: key, Err: err}
	}
	return url, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// URI returns the gs:// address of an object, which is what the Vision API
// expects as an image source.
func (s *GCSStore) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, key)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
