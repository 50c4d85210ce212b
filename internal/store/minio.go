package store

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore serves static site assets out of a MinIO bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// Object is an open asset. Content must be closed by the caller.
type Object struct {
	Content     io.ReadSeekCloser
	ContentType string
	ModTime     time.Time
}

func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

// Open returns the object stored under key, or ErrNotFound.
func (s *MinioStore) Open(ctx context.Context, key string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get %s: %w", key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("minio stat %s: %w", key, err)
	}
	return &Object{Content: obj, ContentType: info.ContentType, ModTime: info.LastModified}, nil
}

// PushDir uploads every regular file under dir, keyed by its slash-separated
// path relative to dir. It returns the number of files uploaded.
func (s *MinioStore) PushDir(ctx context.Context, dir string) (int, error) {
	var n int
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		contentType := mime.TypeByExtension(strings.ToLower(path.Ext(key)))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if _, err := s.client.FPutObject(ctx, s.bucket, key, p, minio.PutObjectOptions{
			ContentType: contentType,
		}); err != nil {
			return fmt.Errorf("minio upload %s: %w", key, err)
		}
		n++
		return nil
	})
	return n, err
}
