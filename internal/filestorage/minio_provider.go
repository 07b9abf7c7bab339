package filestorage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewMinIOStorage(endpoint, accessKeyID, secretAccessKey, bucket string, useSSL bool) (*MinIOStorage, error) {
	m, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinIOStorage{
		client: m,
		bucket: bucket,
	}, nil
}

// MinIOStorage reads assets from a bucket, with the store name as the
// object key.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

func (f *MinIOStorage) ReadFile(ctx context.Context, name string) ([]byte, error) {
	obj, err := f.client.GetObject(ctx, f.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, minioError(name, err)
	}
	defer obj.Close()

	b, err := io.ReadAll(obj)
	if err != nil {
		return nil, minioError(name, err)
	}
	return b, nil
}

func minioError(name string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return fmt.Errorf("minio get %s: %w", name, err)
}
