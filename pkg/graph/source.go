package graph

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrInvalidURI is returned for a malformed s3:// graph location.
var ErrInvalidURI = errors.New("invalid graph uri")

const s3Scheme = "s3://"

// ObjectStoreConfig holds the S3-compatible endpoint used for s3:// graph
// locations.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Load reads a graph from a local path or from an s3://bucket/key object.
func Load(ctx context.Context, location string, store ObjectStoreConfig) (*Graph, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return ReadBinary(location)
	}

	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, err
	}
	if store.Endpoint == "" {
		return nil, fmt.Errorf("%w: %s needs an object store endpoint", ErrInvalidURI, location)
	}

	client, err := minio.New(store.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(store.AccessKey, store.SecretKey, ""),
		Secure: store.UseSSL,
		Region: store.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", location, err)
	}
	defer obj.Close()

	g, err := Decode(bufio.NewReaderSize(obj, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", location, err)
	}
	return g, nil
}

func parseS3URI(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q, want s3://bucket/key", ErrInvalidURI, location)
	}
	return bucket, key, nil
}
