package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/frasal/image_describer/internal/config"
	"github.com/frasal/image_describer/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// metadataSuffix derives the metadata object name from an image key, so
// any bucket consumer can locate metadata without a side index.
const metadataSuffix = ".metadata.json"

var ErrObjectNotFound = errors.New("object not found")

func MetadataKey(key string) string {
	return key + metadataSuffix
}

func IsMetadataKey(name string) bool {
	return strings.HasSuffix(name, metadataSuffix)
}

// Client reads and writes image blobs and their metadata objects in a
// single S3-compatible bucket.
type Client struct {
	log    *slog.Logger
	mc     *minio.Client
	bucket string
}

func New(log *slog.Logger, cfg config.Storage) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	return &Client{
		log:    log,
		mc:     mc,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", c.bucket, err)
	}

	if exists {
		return nil
	}

	if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", c.bucket, err)
	}

	c.log.InfoContext(ctx, "created bucket", slog.String("bucket", c.bucket))

	return nil
}

// PutImage uploads the file at localPath under name. An empty name
// derives the object name from the file name.
func (c *Client) PutImage(ctx context.Context, localPath, name string) (string, error) {
	if name == "" {
		name = filepath.Base(localPath)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read image %q: %w", localPath, err)
	}

	_, err = c.mc.PutObject(ctx, c.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		return "", fmt.Errorf("failed to upload %q: %w", name, err)
	}

	c.log.InfoContext(ctx, "uploaded image",
		slog.String("key", name),
		slog.Int("size", len(data)),
	)

	return name, nil
}

// PutMetadata writes the metadata blob for the image stored under key.
func (c *Client) PutMetadata(ctx context.Context, key string, metadata domain.Metadata) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for %q: %w", key, err)
	}

	name := MetadataKey(key)

	_, err = c.mc.PutObject(ctx, c.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to save metadata %q: %w", name, err)
	}

	c.log.InfoContext(ctx, "saved metadata", slog.String("key", name))

	return nil
}

func (c *Client) GetObject(ctx context.Context, name string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read object %q: %w", name, err)
	}

	return data, nil
}

func (c *Client) ListObjects(ctx context.Context) ([]string, error) {
	var names []string

	for obj := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}

		names = append(names, obj.Key)
	}

	return names, nil
}
