// Package gcs reads statement text from and writes parse results to Google
// Cloud Storage. Credentials come from Application Default Credentials.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/expense-extractor/internal/textract"
)

// ErrInvalidURI is returned for anything that is not gs://bucket/object.
var ErrInvalidURI = errors.New("invalid GCS URI")

const uploadTimeout = 2 * time.Minute

// Storage is the subset of object storage the worker and API need.
type Storage interface {
	// Fetch downloads the object behind a gs:// URI.
	Fetch(ctx context.Context, uri string) ([]byte, error)

	// UploadJSON writes v as JSON and returns the object's gs:// URI.
	UploadJSON(ctx context.Context, bucket, object string, v interface{}) (string, error)
}

// ParseURI splits gs://bucket/path/to/object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w (no object path): %q", ErrInvalidURI, uri)
	}
	return parts[0], parts[1], nil
}

// URI joins a bucket and object name.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// Filename extracts the file name from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// ResultObject is where a job's parse result is written.
func ResultObject(jobID string) string {
	return "results/" + jobID + ".json"
}

// Client implements Storage on a shared storage client.
type Client struct {
	client *storage.Client
}

func NewClient(ctx context.Context) (*Client, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create storage client: %w", err)
	}
	return &Client{client: c}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: %w", err)
	}

	rc, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}

func (c *Client) UploadJSON(ctx context.Context, bucket, object string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("UploadJSON: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadJSON: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadJSON: finalize upload: %w", err)
	}
	return URI(bucket, object), nil
}

// UploadFile uploads a local file, e.g. a statement PDF, and returns its URI.
func (c *Client) UploadFile(ctx context.Context, bucket, object, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("UploadFile: open %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadFile: copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadFile: finalize upload: %w", err)
	}
	return URI(bucket, object), nil
}

// Object is a parser text source backed by a GCS object. PDFs are run
// through text extraction; other objects are read as UTF-8.
type Object struct {
	Storage Storage
	URI     string
}

func (o Object) Text(ctx context.Context) (string, error) {
	data, err := o.Storage.Fetch(ctx, o.URI)
	if err != nil {
		return "", err
	}
	return textract.ForBytes(data).Text(ctx)
}

var _ Storage = (*Client)(nil)
