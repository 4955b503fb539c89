package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxReceiptSize is the largest receipt accepted (10 MiB)
const DefaultMaxReceiptSize = 10 << 20

var (
	// ErrEmpty is returned for a zero-length upload
	ErrEmpty = errors.New("receipt is empty")
	// ErrTooLarge is returned when an upload exceeds the configured limit
	ErrTooLarge = errors.New("receipt exceeds the maximum size")
	// ErrUnsupportedType is returned for anything other than a JPEG, PNG or GIF image
	ErrUnsupportedType = errors.New("receipt must be a jpg, png or gif image")
	// ErrBlobNotFound is returned by Open for an unknown key
	ErrBlobNotFound = errors.New("receipt not found")
)

var allowedReceiptTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// BlobStore keeps receipt files outside the database. Keys are opaque.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (key string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// DetectReceipt sniffs the content of an upload and returns its MIME type.
// Only JPEG, PNG and GIF images are accepted, whatever the client claims.
func DetectReceipt(data []byte, maxSize int64) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	for allowed := range allowedReceiptTypes {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", ErrUnsupportedType
}

// ContentTypeForKey returns the MIME type implied by a stored key
func ContentTypeForKey(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	for contentType, e := range allowedReceiptTypes {
		if e == ext {
			return contentType
		}
	}
	return "application/octet-stream"
}

// LocalBlobStore implements BlobStore on the local filesystem
type LocalBlobStore struct {
	baseDir string
	maxSize int64
	logger  *zap.Logger
}

// NewLocalBlobStore creates the base directory if needed
func NewLocalBlobStore(baseDir string, maxSize int64, logger *zap.Logger) (*LocalBlobStore, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxReceiptSize
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}
	return &LocalBlobStore{baseDir: baseDir, maxSize: maxSize, logger: logger}, nil
}

// MaxSize returns the upload limit in bytes
func (s *LocalBlobStore) MaxSize() int64 {
	return s.maxSize
}

// Put validates and stores a receipt under a fresh key
func (s *LocalBlobStore) Put(ctx context.Context, data []byte) (string, error) {
	contentType, err := DetectReceipt(data, s.maxSize)
	if err != nil {
		return "", err
	}

	key := uuid.NewString() + allowedReceiptTypes[contentType]
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("Failed to write receipt",
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	s.logger.Debug("Receipt stored",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)))

	return key, nil
}

// Open returns a reader over a stored receipt
func (s *LocalBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt: %w", err)
	}
	return f, nil
}

// Delete removes a stored receipt. Deleting a missing key is not an error.
func (s *LocalBlobStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}

// path resolves key inside baseDir and rejects anything that escapes it
func (s *LocalBlobStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid receipt key %q", key)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	return filepath.Join(absBase, key), nil
}
