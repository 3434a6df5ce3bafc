package backup

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xtbe/arcbp-editor/internal/client/config"
)

// ErrNotFound is returned by Load when no backup has the given name.
var ErrNotFound = errors.New("backup not found")

// Sink stores exported collections.
type Sink interface {
	// Save stores data under name and returns a human-readable location.
	Save(ctx context.Context, name string, data []byte) (string, error)
	// Load returns the document stored under name.
	Load(ctx context.Context, name string) ([]byte, error)
}

// New returns an S3Sink when cfg names a bucket, a FileSink otherwise.
func New(ctx context.Context, cfg *config.Config) (Sink, error) {
	if cfg.S3Bucket != "" {
		return NewS3Sink(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return NewFileSink(cfg.ExportDir)
}

// DefaultName returns a unique backup name such as
// "blueprints-20250102-150405-1a2b3c4d.json".
func DefaultName(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("blueprints-%s-%s.json", now.UTC().Format("20060102-150405"), id)
}

// cleanName strips directories and appends ".json" when missing.
func cleanName(name string) (string, error) {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("invalid backup name %q", name)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	return name, nil
}
