package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xtbe/arcbp-editor/internal/filex"
)

// FileSink stores backups as files in a directory.
type FileSink struct {
	dir string
}

// NewFileSink creates dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &FileSink{dir: abs}, nil
}

// Dir returns the absolute backup directory.
func (s *FileSink) Dir() string { return s.dir }

func (s *FileSink) Save(_ context.Context, name string, data []byte) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	p := filepath.Join(s.dir, name)
	if err := filex.WriteFileAtomic(p, data, 0o640); err != nil {
		return "", fmt.Errorf("save backup: %w", err)
	}
	return p, nil
}

func (s *FileSink) Load(_ context.Context, name string) ([]byte, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load backup: %w", err)
	}
	return data, nil
}
