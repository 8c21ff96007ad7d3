package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalReader resolves references against a base directory on disk.
type LocalReader struct {
	BaseDir string
}

func NewLocalReader(baseDir string) *LocalReader {
	return &LocalReader{BaseDir: baseDir}
}

func (r *LocalReader) Read(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.resolve(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}

// resolve keeps ref inside BaseDir.
func (r *LocalReader) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNotFound
	}

	base, err := filepath.Abs(r.BaseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base dir: %w", err)
	}

	path := filepath.Join(base, filepath.FromSlash(ref))
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("reference %q escapes %s", ref, r.BaseDir)
	}
	return path, nil
}
