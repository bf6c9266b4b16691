// Package filesystem provides the on-disk media store for kennel.
// It supports atomic writes using temp files and SHA256-based etags.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kennelhq/kennel"
)

// Store provides file system storage operations for uploaded images.
// Files live flat under the root directory, named by kennel.StorageName.
type Store struct {
	root *os.Root
}

// NewStore creates a Store over the given root directory. The root
// provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// Get opens a file for reading. Returns kennel.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, kennel.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to the given path using a temp file and
// rename. It returns the number of bytes written and a SHA256-based etag.
// The operation respects context cancellation.
func (s *Store) Write(ctx context.Context, path string, content io.Reader) (kennel.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return kennel.SaveResult{}, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return kennel.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(t.Name()); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	bytesWritten, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return kennel.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	err = t.Sync()
	if err != nil {
		return kennel.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, path); renameErr != nil {
		return kennel.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	etag := hex.EncodeToString(h.Sum(nil))
	success = true

	return kennel.SaveResult{BytesWritten: bytesWritten, Etag: etag}, nil
}

// Delete removes a file. Returns kennel.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return kennel.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List returns the paths of all stored files, skipping in-flight temp
// files. Intended for the orphan sweep, not the request path.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var paths []string

	entries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.IsDir() || strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}

		paths = append(paths, filepath.Base(entry.Name()))
	}

	return paths, nil
}

const tmpPrefix = ".t"

func tmpFileName() string {
	return fmt.Sprintf("%s%s", tmpPrefix, uuid.New().String())
}
