package kennel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ImageService owns the per-user image lifecycle: upload, read, list,
// update and delete, with the ownership guard applied before any store
// mutation or file access.
type ImageService struct {
	repo           ImageRepo
	storage        FileStorage
	cleanupTimeout time.Duration
	now            func() time.Time
}

// ImageServiceConfig holds configuration options for ImageService.
type ImageServiceConfig struct {
	CleanupTimeout time.Duration    // timeout for compensating file cleanup (default: 30s)
	Now            func() time.Time // clock override for tests
}

func NewImageService(repo ImageRepo, storage FileStorage, cfg ImageServiceConfig) *ImageService {
	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ImageService{
		repo:           repo,
		storage:        storage,
		cleanupTimeout: cleanupTimeout,
		now:            now,
	}
}

// Upload writes the content to storage under a timestamp-prefixed sanitized
// name and inserts a metadata row owned by the caller. If the insert fails
// the stored file is deleted again so no orphan file is left behind; the
// cleanup runs on a background context because the request context may
// already be cancelled.
func (s *ImageService) Upload(ctx context.Context, ident Identity, in NewImage, content io.Reader) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, fmt.Errorf("upload image: %w", err)
	}

	if in.Name == "" {
		return Image{}, fmt.Errorf("upload image: %w: name cannot be empty", ErrInvalidInput)
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}

	storagePath := StorageName(s.now(), in.Name)

	saveResult, err := s.storage.Write(ctx, storagePath, content)
	if err != nil {
		return Image{}, fmt.Errorf("upload image %s: write failed: %w", in.Name, err)
	}

	img, err := s.repo.Create(ctx, Image{
		OwnerID:     ident.UserID,
		Name:        in.Name,
		StoragePath: storagePath,
		ContentType: in.ContentType,
		SizeBytes:   saveResult.BytesWritten,
	})
	if err != nil {
		s.cleanupFile(storagePath)
		return Image{}, fmt.Errorf("upload image %s: metadata insert failed: %w", in.Name, err)
	}

	return img, nil
}

// Get returns the image row and an open reader for its backing file,
// after the ownership guard passes. The caller closes the reader.
func (s *ImageService) Get(ctx context.Context, ident Identity, id string) (Image, io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, nil, fmt.Errorf("get image: %w", err)
	}

	img, err := s.lookup(ctx, ident, id)
	if err != nil {
		return Image{}, nil, fmt.Errorf("get image: %w", err)
	}

	f, err := s.storage.Get(ctx, img.StoragePath)
	if err != nil {
		return Image{}, nil, fmt.Errorf("get image %s: %w", id, err)
	}

	return img, f, nil
}

// List returns one page of the caller's own images plus the total count,
// ordered by insertion order (created_at, id).
func (s *ImageService) List(ctx context.Context, ident Identity, q ListQuery) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list images: %w", err)
	}

	q = q.normalize()

	total, err := s.repo.CountByOwner(ctx, ident.UserID)
	if err != nil {
		return ListResult{}, fmt.Errorf("list images: %w", err)
	}

	items, err := s.repo.ListByOwner(ctx, ident.UserID, q.Limit, q.offset())
	if err != nil {
		return ListResult{}, fmt.Errorf("list images: %w", err)
	}

	return ListResult{Page: q.Page, Limit: q.Limit, Total: total, Items: items}, nil
}

// Update replaces an image's file and metadata. The new file is written
// before the old one is removed, so a crash mid-update leaves an orphan
// file rather than a metadata row with no backing file. A missing old file
// is treated as already gone.
func (s *ImageService) Update(ctx context.Context, ident Identity, id string, in NewImage, content io.Reader) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, fmt.Errorf("update image: %w", err)
	}

	if in.Name == "" {
		return Image{}, fmt.Errorf("update image: %w: name cannot be empty", ErrInvalidInput)
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}

	img, err := s.lookup(ctx, ident, id)
	if err != nil {
		return Image{}, fmt.Errorf("update image: %w", err)
	}

	oldPath := img.StoragePath
	newPath := StorageName(s.now(), in.Name)

	saveResult, err := s.storage.Write(ctx, newPath, content)
	if err != nil {
		return Image{}, fmt.Errorf("update image %s: write failed: %w", id, err)
	}

	img.Name = in.Name
	img.StoragePath = newPath
	img.ContentType = in.ContentType
	img.SizeBytes = saveResult.BytesWritten

	if err := s.repo.Update(ctx, img); err != nil {
		s.cleanupFile(newPath)
		return Image{}, fmt.Errorf("update image %s: metadata update failed: %w", id, err)
	}

	if err := s.storage.Delete(ctx, oldPath); err != nil && !errors.Is(err, ErrNotFound) {
		// The row already points at the new file; the stale one is
		// an orphan for the sweep to collect.
		slog.Warn("failed to remove replaced image file", "path", oldPath, "err", err)
	}

	return img, nil
}

// Delete removes the metadata row and then the backing file. The row goes
// first: once it is gone the image is unreachable through the API even if
// the file removal fails. A missing file is treated as already gone.
func (s *ImageService) Delete(ctx context.Context, ident Identity, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	img, err := s.lookup(ctx, ident, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	if err := s.repo.Delete(ctx, img.ID); err != nil {
		return fmt.Errorf("delete image %s: %w", id, err)
	}

	if err := s.storage.Delete(ctx, img.StoragePath); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("failed to remove deleted image file", "path", img.StoragePath, "err", err)
	}

	return nil
}

// Sweep removes files on disk that no metadata row references. Orphan
// files accumulate when a crash interrupts an update between the new-file
// write and the old-file removal. Returns the number of files removed.
func (s *ImageService) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	paths, err := s.storage.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	removed := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return removed, fmt.Errorf("sweep: %w", err)
		}

		_, err := s.repo.GetByStoragePath(ctx, path)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return removed, fmt.Errorf("sweep %s: %w", path, err)
		}

		if err := s.storage.Delete(ctx, path); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, fmt.Errorf("sweep %s: %w", path, err)
		}
		removed++
	}

	return removed, nil
}

// cleanupFile removes a file written by an operation whose metadata step
// failed. It runs on a background context since the request context may
// already be cancelled, which is often why the operation failed at all.
func (s *ImageService) cleanupFile(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
	defer cancel()

	if err := s.storage.Delete(ctx, path); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("failed to clean up image file", "path", path, "err", err)
	}
}

// lookup fetches the row by id and applies the ownership guard. A
// malformed id reads as a record that does not exist.
func (s *ImageService) lookup(ctx context.Context, ident Identity, id string) (Image, error) {
	imageID, err := ParseImageID(id)
	if err != nil {
		return Image{}, ErrNotFound
	}

	img, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return Image{}, err
	}

	if err := Authorize(ident, img); err != nil {
		return Image{}, err
	}

	return img, nil
}
