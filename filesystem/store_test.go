package filesystem_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennelhq/kennel"
	"github.com/kennelhq/kennel/filesystem"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()
	tempDir := t.TempDir()
	root, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	return filesystem.NewStore(root), tempDir
}

func TestStore_Get_Success(t *testing.T) {
	store, tempDir := newStore(t)

	content := []byte("jpeg bytes")
	err := os.WriteFile(filepath.Join(tempDir, "1700000000000-rex.jpg"), content, 0o644)
	require.NoError(t, err)

	result, err := store.Get(context.Background(), "1700000000000-rex.jpg")
	require.NoError(t, err)
	defer func() { _ = result.Close() }()

	readContent, err := io.ReadAll(result)
	assert.NoError(t, err)
	assert.Equal(t, content, readContent)
}

func TestStore_Get_Seekable(t *testing.T) {
	store, tempDir := newStore(t)

	err := os.WriteFile(filepath.Join(tempDir, "rex.jpg"), []byte("0123456789"), 0o644)
	require.NoError(t, err)

	result, err := store.Get(context.Background(), "rex.jpg")
	require.NoError(t, err)
	defer func() { _ = result.Close() }()

	// Range reads via http.ServeContent depend on seeking.
	_, err = result.Seek(5, io.SeekStart)
	require.NoError(t, err)

	rest, err := io.ReadAll(result)
	require.NoError(t, err)
	assert.Equal(t, "56789", string(rest))
}

func TestStore_Get_NotFound(t *testing.T) {
	store, _ := newStore(t)

	result, err := store.Get(context.Background(), "nonexistent.jpg")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, kennel.ErrNotFound)
}

func TestStore_Get_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Get(ctx, "rex.jpg")
	assert.Nil(t, result)
	assert.Equal(t, context.Canceled, err)
}

func TestStore_Write_Success(t *testing.T) {
	store, tempDir := newStore(t)

	result, err := store.Write(context.Background(), "rex.jpg", bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.BytesWritten)
	assert.Len(t, result.Etag, 64) // SHA256 hex length

	data, err := os.ReadFile(filepath.Join(tempDir, "rex.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestStore_Write_Overwrite(t *testing.T) {
	store, tempDir := newStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, "rex.jpg", bytes.NewReader([]byte("old")))
	require.NoError(t, err)

	result, err := store.Write(ctx, "rex.jpg", bytes.NewReader([]byte("new bytes")))
	require.NoError(t, err)
	assert.Equal(t, int64(9), result.BytesWritten)

	data, err := os.ReadFile(filepath.Join(tempDir, "rex.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new bytes"), data)
}

func TestStore_Write_NoTempFileLeftBehind(t *testing.T) {
	store, tempDir := newStore(t)

	_, err := store.Write(context.Background(), "rex.jpg", bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rex.jpg", entries[0].Name())
}

func TestStore_Write_ContextCanceledBefore(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Write(ctx, "rex.jpg", bytes.NewReader([]byte("data")))
	assert.Equal(t, int64(0), result.BytesWritten)
	assert.Equal(t, context.Canceled, err)
}

type slowReader struct {
	data   []byte
	cancel context.CancelFunc
	reads  int
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.reads > 0 {
		r.cancel()
	}
	if r.reads >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.reads]
	r.reads++
	return 1, nil
}

func TestStore_Write_ContextCanceledDuringCopy(t *testing.T) {
	store, tempDir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	reader := &slowReader{data: []byte("jpeg bytes"), cancel: cancel}

	_, err := store.Write(ctx, "rex.jpg", reader)
	assert.ErrorIs(t, err, context.Canceled)

	// The partial temp file must be cleaned up and the target not created.
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Delete_Success(t *testing.T) {
	store, tempDir := newStore(t)

	err := os.WriteFile(filepath.Join(tempDir, "rex.jpg"), []byte("data"), 0o644)
	require.NoError(t, err)

	err = store.Delete(context.Background(), "rex.jpg")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tempDir, "rex.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Delete_NotFound(t *testing.T) {
	store, _ := newStore(t)

	err := store.Delete(context.Background(), "nonexistent.jpg")
	assert.ErrorIs(t, err, kennel.ErrNotFound)
}

func TestStore_Delete_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Delete(ctx, "rex.jpg")
	assert.Equal(t, context.Canceled, err)
}

func TestStore_List(t *testing.T) {
	store, tempDir := newStore(t)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		paths, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("returns stored files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "a.jpg"), []byte("a"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "b.jpg"), []byte("b"), 0o644))

		paths, err := store.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.jpg", "b.jpg"}, paths)
	})

	t.Run("skips in-flight temp files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".t1234"), []byte("partial"), 0o644))

		paths, err := store.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.jpg", "b.jpg"}, paths)
	})
}

func TestStore_PathTraversalBlocked(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "../escape.txt")
	assert.Error(t, err)

	_, err = store.Write(ctx, "../escape.txt", bytes.NewReader([]byte("data")))
	assert.Error(t, err)
}
