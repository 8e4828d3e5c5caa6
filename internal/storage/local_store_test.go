package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalObjectStore_PutGet(t *testing.T) {
	store := NewLocalObjectStore(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	err := store.Put(ctx, "abc-123/receipt.pdf", []byte("pdf-bytes"), "application/pdf")
	require.NoError(t, err)

	content, err := store.Get(ctx, "abc-123/receipt.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), content)
}

func TestLocalObjectStore_GetMissing(t *testing.T) {
	store := NewLocalObjectStore(t.TempDir(), zap.NewNop())

	_, err := store.Get(context.Background(), "no-such/object")
	assert.Error(t, err)
}

func TestLocalObjectStore_RejectsPathEscape(t *testing.T) {
	baseDir := t.TempDir()
	outside := filepath.Join(filepath.Dir(baseDir), "escaped.txt")
	store := NewLocalObjectStore(baseDir, zap.NewNop())
	ctx := context.Background()

	err := store.Put(ctx, "../escaped.txt", []byte("nope"), "text/plain")
	assert.Error(t, err)
	_, statErr := os.Stat(outside)
	assert.True(t, os.IsNotExist(statErr))

	_, err = store.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalObjectStore_OverwritesExistingObject(t *testing.T) {
	store := NewLocalObjectStore(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "key/file.txt", []byte("one"), "text/plain"))
	require.NoError(t, store.Put(ctx, "key/file.txt", []byte("two"), "text/plain"))

	content, err := store.Get(ctx, "key/file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), content)
}
