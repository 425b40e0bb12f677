package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aseptimu/bijective-shortener/internal/app/bimap"
)

func TestFileStore_ReplaysJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	logger := zap.NewNop().Sugar()
	ctx := context.Background()

	fs, err := NewFileStore(path, logger)
	require.NoError(t, err)
	tok, _, err := newAllocator(fs).Shorten(ctx, "https://persisted.example")
	require.NoError(t, err)
	require.NoError(t, fs.Close())

	reopened, err := NewFileStore(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	a := newAllocator(reopened)
	long, err := a.Resolve(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "https://persisted.example", long)

	again, created, err := a.Shorten(ctx, "https://persisted.example")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tok, again)
}

func TestFileStore_ReplaysLongLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	logger := zap.NewNop().Sugar()
	ctx := context.Background()

	longURL := "https://long.example/?q=" + strings.Repeat("a", 70*1024)
	fs, err := NewFileStore(path, logger)
	require.NoError(t, err)
	a := newAllocator(fs)
	longTok, _, err := a.Shorten(ctx, longURL)
	require.NoError(t, err)
	shortTok, _, err := a.Shorten(ctx, "https://short.example")
	require.NoError(t, err)
	require.NoError(t, fs.Close())

	reopened, err := NewFileStore(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	a = newAllocator(reopened)
	got, err := a.Resolve(ctx, longTok)
	require.NoError(t, err)
	assert.Equal(t, longURL, got)

	got, err = a.Resolve(ctx, shortTok)
	require.NoError(t, err)
	assert.Equal(t, "https://short.example", got)
}

func TestFileStore_ReplaysLastLineWithoutNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	content := `{"token":"tokAAA","long_value":"https://a.example"}
{"token":"tokBBB","long_value":"https://b.example"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fs, err := NewFileStore(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer fs.Close()

	long, err := newAllocator(fs).Resolve(context.Background(), "tokBBB")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", long)
}

func TestFileStore_SkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	content := `{"token":"tokAAA","long_value":"https://a.example"}
not json at all
{"token":"tokAAA","long_value":"https://dup-token.example"}
{"token":"tokBBB","long_value":"https://a.example"}
{"token":"","long_value":"https://empty.example"}
{"token":"tokCCC","long_value":"https://c.example"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	core, logs := observer.New(zap.WarnLevel)
	fs, err := NewFileStore(path, zap.New(core).Sugar())
	require.NoError(t, err)
	defer fs.Close()

	assert.Equal(t, 4, logs.Len())
	ctx := context.Background()
	a := newAllocator(fs)
	assert.NoError(t, a.Verify(ctx))

	long, err := a.Resolve(ctx, "tokAAA")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", long)

	_, err = a.Resolve(ctx, "tokBBB")
	assert.ErrorIs(t, err, bimap.ErrNotFound)

	long, err = a.Resolve(ctx, "tokCCC")
	require.NoError(t, err)
	assert.Equal(t, "https://c.example", long)
}

func TestFileStore_WriteFailureRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	fs, err := NewFileStore(path, zap.NewNop().Sugar())
	require.NoError(t, err)

	// Закрываем дескриптор в обход Close: запись в журнал начнёт падать.
	require.NoError(t, fs.file.Close())

	ctx := context.Background()
	a := newAllocator(fs)
	_, _, err = a.Shorten(ctx, "https://lost.example")
	require.ErrorIs(t, err, bimap.ErrStorageUnavailable)

	assert.NoError(t, a.Verify(ctx))
	assert.Empty(t, fs.idx.data)
	assert.Empty(t, fs.idx.rev)
}

func TestFileStore_PingAfterClose(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "storage.json"), zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, fs.Ping(context.Background()))
	require.NoError(t, fs.Close())
	assert.ErrorIs(t, fs.Ping(context.Background()), os.ErrClosed)
}
