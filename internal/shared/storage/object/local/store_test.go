package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func TestSaveAndOpen(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	stored, err := store.Save(ctx, "guest:abc", "keripik.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngBytes)), stored.SizeBytes)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.True(t, strings.HasSuffix(stored.Key, "_keripik.png"))
	assert.NotContains(t, stored.Key, "guest:abc")

	rc, err := store.Open(ctx, stored.Key)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)
}

func TestSaveRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Save(context.Background(), "u1", "../etc/passwd", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = store.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestSaveHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(t.TempDir()).Save(ctx, "u1", "a.png", bytes.NewReader(pngBytes))
	assert.ErrorIs(t, err, context.Canceled)
}
