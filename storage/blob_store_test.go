package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes() []byte {
	return []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
}

func TestDetectReceipt(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		max     int64
		want    string
		wantErr error
	}{
		{name: "png", data: pngBytes(t), want: "image/png"},
		{name: "gif", data: gifBytes(), want: "image/gif"},
		{name: "jpeg", data: []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01"), want: "image/jpeg"},
		{name: "pdf rejected", data: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), wantErr: ErrUnsupportedType},
		{name: "text rejected", data: []byte("hello"), wantErr: ErrUnsupportedType},
		{name: "empty", data: nil, wantErr: ErrEmpty},
		{name: "too large", data: gifBytes(), max: 4, wantErr: ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectReceipt(tt.data, tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalBlobStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalBlobStore(dir, 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultMaxReceiptSize), store.MaxSize())
	ctx := context.Background()

	data := pngBytes(t)
	key, err := store.Put(ctx, data)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "image/png", ContentTypeForKey(key))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrBlobNotFound)
	assert.NoError(t, store.Delete(ctx, key))

	_, err = store.Put(ctx, []byte("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Open(ctx, "../escape.png")
	assert.Error(t, err)
}
