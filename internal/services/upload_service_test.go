package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/apperr"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
)

func TestUploadStore(t *testing.T) {
	store := newFakeObjectStore()
	svc := NewUploadService(store, 1) // 1 MB ceiling
	ctx := context.Background()

	t.Run("empty file", func(t *testing.T) {
		_, err := svc.Store(ctx, "pic.png", "image/png", nil)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("oversize file", func(t *testing.T) {
		big := bytes.Repeat([]byte{0xff}, 1024*1024+1)
		_, err := svc.Store(ctx, "pic.png", "image/png", big)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("disallowed extension", func(t *testing.T) {
		_, err := svc.Store(ctx, "script.exe", "application/octet-stream", []byte("xx"))
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("extension and MIME must agree", func(t *testing.T) {
		_, err := svc.Store(ctx, "clip.mp4", "image/png", []byte("xx"))
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("image upload", func(t *testing.T) {
		info, err := svc.Store(ctx, "pic.PNG", "image/png", []byte("pngdata"))
		require.NoError(t, err)
		assert.Equal(t, models.MediaTypeImage, info.Type)
		assert.Equal(t, "pic.PNG", info.OriginalName)
		assert.Equal(t, int64(7), info.Size)
		assert.True(t, strings.HasPrefix(info.Filename, "story-"))
		assert.True(t, strings.HasSuffix(info.Filename, ".png"))
		assert.Contains(t, info.URL, "stories/")
	})

	t.Run("video upload with MIME parameters", func(t *testing.T) {
		info, err := svc.Store(ctx, "clip.webm", "video/webm; codecs=vp9", []byte("webmdata"))
		require.NoError(t, err)
		assert.Equal(t, models.MediaTypeVideo, info.Type)
	})

	t.Run("same name twice yields distinct keys", func(t *testing.T) {
		a, err := svc.Store(ctx, "dup.jpg", "image/jpeg", []byte("one"))
		require.NoError(t, err)
		b, err := svc.Store(ctx, "dup.jpg", "image/jpeg", []byte("two"))
		require.NoError(t, err)
		assert.NotEqual(t, a.Filename, b.Filename)
		assert.NotEqual(t, a.URL, b.URL)
	})
}
