package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/apperr"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/storage"
)

// allowedMedia maps accepted extensions to their kind and the MIME types
// that may accompany them. Extension and MIME must match together.
var allowedMedia = map[string]struct {
	kind  string
	mimes []string
}{
	".jpg":  {models.MediaTypeImage, []string{"image/jpeg"}},
	".jpeg": {models.MediaTypeImage, []string{"image/jpeg"}},
	".png":  {models.MediaTypeImage, []string{"image/png"}},
	".gif":  {models.MediaTypeImage, []string{"image/gif"}},
	".mp4":  {models.MediaTypeVideo, []string{"video/mp4"}},
	".mov":  {models.MediaTypeVideo, []string{"video/quicktime"}},
	".avi":  {models.MediaTypeVideo, []string{"video/x-msvideo", "video/avi"}},
	".webm": {models.MediaTypeVideo, []string{"video/webm"}},
}

// UploadService is the upload gateway: a validated pass-through to the
// object store. No scanning, no transcoding.
type UploadService struct {
	store   storage.ObjectStore
	maxSize int64
}

func NewUploadService(store storage.ObjectStore, maxSizeMB int) *UploadService {
	return &UploadService{store: store, maxSize: int64(maxSizeMB) * 1024 * 1024}
}

// MaxSize returns the upload size ceiling in bytes.
func (s *UploadService) MaxSize() int64 { return s.maxSize }

// Store validates and persists one file, returning its descriptor. The
// stored name is generated, so concurrent uploads of the same file cannot
// collide.
func (s *UploadService) Store(ctx context.Context, originalName, contentType string, data []byte) (*models.FileInfo, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("no file uploaded")
	}
	if int64(len(data)) > s.maxSize {
		return nil, apperr.Validation(fmt.Sprintf("file exceeds the %d MB limit", s.maxSize/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	allowed, ok := allowedMedia[ext]
	if !ok {
		return nil, apperr.Validation("only images and videos are allowed")
	}
	if !mimeMatches(contentType, allowed.mimes) {
		return nil, apperr.Validation("file content type does not match its extension")
	}

	storedName := fmt.Sprintf("story-%s%s", uuid.NewString(), ext)
	key := "stories/" + storedName
	url, err := s.store.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &models.FileInfo{
		Type:         allowed.kind,
		Size:         int64(len(data)),
		Filename:     storedName,
		OriginalName: originalName,
		URL:          url,
	}, nil
}

func mimeMatches(contentType string, allowed []string) bool {
	// strip parameters like "; charset=..."
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	for _, m := range allowed {
		if contentType == m {
			return true
		}
	}
	return false
}
