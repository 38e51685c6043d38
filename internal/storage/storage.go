// Package storage implements the two-phase attachment flow over an
// object store: stage into a temporary user-scoped key, then promote by
// copying to a permanent key owned by a record.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"tajeer-server/internal/apperr"

	"github.com/google/uuid"
)

// ObjectStore is the minimal object storage surface the attachment flow needs
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Delete(ctx context.Context, key string) error
	ListPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ObjectInfo describes one stored object
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// StagingPrefix namespaces all temporary objects
const StagingPrefix = "staging/"

// Document attachments accept office documents and common image types.
var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// StagedObject describes a staged upload returned to the client
type StagedObject struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Service implements the attachment flow policy: MIME allow-list, size
// ceilings, key layout and URL derivation
type Service struct {
	store           ObjectStore
	publicBaseURL   string
	maxDocumentSize int64
	maxImageSize    int64
}

// NewService constructs the attachment flow service
func NewService(store ObjectStore, publicBaseURL string, maxDocumentSize, maxImageSize int64) *Service {
	return &Service{
		store:           store,
		publicBaseURL:   strings.TrimRight(publicBaseURL, "/"),
		maxDocumentSize: maxDocumentSize,
		maxImageSize:    maxImageSize,
	}
}

// Stage validates and writes an upload under the temporary user-scoped
// namespace. The key embeds the owner id and upload time so sweeps and
// cross-tenant checks never need to consult the store.
func (s *Service) Stage(ctx context.Context, ownerID uint, fileName, contentType string, size int64, body io.Reader) (*StagedObject, error) {
	if !allowedContentTypes[contentType] {
		return nil, apperr.Validation("File type not allowed")
	}

	ceiling := s.maxDocumentSize
	if isImage(contentType) {
		ceiling = s.maxImageSize
	}
	if size > ceiling {
		return nil, apperr.Validation(fmt.Sprintf("File exceeds the maximum size of %d bytes", ceiling))
	}

	key := fmt.Sprintf("%s%d/%d-%s-%s", StagingPrefix, ownerID, time.Now().Unix(), uuid.New().String(), sanitizeFileName(fileName))
	if err := s.store.Put(ctx, key, contentType, body, size); err != nil {
		return nil, apperr.Unexpected("Failed to upload file", err)
	}

	return &StagedObject{
		Key:         key,
		URL:         s.URLFor(key),
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Promote copies a staged object to its permanent key under the owning
// record. The temporary object is left for the sweeper.
func (s *Service) Promote(ctx context.Context, stagedKey, entityType string, entityID uint, fileName string) (string, string, error) {
	if !strings.HasPrefix(stagedKey, StagingPrefix) {
		return "", "", apperr.Validation("Attachment is not staged")
	}

	permanentKey := fmt.Sprintf("%s/%d/%s-%s", entityType, entityID, uuid.New().String(), sanitizeFileName(fileName))
	if err := s.store.Copy(ctx, stagedKey, permanentKey); err != nil {
		return "", "", apperr.Unexpected("Failed to attach file", err)
	}
	return permanentKey, s.URLFor(permanentKey), nil
}

// Remove deletes a storage object
func (s *Service) Remove(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return apperr.Unexpected("Failed to remove file", err)
	}
	return nil
}

// URLFor derives the public retrieval URL for a storage key
func (s *Service) URLFor(key string) string {
	if s.publicBaseURL == "" {
		return "/" + key
	}
	return s.publicBaseURL + "/" + key
}

// OwnsStagedKey reports whether a staged key belongs to the given user,
// preventing cross-tenant promotion of temporary files
func OwnsStagedKey(key string, ownerID uint) bool {
	return strings.HasPrefix(key, fmt.Sprintf("%s%d/", StagingPrefix, ownerID))
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		name = "file"
	}
	return name
}
