package repository

import (
	"context"
	"time"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"
	"tajeer-server/prometheus"

	"gorm.io/gorm"
)

// AttachmentRepository is the gateway for attachment metadata rows.
// Storage objects themselves live behind internal/storage; rows here only
// track keys, URLs and lifecycle status.
type AttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository constructs an attachment gateway
func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts an attachment row
func (r *AttachmentRepository) Create(ctx context.Context, ownerID uint, attachment *model.Attachment) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	attachment.OwnerID = ownerID
	if attachment.Status == "" {
		attachment.Status = model.AttachmentStatusStaged
	}
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return apperr.Unexpected("Failed to save attachment", err)
	}
	return nil
}

// GetByID returns the attachment or NotFound
func (r *AttachmentRepository) GetByID(ctx context.Context, ownerID, id uint) (*model.Attachment, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var attachment model.Attachment
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&attachment).Error
	if err != nil {
		return nil, fetchErr(err, "Attachment", "Failed to retrieve attachment")
	}
	return &attachment, nil
}

// ListByEntity returns all attached rows for one owning record
func (r *AttachmentRepository) ListByEntity(ctx context.Context, ownerID uint, entityType string, entityID uint) ([]model.Attachment, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var attachments []model.Attachment
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND entity_type = ? AND entity_id = ?", ownerID, entityType, entityID).
		Find(&attachments).Error
	if err != nil {
		return nil, apperr.Unexpected("Failed to retrieve attachments", err)
	}
	return attachments, nil
}

// Promote marks a staged attachment as attached to an owning record with
// its permanent storage key and URL
func (r *AttachmentRepository) Promote(ctx context.Context, ownerID, id uint, entityType string, entityID uint, storageKey, url string) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	result := r.db.WithContext(ctx).Model(&model.Attachment{}).
		Where("id = ? AND owner_id = ? AND status = ?", id, ownerID, model.AttachmentStatusStaged).
		Updates(map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"storage_key": storageKey,
			"url":         url,
			"status":      model.AttachmentStatusAttached,
		})
	if result.Error != nil {
		return apperr.Unexpected("Failed to attach document", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Attachment")
	}
	return nil
}

// Delete removes an attachment row. Storage removal is the caller's
// responsibility and must not block row removal.
func (r *AttachmentRepository) Delete(ctx context.Context, ownerID, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Attachment{})
	if result.Error != nil {
		return apperr.Unexpected("Failed to delete attachment", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Attachment")
	}
	return nil
}

// StagedOlderThan returns staged rows created before the cutoff, used by
// the staging sweep
func (r *AttachmentRepository) StagedOlderThan(ctx context.Context, cutoff time.Time) ([]model.Attachment, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var attachments []model.Attachment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.AttachmentStatusStaged, cutoff).
		Find(&attachments).Error
	if err != nil {
		return nil, apperr.Unexpected("Failed to retrieve staged attachments", err)
	}
	return attachments, nil
}

// StagedKeys returns the storage keys of all currently staged rows, used
// by the sweep's orphan pass
func (r *AttachmentRepository) StagedKeys(ctx context.Context) (map[string]struct{}, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var keys []string
	err := r.db.WithContext(ctx).Model(&model.Attachment{}).
		Where("status = ?", model.AttachmentStatusStaged).
		Pluck("storage_key", &keys).Error
	if err != nil {
		return nil, apperr.Unexpected("Failed to retrieve staged attachments", err)
	}

	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set, nil
}

// DeleteRow removes an attachment row without owner scoping, used only by
// the sweep which operates across all tenants
func (r *AttachmentRepository) DeleteRow(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := r.db.WithContext(ctx).Delete(&model.Attachment{}, id).Error; err != nil {
		return apperr.Unexpected("Failed to delete attachment", err)
	}
	return nil
}
