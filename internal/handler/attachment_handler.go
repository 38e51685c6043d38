package handler

import (
	"net/http"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"
	"tajeer-server/internal/query"
	"tajeer-server/internal/storage"
	"tajeer-server/pkg/logger"
	"tajeer-server/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var attachableEntityTypes = map[string]bool{
	"contract": true,
	"vehicle":  true,
	"customer": true,
}

// UploadAttachment handles the staging phase of the attachment flow: the
// file is validated, written under a temporary user-scoped key and a
// staged row is recorded. Nothing references the upload until promotion.
func (h *Handler) UploadAttachment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("attachment", "upload")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		prometheus.RecordUpload("stage", "rejected")
		return respondError(c, log, apperr.Validation("file is required"))
	}

	fileName := c.FormValue("documentName")
	if fileName == "" {
		fileName = fileHeader.Filename
	}
	contentType := c.FormValue("documentType")
	if contentType == "" {
		contentType = fileHeader.Header.Get("Content-Type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		prometheus.RecordUpload("stage", "error")
		return respondError(c, log, apperr.Unexpected("Failed to read upload", err))
	}
	defer src.Close()

	staged, err := h.files.Stage(c.Request().Context(), userID, fileName, contentType, fileHeader.Size, src)
	if err != nil {
		if apperr.IsKind(err, apperr.KindValidation) {
			prometheus.RecordUpload("stage", "rejected")
		} else {
			prometheus.RecordUpload("stage", "error")
		}
		return respondError(c, log, err)
	}

	attachment := model.Attachment{
		FileName:    staged.FileName,
		ContentType: staged.ContentType,
		Size:        staged.Size,
		StorageKey:  staged.Key,
		URL:         staged.URL,
	}
	if err := h.repos.Attachments.Create(c.Request().Context(), userID, &attachment); err != nil {
		// keep storage and rows consistent if the row insert fails
		_ = h.files.Remove(c.Request().Context(), staged.Key)
		prometheus.RecordUpload("stage", "error")
		return respondError(c, log, err)
	}

	prometheus.RecordUpload("stage", "success")
	log.Info("Attachment staged",
		zap.Uint("attachment_id", attachment.ID),
		zap.String("file_name", attachment.FileName))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "attachment": attachment})
}

// ListAttachments returns the attached documents of one owning record
func (h *Handler) ListAttachments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("attachment", "list")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	entityType := c.QueryParam("entityType")
	entityID := query.UintParam(c.QueryParam("entityId"))
	if !attachableEntityTypes[entityType] || entityID == 0 {
		return respondError(c, log, apperr.Validation("entityType and entityId are required"))
	}

	attachments, err := h.repos.Attachments.ListByEntity(c.Request().Context(), userID, entityType, entityID)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "attachments": attachments})
}

// GetAttachment handles retrieving a single attachment by ID
func (h *Handler) GetAttachment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("attachment", "get")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid attachment ID"))
	}

	attachment, err := h.repos.Attachments.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "attachment": attachment})
}

// AttachRequest promotes a staged attachment onto an owning record
type AttachRequest struct {
	EntityType string `json:"entity_type" validate:"required,oneof=contract vehicle customer"`
	EntityID   uint   `json:"entity_id" validate:"required"`
}

// AttachAttachment handles the promotion phase: the staged object is copied
// to its permanent key under the owning record and the row is marked
// attached. The temporary object is reclaimed by the staging sweep.
func (h *Handler) AttachAttachment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("attachment", "attach")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid attachment ID"))
	}

	var req AttachRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	attachment, err := h.promoteAttachment(c, userID, id, req.EntityType, req.EntityID)
	if err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordUpload("promote", "success")
	log.Info("Attachment promoted",
		zap.Uint("attachment_id", attachment.ID),
		zap.String("entity_type", req.EntityType),
		zap.Uint("entity_id", req.EntityID))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "attachment": attachment})
}

// promoteAttachment runs the shared promotion sequence used by direct
// attach requests and wizard submissions
func (h *Handler) promoteAttachment(c echo.Context, userID, id uint, entityType string, entityID uint) (*model.Attachment, error) {
	ctx := c.Request().Context()

	attachment, err := h.repos.Attachments.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if attachment.Status != model.AttachmentStatusStaged {
		return nil, apperr.Validation("Attachment is not staged")
	}
	// the key embeds the uploading user; a row match alone is not enough
	if !storage.OwnsStagedKey(attachment.StorageKey, userID) {
		return nil, apperr.NotFound("Attachment")
	}

	permanentKey, url, err := h.files.Promote(ctx, attachment.StorageKey, entityType, entityID, attachment.FileName)
	if err != nil {
		prometheus.RecordUpload("promote", "error")
		return nil, err
	}

	if err := h.repos.Attachments.Promote(ctx, userID, id, entityType, entityID, permanentKey, url); err != nil {
		prometheus.RecordUpload("promote", "error")
		return nil, err
	}

	attachment.EntityType = entityType
	attachment.EntityID = &entityID
	attachment.StorageKey = permanentKey
	attachment.URL = url
	attachment.Status = model.AttachmentStatusAttached
	return attachment, nil
}

// DeleteAttachment removes an attachment. The storage object is removed
// best-effort first; a failed object delete does not block row removal
// because the sweep reclaims leftovers.
func (h *Handler) DeleteAttachment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("attachment", "delete")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid attachment ID"))
	}

	attachment, err := h.repos.Attachments.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}

	if err := h.files.Remove(c.Request().Context(), attachment.StorageKey); err != nil {
		log.Warn("Failed to remove attachment object, leaving it for the sweep",
			zap.String("storage_key", attachment.StorageKey),
			zap.Error(err))
	}

	if err := h.repos.Attachments.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Attachment deleted", zap.Uint("attachment_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Attachment deleted successfully"})
}
