package handler

import (
	"net/http"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"
	"tajeer-server/internal/pagination"
	"tajeer-server/internal/query"
	"tajeer-server/internal/repository"
	"tajeer-server/pkg/logger"
	"tajeer-server/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LookupRequest defines the structure for reference entry requests
type LookupRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"omitempty,oneof=income expense"`
}

func lookupKind(c echo.Context) (string, error) {
	kind := c.Param("kind")
	if !model.IsKnownLookupKind(kind) {
		return "", apperr.Validation("Unknown lookup kind")
	}
	return kind, nil
}

// ListLookups handles retrieving reference entries of one kind
func (h *Handler) ListLookups(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("lookup", "list")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	kind, err := lookupKind(c)
	if err != nil {
		return respondError(c, log, err)
	}

	params := pagination.FromRequest(c)
	filter := repository.LookupFilter{
		Category: c.QueryParam("category"),
	}
	if active := query.BoolParam(c.QueryParam("active_only")); active != nil {
		filter.ActiveOnly = *active
	}

	entries, total, err := h.repos.Lookups.List(c.Request().Context(), userID, kind, filter, params)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Lookup entries retrieved successfully",
		zap.String("kind", kind),
		zap.Int("count", len(entries)))
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"entries":    entries,
		"pagination": params.Envelope(total),
	})
}

// GetLookup resolves an entry by id, including soft-deleted entries so
// historical records keep resolving
func (h *Handler) GetLookup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("lookup", "get")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	if _, err := lookupKind(c); err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid entry ID"))
	}

	entry, err := h.repos.Lookups.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "entry": entry})
}

// CreateLookup handles creating a reference entry
func (h *Handler) CreateLookup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("lookup", "create")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	kind, err := lookupKind(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req LookupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}
	if kind == model.LookupKindTransactionType && req.Category == "" {
		return respondError(c, log, apperr.Validation("category is required for transaction types"))
	}

	entry := model.Lookup{
		Kind:     kind,
		Name:     req.Name,
		Category: req.Category,
	}
	if err := h.repos.Lookups.Create(c.Request().Context(), userID, &entry); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Lookup entry created successfully",
		zap.String("kind", kind),
		zap.Uint("entry_id", entry.ID))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "entry": entry})
}

// UpdateLookup handles renaming a reference entry
func (h *Handler) UpdateLookup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("lookup", "update")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	if _, err := lookupKind(c); err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid entry ID"))
	}

	var req LookupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	entry, err := h.repos.Lookups.Update(c.Request().Context(), userID, id, req.Name, req.Category)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Lookup entry updated successfully", zap.Uint("entry_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "entry": entry})
}

// DeleteLookup soft-deletes a reference entry; the row remains resolvable
// by id for historical records
func (h *Handler) DeleteLookup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("lookup", "delete")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	if _, err := lookupKind(c); err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid entry ID"))
	}

	if err := h.repos.Lookups.Deactivate(c.Request().Context(), userID, id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Lookup entry deactivated", zap.Uint("entry_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Entry deleted successfully"})
}
