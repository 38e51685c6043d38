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

// BranchRequest defines the structure for branch creation/update requests
type BranchRequest struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code"`
	City     string `json:"city"`
	IsActive *bool  `json:"is_active"`
}

// ListBranches handles retrieving branches with filtering and pagination
func (h *Handler) ListBranches(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("branch", "list")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	params := pagination.FromRequest(c)
	filter := repository.BranchFilter{
		IsActive: query.BoolParam(c.QueryParam("is_active")),
		City:     c.QueryParam("city"),
	}

	branches, total, err := h.repos.Branches.List(c.Request().Context(), userID, filter, params)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Branches retrieved successfully", zap.Int("count", len(branches)))
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"branches":   branches,
		"pagination": params.Envelope(total),
	})
}

// GetBranch handles retrieving a single branch by ID
func (h *Handler) GetBranch(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("branch", "get")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid branch ID"))
	}

	branch, err := h.repos.Branches.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "branch": branch})
}

// CreateBranch handles creating a new branch
func (h *Handler) CreateBranch(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("branch", "create")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req BranchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	branch := model.Branch{
		Name:     req.Name,
		Code:     req.Code,
		City:     req.City,
		IsActive: true,
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if err := h.repos.Branches.Create(c.Request().Context(), userID, &branch); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Branch created successfully", zap.Uint("branch_id", branch.ID), zap.String("name", branch.Name))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "branch": branch})
}

// UpdateBranch handles updating an existing branch
func (h *Handler) UpdateBranch(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("branch", "update")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid branch ID"))
	}

	var req BranchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	branch, err := h.repos.Branches.Update(c.Request().Context(), userID, id, func(m *model.Branch) {
		m.Name = req.Name
		m.Code = req.Code
		m.City = req.City
		if req.IsActive != nil {
			m.IsActive = *req.IsActive
		}
	})
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Branch updated successfully", zap.Uint("branch_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "branch": branch})
}

// DeleteBranch handles deleting a branch. Deletion is refused while
// vehicles are still assigned to it.
func (h *Handler) DeleteBranch(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("branch", "delete")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid branch ID"))
	}

	if err := h.repos.Branches.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Branch deleted successfully", zap.Uint("branch_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Branch deleted successfully"})
}
