package repository

import (
	"context"
	"strings"
	"time"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"
	"tajeer-server/internal/pagination"
	"tajeer-server/internal/query"
	"tajeer-server/prometheus"

	"gorm.io/gorm"
)

// BranchFilter holds the optional structured filters for branch listings
type BranchFilter struct {
	IsActive *bool
	City     string
}

var branchSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"city":      "city",
}

// BranchRepository is the gateway for branch offices
type BranchRepository struct {
	db       *gorm.DB
	vehicles *VehicleRepository
}

// NewBranchRepository constructs a branch gateway
func NewBranchRepository(db *gorm.DB) *BranchRepository {
	return &BranchRepository{db: db, vehicles: NewVehicleRepository(db)}
}

// List returns one page of branches matching the filter conjunction
func (r *BranchRepository) List(ctx context.Context, ownerID uint, f BranchFilter, p pagination.Params) ([]model.Branch, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	b := query.New()
	b.Flag("is_active", f.IsActive)
	if f.City != "" {
		b.Equal("city", f.City)
	}
	b.Search(p.Search, "name", "name", "code", "city")

	tx := b.Apply(r.db.WithContext(ctx).Model(&model.Branch{}).Where("owner_id = ?", ownerID))

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve branches", err)
	}

	tx = tx.Order(query.Order(p.SortBy, p.SortOrder, branchSortColumns, "created_at"))
	if !p.Unlimited() {
		tx = tx.Limit(p.Limit).Offset(p.Offset())
	}

	var branches []model.Branch
	if err := tx.Find(&branches).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve branches", err)
	}
	return branches, total, nil
}

// GetByID returns the branch or NotFound
func (r *BranchRepository) GetByID(ctx context.Context, ownerID, id uint) (*model.Branch, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var branch model.Branch
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&branch).Error
	if err != nil {
		return nil, fetchErr(err, "Branch", "Failed to retrieve branch")
	}
	return &branch, nil
}

// Create inserts a branch after pre-checking name uniqueness
func (r *BranchRepository) Create(ctx context.Context, ownerID uint, branch *model.Branch) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	branch.Name = strings.TrimSpace(branch.Name)
	branch.OwnerID = ownerID

	var count int64
	r.db.WithContext(ctx).Model(&model.Branch{}).
		Where("owner_id = ? AND name = ?", ownerID, branch.Name).
		Count(&count)
	if count > 0 {
		return apperr.Duplicate("Branch with this name already exists")
	}

	if err := r.db.WithContext(ctx).Create(branch).Error; err != nil {
		return writeErr(err, "Branch with this name already exists", "Failed to create branch")
	}
	return nil
}

// Update applies changes to an owned branch, re-checking name uniqueness
// against other rows when it changes
func (r *BranchRepository) Update(ctx context.Context, ownerID uint, id uint, apply func(*model.Branch)) (*model.Branch, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	branch, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldName := branch.Name
	apply(branch)
	branch.Name = strings.TrimSpace(branch.Name)
	branch.OwnerID = ownerID

	if branch.Name != oldName {
		var count int64
		r.db.WithContext(ctx).Model(&model.Branch{}).
			Where("owner_id = ? AND name = ? AND id != ?", ownerID, branch.Name, id).
			Count(&count)
		if count > 0 {
			return nil, apperr.Duplicate("Branch with this name already exists")
		}
	}

	if err := r.db.WithContext(ctx).Save(branch).Error; err != nil {
		return nil, writeErr(err, "Branch with this name already exists", "Failed to update branch")
	}
	return branch, nil
}

// Delete removes an owned branch unless vehicles still reference it
func (r *BranchRepository) Delete(ctx context.Context, ownerID, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	if _, err := r.GetByID(ctx, ownerID, id); err != nil {
		return err
	}

	dependents, err := r.vehicles.CountByBranch(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if dependents > 0 {
		return apperr.HasDependents("Branch has vehicles assigned to it and cannot be deleted")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Branch{})
	if result.Error != nil {
		return apperr.Unexpected("Failed to delete branch", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Branch")
	}
	return nil
}
