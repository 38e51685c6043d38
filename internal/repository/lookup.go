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

// LookupFilter holds the optional structured filters for lookup listings
type LookupFilter struct {
	ActiveOnly bool
	Category   string
}

var lookupSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
}

// LookupRepository is the gateway for reference/configuration entries.
// Entries soft-delete via is_active so historical records keep resolving
// them by id.
type LookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository constructs a lookup gateway
func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// List returns one page of lookup entries of one kind
func (r *LookupRepository) List(ctx context.Context, ownerID uint, kind string, f LookupFilter, p pagination.Params) ([]model.Lookup, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	b := query.New()
	if f.ActiveOnly {
		active := true
		b.Flag("is_active", &active)
	}
	if f.Category != "" {
		b.Equal("category", f.Category)
	}
	b.Search(p.Search, "name")

	tx := b.Apply(r.db.WithContext(ctx).Model(&model.Lookup{}).
		Where("owner_id = ? AND kind = ?", ownerID, kind))

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve entries", err)
	}

	tx = tx.Order(query.Order(p.SortBy, p.SortOrder, lookupSortColumns, "name"))
	if !p.Unlimited() {
		tx = tx.Limit(p.Limit).Offset(p.Offset())
	}

	var entries []model.Lookup
	if err := tx.Find(&entries).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve entries", err)
	}
	return entries, total, nil
}

// GetByID resolves an entry by id regardless of its active flag, so
// soft-deleted entries referenced by historical records still resolve
func (r *LookupRepository) GetByID(ctx context.Context, ownerID, id uint) (*model.Lookup, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var entry model.Lookup
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&entry).Error
	if err != nil {
		return nil, fetchErr(err, "Entry", "Failed to retrieve entry")
	}
	return &entry, nil
}

// Create inserts an entry after a case-sensitive pre-check on the name
// within the same kind. The store constraint remains authoritative.
func (r *LookupRepository) Create(ctx context.Context, ownerID uint, entry *model.Lookup) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	entry.Name = strings.TrimSpace(entry.Name)
	entry.OwnerID = ownerID
	entry.IsActive = true

	var count int64
	r.db.WithContext(ctx).Model(&model.Lookup{}).
		Where("owner_id = ? AND kind = ? AND name = ?", ownerID, entry.Kind, entry.Name).
		Count(&count)
	if count > 0 {
		return apperr.Duplicate("Entry with this name already exists")
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return writeErr(err, "Entry with this name already exists", "Failed to create entry")
	}
	return nil
}

// Update renames an entry, rejecting names that exist on a different id
// within the same kind
func (r *LookupRepository) Update(ctx context.Context, ownerID, id uint, name, category string) (*model.Lookup, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	entry, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	var count int64
	r.db.WithContext(ctx).Model(&model.Lookup{}).
		Where("owner_id = ? AND kind = ? AND name = ? AND id != ?", ownerID, entry.Kind, name, id).
		Count(&count)
	if count > 0 {
		return nil, apperr.Duplicate("Entry with this name already exists")
	}

	entry.Name = name
	if category != "" {
		entry.Category = category
	}
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, writeErr(err, "Entry with this name already exists", "Failed to update entry")
	}
	return entry, nil
}

// Deactivate soft-deletes an entry; the row stays resolvable by id
func (r *LookupRepository) Deactivate(ctx context.Context, ownerID, id uint) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	result := r.db.WithContext(ctx).Model(&model.Lookup{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("is_active", false)
	if result.Error != nil {
		return apperr.Unexpected("Failed to delete entry", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Entry")
	}
	return nil
}

// CategoryMap returns an id to category map for one kind, used by the
// finance summary's in-process join
func (r *LookupRepository) CategoryMap(ctx context.Context, ownerID uint, kind string) (map[uint]string, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var entries []model.Lookup
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND kind = ?", ownerID, kind).
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Unexpected("Failed to retrieve entries", err)
	}

	categories := make(map[uint]string, len(entries))
	for _, entry := range entries {
		categories[entry.ID] = entry.Category
	}
	return categories, nil
}
