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

// VehicleFilter holds the optional structured filters for vehicle listings
type VehicleFilter struct {
	Status       string
	BranchIDs    []uint
	Make         string
	MinDailyRate *float64
	MaxDailyRate *float64
}

func (f VehicleFilter) hasStructured() bool {
	return f.Status != "" || len(f.BranchIDs) > 0 || f.Make != "" ||
		f.MinDailyRate != nil || f.MaxDailyRate != nil
}

var vehicleSortColumns = map[string]string{
	"createdAt":   "created_at",
	"plateNumber": "plate_number",
	"dailyRate":   "daily_rate",
	"year":        "year",
}

// VehicleRepository is the gateway for fleet vehicles
type VehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository constructs a vehicle gateway
func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// List returns one page of vehicles matching the filter conjunction.
// When no structured filters are active the free-text search broadens to
// plate/make/model/color plus branch-name matches resolved concurrently;
// otherwise it narrows to the plate number column.
func (r *VehicleRepository) List(ctx context.Context, ownerID uint, f VehicleFilter, p pagination.Params) ([]model.Vehicle, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	tx := r.db.WithContext(ctx).Model(&model.Vehicle{}).Where("owner_id = ?", ownerID)

	if f.hasStructured() {
		b := query.New()
		if f.Status != "" {
			b.Equal("status", f.Status)
		}
		if f.Make != "" {
			b.Equal("make", f.Make)
		}
		b.In("branch_id", f.BranchIDs)
		b.Min("daily_rate", f.MinDailyRate)
		b.Max("daily_rate", f.MaxDailyRate)
		b.Search(p.Search, "plate_number")
		tx = b.Apply(tx)
	} else if search := strings.TrimSpace(p.Search); search != "" {
		branchIDs, err := r.matchingBranchIDs(ctx, ownerID, search)
		if err != nil {
			return nil, 0, apperr.Unexpected("Failed to retrieve vehicles", err)
		}

		pattern := "%" + strings.ToLower(search) + "%"
		clause := "(LOWER(plate_number) LIKE ? OR LOWER(make) LIKE ? OR LOWER(model) LIKE ? OR LOWER(color) LIKE ?"
		args := []interface{}{pattern, pattern, pattern, pattern}
		if len(branchIDs) > 0 {
			clause += " OR branch_id IN ?"
			args = append(args, branchIDs)
		}
		clause += ")"
		tx = tx.Where(clause, args...)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve vehicles", err)
	}

	tx = tx.Order(query.Order(p.SortBy, p.SortOrder, vehicleSortColumns, "created_at"))
	if !p.Unlimited() {
		tx = tx.Limit(p.Limit).Offset(p.Offset())
	}

	var vehicles []model.Vehicle
	if err := tx.Find(&vehicles).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve vehicles", err)
	}
	return vehicles, total, nil
}

// matchingBranchIDs resolves branch ids whose name matches the search text.
// Kept as a fan-out so further lookup matches can run alongside it.
func (r *VehicleRepository) matchingBranchIDs(ctx context.Context, ownerID uint, search string) ([]uint, error) {
	pattern := "%" + strings.ToLower(search) + "%"
	return query.ResolveIDs(ctx,
		func(ctx context.Context) ([]uint, error) {
			var ids []uint
			err := r.db.WithContext(ctx).Model(&model.Branch{}).
				Where("owner_id = ? AND LOWER(name) LIKE ?", ownerID, pattern).
				Pluck("id", &ids).Error
			return ids, err
		},
	)
}

// GetByID returns the vehicle or NotFound; foreign ownership is
// indistinguishable from absence
func (r *VehicleRepository) GetByID(ctx context.Context, ownerID, id uint) (*model.Vehicle, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&vehicle).Error
	if err != nil {
		return nil, fetchErr(err, "Vehicle", "Failed to retrieve vehicle")
	}
	return &vehicle, nil
}

// Create inserts a vehicle after normalizing the plate number and
// pre-checking uniqueness. The store constraint remains authoritative.
func (r *VehicleRepository) Create(ctx context.Context, ownerID uint, vehicle *model.Vehicle) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	vehicle.PlateNumber = strings.ToUpper(strings.TrimSpace(vehicle.PlateNumber))
	vehicle.OwnerID = ownerID

	var count int64
	r.db.WithContext(ctx).Model(&model.Vehicle{}).
		Where("owner_id = ? AND plate_number = ?", ownerID, vehicle.PlateNumber).
		Count(&count)
	if count > 0 {
		return apperr.Duplicate("Vehicle with this plate number already exists")
	}

	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return writeErr(err, "Vehicle with this plate number already exists", "Failed to create vehicle")
	}
	return nil
}

// Update applies changes to an owned vehicle, re-checking plate uniqueness
// against other rows when it changes
func (r *VehicleRepository) Update(ctx context.Context, ownerID uint, id uint, apply func(*model.Vehicle)) (*model.Vehicle, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	vehicle, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldPlate := vehicle.PlateNumber
	apply(vehicle)
	vehicle.PlateNumber = strings.ToUpper(strings.TrimSpace(vehicle.PlateNumber))
	vehicle.OwnerID = ownerID

	if vehicle.PlateNumber != oldPlate {
		var count int64
		r.db.WithContext(ctx).Model(&model.Vehicle{}).
			Where("owner_id = ? AND plate_number = ? AND id != ?", ownerID, vehicle.PlateNumber, id).
			Count(&count)
		if count > 0 {
			return nil, apperr.Duplicate("Vehicle with this plate number already exists")
		}
	}

	if err := r.db.WithContext(ctx).Save(vehicle).Error; err != nil {
		return nil, writeErr(err, "Vehicle with this plate number already exists", "Failed to update vehicle")
	}
	return vehicle, nil
}

// Delete removes an owned vehicle
func (r *VehicleRepository) Delete(ctx context.Context, ownerID, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Vehicle{})
	if result.Error != nil {
		return apperr.Unexpected("Failed to delete vehicle", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Vehicle")
	}
	return nil
}

// CountByBranch counts vehicles referencing a branch, used by the branch
// delete guard
func (r *VehicleRepository) CountByBranch(ctx context.Context, ownerID, branchID uint) (int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Vehicle{}).
		Where("owner_id = ? AND branch_id = ?", ownerID, branchID).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Unexpected("Failed to count vehicles", err)
	}
	return count, nil
}
