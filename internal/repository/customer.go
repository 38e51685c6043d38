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

// CustomerFilter holds the optional structured filters for customer listings
type CustomerFilter struct {
	ClassificationIDs []uint
	NationalityIDs    []uint
	LicenseTypeID     uint
}

var customerSortColumns = map[string]string{
	"createdAt":  "created_at",
	"fullName":   "full_name",
	"nationalId": "national_id",
}

// CustomerRepository is the gateway for rental customers
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository constructs a customer gateway
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List returns one page of customers matching the filter conjunction
func (r *CustomerRepository) List(ctx context.Context, ownerID uint, f CustomerFilter, p pagination.Params) ([]model.Customer, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	b := query.New()
	b.In("classification_id", f.ClassificationIDs)
	b.In("nationality_id", f.NationalityIDs)
	if f.LicenseTypeID != 0 {
		b.Equal("license_type_id", f.LicenseTypeID)
	}
	b.Search(p.Search, "full_name", "full_name", "national_id", "mobile")

	tx := b.Apply(r.db.WithContext(ctx).Model(&model.Customer{}).Where("owner_id = ?", ownerID))

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve customers", err)
	}

	tx = tx.Order(query.Order(p.SortBy, p.SortOrder, customerSortColumns, "created_at"))
	if !p.Unlimited() {
		tx = tx.Limit(p.Limit).Offset(p.Offset())
	}

	var customers []model.Customer
	if err := tx.Find(&customers).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve customers", err)
	}
	return customers, total, nil
}

// GetByID returns the customer or NotFound
func (r *CustomerRepository) GetByID(ctx context.Context, ownerID, id uint) (*model.Customer, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&customer).Error
	if err != nil {
		return nil, fetchErr(err, "Customer", "Failed to retrieve customer")
	}
	return &customer, nil
}

// Create inserts a customer after pre-checking national id uniqueness
func (r *CustomerRepository) Create(ctx context.Context, ownerID uint, customer *model.Customer) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	customer.NationalID = strings.TrimSpace(customer.NationalID)
	customer.OwnerID = ownerID

	var count int64
	r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("owner_id = ? AND national_id = ?", ownerID, customer.NationalID).
		Count(&count)
	if count > 0 {
		return apperr.Duplicate("Customer with this national ID already exists")
	}

	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return writeErr(err, "Customer with this national ID already exists", "Failed to create customer")
	}
	return nil
}

// Update applies changes to an owned customer, re-checking national id
// uniqueness against other rows when it changes
func (r *CustomerRepository) Update(ctx context.Context, ownerID uint, id uint, apply func(*model.Customer)) (*model.Customer, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	customer, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldNationalID := customer.NationalID
	apply(customer)
	customer.NationalID = strings.TrimSpace(customer.NationalID)
	customer.OwnerID = ownerID

	if customer.NationalID != oldNationalID {
		var count int64
		r.db.WithContext(ctx).Model(&model.Customer{}).
			Where("owner_id = ? AND national_id = ? AND id != ?", ownerID, customer.NationalID, id).
			Count(&count)
		if count > 0 {
			return nil, apperr.Duplicate("Customer with this national ID already exists")
		}
	}

	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, writeErr(err, "Customer with this national ID already exists", "Failed to update customer")
	}
	return customer, nil
}

// Delete removes an owned customer
func (r *CustomerRepository) Delete(ctx context.Context, ownerID, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Customer{})
	if result.Error != nil {
		return apperr.Unexpected("Failed to delete customer", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Customer")
	}
	return nil
}
