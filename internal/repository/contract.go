package repository

import (
	"context"
	"fmt"
	"time"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"
	"tajeer-server/internal/pagination"
	"tajeer-server/internal/query"
	"tajeer-server/prometheus"

	"gorm.io/gorm"
)

// ContractFilter holds the optional structured filters for contract listings
type ContractFilter struct {
	Status     string
	CustomerID uint
	VehicleID  uint
	StartFrom  *time.Time
	EndTo      *time.Time
}

var contractSortColumns = map[string]string{
	"createdAt":      "created_at",
	"startDate":      "start_date",
	"endDate":        "end_date",
	"totalAmount":    "total_amount",
	"contractNumber": "contract_number",
}

// ContractRepository is the gateway for rental contracts
type ContractRepository struct {
	db *gorm.DB
}

// NewContractRepository constructs a contract gateway
func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// List returns one page of contracts matching the filter conjunction
func (r *ContractRepository) List(ctx context.Context, ownerID uint, f ContractFilter, p pagination.Params) ([]model.Contract, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	b := query.New()
	if f.Status != "" {
		b.Equal("status", f.Status)
	}
	if f.CustomerID != 0 {
		b.Equal("customer_id", f.CustomerID)
	}
	if f.VehicleID != 0 {
		b.Equal("vehicle_id", f.VehicleID)
	}
	b.From("start_date", f.StartFrom)
	b.To("end_date", f.EndTo)
	b.Search(p.Search, "contract_number", "contract_number", "insurance_type", "inspector_name")

	tx := b.Apply(r.db.WithContext(ctx).Model(&model.Contract{}).Where("owner_id = ?", ownerID))

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve contracts", err)
	}

	tx = tx.Order(query.Order(p.SortBy, p.SortOrder, contractSortColumns, "created_at"))
	if !p.Unlimited() {
		tx = tx.Limit(p.Limit).Offset(p.Offset())
	}

	var contracts []model.Contract
	if err := tx.Find(&contracts).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve contracts", err)
	}
	return contracts, total, nil
}

// GetByID returns the contract or NotFound
func (r *ContractRepository) GetByID(ctx context.Context, ownerID, id uint) (*model.Contract, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var contract model.Contract
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&contract).Error
	if err != nil {
		return nil, fetchErr(err, "Contract", "Failed to retrieve contract")
	}
	return &contract, nil
}

// Create inserts a contract. The contract number is generated here when
// absent. The referenced customer and vehicle must be owned rows; the
// vehicle is flipped to rented in the same transaction.
func (r *ContractRepository) Create(ctx context.Context, ownerID uint, contract *model.Contract) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	contract.OwnerID = ownerID
	if contract.Status == "" {
		contract.Status = model.ContractStatusActive
	}
	if contract.ContractNumber == "" {
		contract.ContractNumber = fmt.Sprintf("CT-%d-%d", ownerID, time.Now().UnixNano())
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.Where("id = ? AND owner_id = ?", contract.CustomerID, ownerID).First(&customer).Error; err != nil {
			return fetchErr(err, "Customer", "Failed to create contract")
		}

		var vehicle model.Vehicle
		if err := tx.Where("id = ? AND owner_id = ?", contract.VehicleID, ownerID).First(&vehicle).Error; err != nil {
			return fetchErr(err, "Vehicle", "Failed to create contract")
		}

		if err := tx.Create(contract).Error; err != nil {
			return writeErr(err, "Contract with this number already exists", "Failed to create contract")
		}

		if err := tx.Model(&model.Vehicle{}).
			Where("id = ? AND owner_id = ?", vehicle.ID, ownerID).
			Update("status", model.VehicleStatusRented).Error; err != nil {
			return apperr.Unexpected("Failed to create contract", err)
		}
		return nil
	})
	return err
}

// Update applies changes to an owned contract
func (r *ContractRepository) Update(ctx context.Context, ownerID uint, id uint, apply func(*model.Contract)) (*model.Contract, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	contract, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	apply(contract)
	contract.OwnerID = ownerID

	if err := r.db.WithContext(ctx).Save(contract).Error; err != nil {
		return nil, writeErr(err, "Contract with this number already exists", "Failed to update contract")
	}
	return contract, nil
}

// Delete removes an owned contract
func (r *ContractRepository) Delete(ctx context.Context, ownerID, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Contract{})
	if result.Error != nil {
		return apperr.Unexpected("Failed to delete contract", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Contract")
	}
	return nil
}

// ListByCustomer returns all contracts for a customer, used by the summary
// reporter which reduces in-process
func (r *ContractRepository) ListByCustomer(ctx context.Context, ownerID, customerID uint) ([]model.Contract, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND customer_id = ?", ownerID, customerID).
		Find(&contracts).Error
	if err != nil {
		return nil, apperr.Unexpected("Failed to retrieve contracts", err)
	}
	return contracts, nil
}
