// Package repository implements the per-entity gateways over the record
// store. Every operation takes the owning user's id explicitly and filters
// by it; a row owned by another user behaves exactly like a missing row.
package repository

import (
	"errors"

	"tajeer-server/internal/apperr"

	"gorm.io/gorm"
)

// Repositories bundles all entity gateways over one database handle
type Repositories struct {
	Vehicles    *VehicleRepository
	Customers   *CustomerRepository
	Contracts   *ContractRepository
	Branches    *BranchRepository
	Finance     *FinanceRepository
	Lookups     *LookupRepository
	Attachments *AttachmentRepository
}

// New constructs the gateway bundle
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Vehicles:    NewVehicleRepository(db),
		Customers:   NewCustomerRepository(db),
		Contracts:   NewContractRepository(db),
		Branches:    NewBranchRepository(db),
		Finance:     NewFinanceRepository(db),
		Lookups:     NewLookupRepository(db),
		Attachments: NewAttachmentRepository(db),
	}
}

// fetchErr maps a read failure to NotFound or a generic Unexpected
func fetchErr(err error, resource, failMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return apperr.Unexpected(failMsg, err)
}

// writeErr maps a write failure, treating the store's unique-constraint
// rejection as the authoritative duplicate signal
func writeErr(err error, duplicateMsg, failMsg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Duplicate(duplicateMsg)
	}
	return apperr.Unexpected(failMsg, err)
}
