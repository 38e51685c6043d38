package model

import (
	"time"
)

// Lookup kinds
const (
	LookupKindNationality     = "nationality"
	LookupKindClassification  = "classification"
	LookupKindLicenseType     = "license_type"
	LookupKindProfession      = "profession"
	LookupKindInsuranceOption = "insurance_option"
	LookupKindTransactionType = "transaction_type"
)

// Transaction type categories
const (
	CategoryIncome  = "income"
	CategoryExpense = "expense"
)

// KnownLookupKinds lists the reference tables served by the lookup endpoints.
var KnownLookupKinds = []string{
	LookupKindNationality,
	LookupKindClassification,
	LookupKindLicenseType,
	LookupKindProfession,
	LookupKindInsuranceOption,
	LookupKindTransactionType,
}

// Lookup represents a reference/configuration entry. Entries are never
// physically deleted; IsActive=false hides them from active-only listings
// while historical records keep resolving them by id.
type Lookup struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Kind      string    `json:"kind" gorm:"type:varchar(40);not null;uniqueIndex:idx_lookups_owner_kind_name"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_lookups_owner_kind_name"`
	Category  string    `json:"category,omitempty" gorm:"type:varchar(20)"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	OwnerID   uint      `json:"owner_id" gorm:"index;not null;uniqueIndex:idx_lookups_owner_kind_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsKnownLookupKind reports whether kind names a served reference table
func IsKnownLookupKind(kind string) bool {
	for _, k := range KnownLookupKinds {
		if k == kind {
			return true
		}
	}
	return false
}
