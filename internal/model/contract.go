package model

import (
	"time"
)

// Contract status values
const (
	ContractStatusActive    = "active"
	ContractStatusCompleted = "completed"
	ContractStatusCancelled = "cancelled"
)

// Contract represents a rental agreement between a customer and the business
type Contract struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	ContractNumber string    `json:"contract_number" gorm:"type:varchar(40);not null;uniqueIndex:idx_contracts_owner_number"`
	CustomerID     uint      `json:"customer_id" gorm:"index;not null"`
	VehicleID      uint      `json:"vehicle_id" gorm:"index;not null"`
	StartDate      time.Time `json:"start_date" gorm:"not null"`
	EndDate        time.Time `json:"end_date" gorm:"not null"`
	ContractType   string    `json:"contract_type" gorm:"type:varchar(30)"`
	InsuranceType  string    `json:"insurance_type" gorm:"type:varchar(30)"`
	DailyRate      float64   `json:"daily_rate"`
	TotalAmount    float64   `json:"total_amount"`
	Status         string    `json:"status" gorm:"type:varchar(20);default:'active'"`
	InspectorName  string    `json:"inspector_name" gorm:"type:varchar(255)"`
	OwnerID        uint      `json:"owner_id" gorm:"index;not null;uniqueIndex:idx_contracts_owner_number"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
