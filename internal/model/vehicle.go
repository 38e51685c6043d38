package model

import (
	"time"
)

// Vehicle status values
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusRented      = "rented"
	VehicleStatusMaintenance = "maintenance"
)

// Vehicle represents a rentable vehicle in the fleet
type Vehicle struct {
	ID                uint      `json:"id" gorm:"primarykey"`
	PlateNumber       string    `json:"plate_number" gorm:"type:varchar(20);not null;uniqueIndex:idx_vehicles_owner_plate"`
	Make              string    `json:"make" gorm:"type:varchar(100);not null"`
	Model             string    `json:"model" gorm:"type:varchar(100);not null"`
	Year              int       `json:"year"`
	Color             string    `json:"color" gorm:"type:varchar(50)"`
	Status            string    `json:"status" gorm:"type:varchar(20);default:'available'"`
	DailyRate         float64   `json:"daily_rate"`
	BranchID          uint      `json:"branch_id" gorm:"index"`
	InsuranceOptionID uint      `json:"insurance_option_id"`
	OwnerID           uint      `json:"owner_id" gorm:"index;not null;uniqueIndex:idx_vehicles_owner_plate"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
