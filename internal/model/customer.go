package model

import (
	"time"
)

// Customer represents a rental customer
type Customer struct {
	ID               uint       `json:"id" gorm:"primarykey"`
	FullName         string     `json:"full_name" gorm:"type:varchar(255);not null"`
	NationalID       string     `json:"national_id" gorm:"type:varchar(30);not null;uniqueIndex:idx_customers_owner_national_id"`
	Mobile           string     `json:"mobile" gorm:"type:varchar(20)"`
	NationalityID    uint       `json:"nationality_id"`
	ClassificationID uint       `json:"classification_id"`
	LicenseTypeID    uint       `json:"license_type_id"`
	ProfessionID     uint       `json:"profession_id"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	OwnerID          uint       `json:"owner_id" gorm:"index;not null;uniqueIndex:idx_customers_owner_national_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
