package model

import (
	"time"
)

// Branch represents an operational branch office
type Branch struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_branches_owner_name"`
	Code      string    `json:"code" gorm:"type:varchar(20)"`
	City      string    `json:"city" gorm:"type:varchar(100)"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	OwnerID   uint      `json:"owner_id" gorm:"index;not null;uniqueIndex:idx_branches_owner_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
