package model

import (
	"time"
)

// FinanceTransaction represents a single income or expense entry.
// The income/expense category lives on the transaction_type lookup row,
// not here; summaries join the two in-process.
type FinanceTransaction struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	TypeID      uint      `json:"type_id" gorm:"index;not null"`
	Amount      float64   `json:"amount" gorm:"not null"`
	OccurredOn  time.Time `json:"occurred_on" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	ContractID  *uint     `json:"contract_id,omitempty" gorm:"index"`
	OwnerID     uint      `json:"owner_id" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
