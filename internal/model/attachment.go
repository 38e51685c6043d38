package model

import (
	"time"
)

// Attachment lifecycle states
const (
	AttachmentStatusStaged   = "staged"
	AttachmentStatusAttached = "attached"
)

// Attachment represents an uploaded document. A staged attachment lives
// under a temporary user-scoped storage key and is not linked to any
// record; promotion copies the object to a permanent key and fills
// EntityType/EntityID.
type Attachment struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	EntityType  string    `json:"entity_type" gorm:"type:varchar(40);index:idx_attachments_entity"`
	EntityID    *uint     `json:"entity_id,omitempty" gorm:"index:idx_attachments_entity"`
	FileName    string    `json:"file_name" gorm:"type:varchar(255);not null"`
	ContentType string    `json:"content_type" gorm:"type:varchar(128)"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"storage_key" gorm:"type:varchar(512);not null"`
	URL         string    `json:"url" gorm:"type:varchar(512)"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'staged'"`
	OwnerID     uint      `json:"owner_id" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
