package entities

import (
	"time"
)

// StoredValue is one named, serialized value of the local key/value store.
type StoredValue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoredValue) TableName() string {
	return "stored_values"
}
