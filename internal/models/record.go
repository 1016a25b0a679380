package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record holds the fields every stored document carries
type Record struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate generates the record id
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RecordID returns the record id
func (r *Record) RecordID() string {
	return r.ID
}

// SetRecordID replaces the record id and clears the timestamps,
// so a decoded request body cannot dictate them
func (r *Record) SetRecordID(id string) {
	r.ID = id
	r.CreatedAt = time.Time{}
	r.UpdatedAt = time.Time{}
}

// Identified is implemented by every model through the embedded Record
type Identified interface {
	RecordID() string
	SetRecordID(id string)
}

// All lists every model for migrations
func All() []interface{} {
	return []interface{}{
		&User{},
		&School{},
		&Trainer{},
		&Sportsman{},
		&Competition{},
		&Entry{},
	}
}
