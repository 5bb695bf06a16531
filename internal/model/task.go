package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          uuid.UUID `json:"_id" gorm:"type:char(36);primaryKey"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Completed   bool      `json:"completed" gorm:"not null;default:false;index"`
	OwnerID     uuid.UUID `json:"owner" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"precision:3;index"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"precision:3"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SortDirection orders task listings.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TaskQuery narrows a task listing. Nil pointers and an empty SortField mean
// no restriction; results are always limited to OwnerID.
type TaskQuery struct {
	OwnerID   uuid.UUID
	Completed *bool
	Limit     *int
	Skip      *int
	SortField string
	SortDir   SortDirection
}
