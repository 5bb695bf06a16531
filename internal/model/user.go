package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account that owns tasks and session tokens.
type User struct {
	ID           uuid.UUID `json:"_id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Age          int       `json:"age" gorm:"not null;default:0"`
	Avatar       []byte    `json:"-" gorm:"type:mediumblob"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Relations
	Tokens []Token `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Tasks  []Task  `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Token is one active session of a user. Rows are kept in issue order; a
// token stays valid only while its row exists.
type Token struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index:idx_user_token"`
	Token     string    `gorm:"size:512;not null;index:idx_user_token"`
	CreatedAt time.Time
}

// TableName keeps session rows in user_tokens.
func (Token) TableName() string {
	return "user_tokens"
}
