package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username  string    `json:"username" gorm:"size:20;uniqueIndex;not null"`
	Email     *string   `json:"email,omitempty" gorm:"uniqueIndex"` // set for Google sign-in accounts
	Password  string    `json:"-" gorm:"not null"`      // bcrypt hash, empty for Google-only accounts
	Files     []File    `json:"files,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
