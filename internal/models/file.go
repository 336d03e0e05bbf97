package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type File struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `json:"-" gorm:"type:uuid;index:idx_files_owner_name,priority:1;not null"` // owner, immutable
	Filename     string    `json:"filename" gorm:"size:100;index:idx_files_owner_name,priority:2;not null"`
	FileType     string    `json:"fileType" gorm:"size:100;not null"` // client-declared, untrusted
	FileSize     int64     `json:"fileSize" gorm:"not null"`          // bytes, measured from the stored blob
	Path         string    `json:"-" gorm:"uniqueIndex;not null"`     // blob store key
	CreatedTime  time.Time `json:"createdTime" gorm:"not null"`
	ModifiedTime time.Time `json:"modifiedTime" gorm:"not null"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
