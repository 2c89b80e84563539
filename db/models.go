package db

import (
	"time"

	"gorm.io/datatypes"
)

// Blob is one whole collection serialized as JSON under a fixed name.
type Blob struct {
	Name      string         `gorm:"primaryKey;size:64"` // Collection key, e.g. "game_profiles"
	Data      datatypes.JSON // Serialized collection
	UpdatedAt time.Time      // Last overwrite
}

func (Blob) TableName() string {
	return "blobs"
}
