package models

import (
	"time"

	"gorm.io/datatypes"
)

// ForbiddenWord is an admin-managed prohibited term scoped to an application.
type ForbiddenWord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Word        string `gorm:"type:varchar(100);not null;index"`       // Prohibited term.
	Application string `gorm:"type:varchar(64);not null;index"`        // Application scope tag.
	Level       int    `gorm:"not null;default:1"`                     // Severity level.
	Remark      string `gorm:"type:text"`                              // Free-form note.

	CreatedBy uint64 `gorm:"not null"` // Admin user who created the entry.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// ForbiddenWordDetection logs one content check that matched prohibited terms.
//
// Detection rows are audit data and live independently of the word list: a
// word removed later does not remove the events it triggered.
type ForbiddenWordDetection struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ContentSample string         `gorm:"type:varchar(120);not null"`      // Truncated offending content.
	DetectedWords datatypes.JSON `gorm:"type:jsonb;not null"`             // Matched terms.
	Application   string         `gorm:"type:varchar(64);not null;index"` // Application scope tag.

	DetectionTime time.Time `gorm:"not null;index"` // When the match occurred.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
