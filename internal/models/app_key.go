package models

import "time"

// AppKey represents a registered external application credential.
//
// External callers authenticate with the raw key; only its SHA-256 hash is
// stored. Application names the product surface the key belongs to and doubles
// as the forbidden-word scope for requests made with it.
type AppKey struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Owning user ID.
	User   User   `gorm:"foreignKey:UserID"` // Owning user record.

	Name        string `gorm:"type:text;not null"`             // Display name.
	Application string `gorm:"type:varchar(64);not null"`      // Application scope tag.
	KeyHash     string `gorm:"type:text;not null;uniqueIndex"` // SHA-256 of the raw key.
	KeyPrefix   string `gorm:"type:varchar(16)"`               // First characters kept for display.

	Active    bool `gorm:"not null;default:true"` // Whether the key is usable.
	RateLimit int  `gorm:"not null;default:0"`    // Max requests per second, 0 = unlimited.

	LastUsedAt *time.Time // Last successful authentication.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
