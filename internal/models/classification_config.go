package models

import "time"

// ClassificationConfig is a user-owned prompt/parameter bundle for image classification.
type ClassificationConfig struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.

	Name         string `gorm:"type:text;not null"`              // Display name.
	ProviderType string `gorm:"type:varchar(50);not null;index"` // Provider type the config targets.

	CredentialID *uint64 `gorm:"index"` // Explicit credential; nil falls back to the owner default.

	SystemPrompt string `gorm:"type:text"` // System message; empty uses the built-in default.

	ModelID string `gorm:"type:varchar(100)"` // Vision model; empty uses the provider default.

	Temperature float64 `gorm:"type:decimal(4,2);not null;default:0.2"` // Sampling temperature.
	MaxTokens   int     `gorm:"not null;default:2000"`                  // Completion token cap.

	IsDefault bool `gorm:"not null;default:false"` // Default for this owner.
	IsActive  bool `gorm:"not null;default:true"`  // Whether the config is usable.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
