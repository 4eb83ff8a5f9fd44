package models

import "time"

// GenerationConfig is a user-owned prompt/parameter bundle for copy generation.
type GenerationConfig struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.

	Name         string `gorm:"type:text;not null"`              // Display name.
	ProviderType string `gorm:"type:varchar(50);not null;index"` // Provider type the config targets.

	CredentialID *uint64 `gorm:"index"` // Explicit credential; nil falls back to the owner default.

	SystemPrompt       string `gorm:"type:text"` // System message; empty uses the built-in default.
	UserPromptTemplate string `gorm:"type:text"` // Template with a {prompt} placeholder.

	ModelID       string `gorm:"type:varchar(100)"` // Text model; empty uses the provider default.
	VisionModelID string `gorm:"type:varchar(100)"` // Vision model used when images are present.

	Temperature float64 `gorm:"type:decimal(4,2);not null;default:0.7"` // Sampling temperature.
	MaxTokens   int     `gorm:"not null;default:800"`                   // Completion token cap.

	TitleLength   int  `gorm:"not null;default:50"`    // Title length cap stated in the prompt.
	ContentLength int  `gorm:"not null;default:1000"`  // Target body length stated in the prompt.
	TagsCount     int  `gorm:"not null;default:5"`     // Number of tags requested.
	IncludeEmojis bool `gorm:"not null;default:true"`  // Whether to ask for emoji usage.

	IsDefault bool `gorm:"not null;default:false"` // Default for this owner.
	IsActive  bool `gorm:"not null;default:true"`  // Whether the config is usable.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
