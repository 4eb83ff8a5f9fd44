package models

import (
	"time"

	"gorm.io/datatypes"
)

// ClassificationRecord persists one image-classification invocation and its outcome.
type ClassificationRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	RequestID string `gorm:"type:varchar(36);uniqueIndex"` // External correlation ID.

	UserID   uint64  `gorm:"not null;index"` // Owning user ID.
	ConfigID uint64  `gorm:"not null;index"` // Resolved classification config ID.
	AppKeyID *uint64 `gorm:"index"`          // External application key, when invoked via app key.

	ImageURL   string         `gorm:"type:varchar(1024);not null"` // Image to classify.
	Categories datatypes.JSON `gorm:"type:jsonb;not null"`         // Candidate categories supplied by the caller.

	CategoryID   *string  `gorm:"type:varchar(64)"`  // Chosen category ID; nil when unclassified.
	CategoryName *string  `gorm:"type:varchar(255)"` // Chosen category label; nil when unclassified.
	Confidence   float64  `gorm:"type:decimal(4,3);not null;default:0"` // Confidence in [0,1].
	Reasoning    string   `gorm:"type:text"`                            // Model or heuristic rationale.

	Status       string `gorm:"type:varchar(20);not null;default:processing;index"` // Lifecycle state.
	ErrorMessage string `gorm:"type:text"`                                          // Failure detail.

	TokensUsed       int `gorm:"not null;default:0"` // Total tokens billed.
	TokensPrompt     int `gorm:"not null;default:0"` // Prompt tokens.
	TokensCompletion int `gorm:"not null;default:0"` // Completion tokens.
	DurationMs       int `gorm:"not null;default:0"` // Wall time in milliseconds.

	ProviderType string `gorm:"type:varchar(50)"`  // Provider used.
	ModelID      string `gorm:"type:varchar(100)"` // Model used.

	RawRequest  datatypes.JSON `gorm:"type:jsonb"` // Outbound provider payload; immutable once set.
	RawResponse datatypes.JSON `gorm:"type:jsonb"` // Inbound provider payload; immutable once set.

	IPAddress string `gorm:"type:varchar(50)"`  // Caller IP.
	UserAgent string `gorm:"type:varchar(255)"` // Caller user agent.

	UserRating   *int   `gorm:""`          // Rating 1-5, when given.
	UserFeedback string `gorm:"type:text"` // Free-form feedback.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}
