package models

import (
	"time"

	"gorm.io/datatypes"
)

// Record status values. Transitions are monotone: a record starts in
// processing and moves exactly once to a terminal state.
const (
	// StatusProcessing marks a record awaiting the provider call.
	StatusProcessing = "processing"
	// StatusCompleted marks a record with identifying output present.
	StatusCompleted = "completed"
	// StatusUnclassified marks a classification the model explicitly declined.
	StatusUnclassified = "unclassified"
	// StatusFailed marks a record whose provider call or validation failed.
	StatusFailed = "failed"
)

// GenerationRecord persists one copy-generation invocation and its outcome.
type GenerationRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	RequestID string `gorm:"type:varchar(36);uniqueIndex"` // External correlation ID.

	UserID   uint64  `gorm:"not null;index"` // Owning user ID.
	ConfigID uint64  `gorm:"not null;index"` // Resolved generation config ID.
	AppKeyID *uint64 `gorm:"index"`          // External application key, when invoked via app key.

	Prompt    string         `gorm:"type:text;not null"` // Caller prompt.
	ImageURLs datatypes.JSON `gorm:"type:jsonb"`         // Supplied image URLs.

	Title   string         `gorm:"type:varchar(255)"` // Generated title.
	Content string         `gorm:"type:text"`         // Generated body.
	Tags    datatypes.JSON `gorm:"type:jsonb"`        // Generated tag list.

	Status       string `gorm:"type:varchar(20);not null;default:processing;index"` // Lifecycle state.
	ErrorMessage string `gorm:"type:text"`                                          // Failure detail.

	TokensUsed       int `gorm:"not null;default:0"` // Total tokens billed.
	TokensPrompt     int `gorm:"not null;default:0"` // Prompt tokens.
	TokensCompletion int `gorm:"not null;default:0"` // Completion tokens.
	DurationMs       int `gorm:"not null;default:0"` // Wall time in milliseconds.

	ProviderType string  `gorm:"type:varchar(50)"`      // Provider used.
	ModelID      string  `gorm:"type:varchar(100)"`     // Model used.
	Temperature  float64 `gorm:"type:decimal(4,2)"`     // Temperature used.
	MaxTokens    int     `gorm:"not null;default:0"`    // Token cap used.

	RawRequest  datatypes.JSON `gorm:"type:jsonb"` // Outbound provider payload; immutable once set.
	RawResponse datatypes.JSON `gorm:"type:jsonb"` // Inbound provider payload; immutable once set.

	IPAddress string `gorm:"type:varchar(50)"`  // Caller IP.
	UserAgent string `gorm:"type:varchar(255)"` // Caller user agent.

	UserRating   *int   `gorm:""`          // Rating 1-5, when given.
	UserFeedback string `gorm:"type:text"` // Free-form feedback.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}
