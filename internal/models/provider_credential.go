package models

import "time"

// Provider type identifiers supported by the credential layer.
const (
	// ProviderOpenAI is the OpenAI chat completion API.
	ProviderOpenAI = "OpenAI"
	// ProviderClaude is the Anthropic messages API.
	ProviderClaude = "Claude"
	// ProviderVolcano is the Volcano Engine Ark API.
	ProviderVolcano = "Volcano"
)

// Credential auth shape identifiers.
const (
	// AuthShapeAPIKey authenticates with a single API key.
	AuthShapeAPIKey = "api_key"
	// AuthShapeKeySecret authenticates with an app key and secret pair.
	AuthShapeKeySecret = "key_secret"
	// AuthShapeIDKeySecret authenticates with app ID, key and secret.
	AuthShapeIDKeySecret = "id_key_secret"
)

// AuthShapeForProvider returns the auth shape a provider type requires.
func AuthShapeForProvider(providerType string) string {
	switch providerType {
	case ProviderOpenAI, ProviderClaude:
		return AuthShapeAPIKey
	case ProviderVolcano:
		return AuthShapeIDKeySecret
	default:
		return AuthShapeAPIKey
	}
}

// ProviderCredential stores upstream vendor credentials owned by a user.
type ProviderCredential struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.

	Name         string `gorm:"type:text;not null"`              // Display name.
	ProviderType string `gorm:"type:varchar(50);not null;index"` // Provider type (OpenAI/Claude/Volcano).

	APIKey    string `gorm:"type:text"`         // API key (api_key shape).
	AppID     string `gorm:"type:varchar(100)"` // Application ID (id_key_secret shape).
	AppKey    string `gorm:"type:varchar(100)"` // Application key (key_secret shapes).
	AppSecret string `gorm:"type:text"`         // Application secret (key_secret shapes).

	BaseURL    string `gorm:"type:text"`        // API base URL override.
	APIVersion string `gorm:"type:varchar(50)"` // API version override.
	Region     string `gorm:"type:varchar(50)"` // Region setting.

	RequestTimeout int `gorm:"not null;default:60"` // Request timeout in seconds.
	MaxRetries     int `gorm:"not null;default:3"`  // Retry budget per invocation.

	IsDefault bool `gorm:"not null;default:false"` // Default for this owner and provider type.
	IsActive  bool `gorm:"not null;default:true"`  // Whether the credential is usable.

	Remark string `gorm:"type:text"` // Free-form note.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
