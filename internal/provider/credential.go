package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/redink-ai/redink/internal/models"
)

// Default transport bounds applied when the credential leaves them unset.
const (
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 3
)

// Credential carries the resolved connection settings for one vendor.
type Credential struct {
	ProviderType string

	APIKey    string
	AppID     string
	AppKey    string
	AppSecret string

	BaseURL    string
	APIVersion string
	Region     string

	Timeout    time.Duration
	MaxRetries int
}

// CredentialFromModel converts a stored credential row into transport settings.
func CredentialFromModel(row *models.ProviderCredential) Credential {
	cred := Credential{
		ProviderType: row.ProviderType,
		APIKey:       strings.TrimSpace(row.APIKey),
		AppID:        strings.TrimSpace(row.AppID),
		AppKey:       strings.TrimSpace(row.AppKey),
		AppSecret:    strings.TrimSpace(row.AppSecret),
		BaseURL:      strings.TrimSpace(row.BaseURL),
		APIVersion:   strings.TrimSpace(row.APIVersion),
		Region:       strings.TrimSpace(row.Region),
		Timeout:      time.Duration(row.RequestTimeout) * time.Second,
		MaxRetries:   row.MaxRetries,
	}
	if cred.Timeout <= 0 {
		cred.Timeout = defaultTimeout
	}
	if cred.MaxRetries < 0 {
		cred.MaxRetries = defaultMaxRetries
	}
	return cred
}

// validateShape checks that the fields required by the credential's auth
// shape are present.
func (c Credential) validateShape() error {
	switch models.AuthShapeForProvider(c.ProviderType) {
	case models.AuthShapeAPIKey:
		if c.APIKey == "" {
			return fmt.Errorf("%w: api_key is required for %s", ErrMissingCredential, c.ProviderType)
		}
	case models.AuthShapeKeySecret:
		if c.AppKey == "" || c.AppSecret == "" {
			return fmt.Errorf("%w: app_key and app_secret are required for %s", ErrMissingCredential, c.ProviderType)
		}
	case models.AuthShapeIDKeySecret:
		if c.APIKey == "" && (c.AppID == "" || c.AppKey == "" || c.AppSecret == "") {
			return fmt.Errorf("%w: api_key or app_id/app_key/app_secret are required for %s", ErrMissingCredential, c.ProviderType)
		}
	}
	return nil
}
