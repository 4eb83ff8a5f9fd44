package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/models"
)

// CredentialStore persists provider credentials and maintains the
// one-default-per-provider-type invariant for each owner.
type CredentialStore struct {
	db *gorm.DB
}

// NewCredentialStore constructs a CredentialStore.
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Create inserts a credential. The owner's first credential for a provider
// type becomes the default regardless of the flag; an explicit default
// demotes the previous one.
func (s *CredentialStore) Create(ctx context.Context, cred *models.ProviderCredential) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("credential store: not initialized")
	}
	cred.ProviderType = strings.TrimSpace(cred.ProviderType)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProviderCredential{}).
			Where("user_id = ? AND provider_type = ?", cred.UserID, cred.ProviderType).
			Count(&count).Error; err != nil {
			return fmt.Errorf("credential store: count existing: %w", err)
		}
		if count == 0 {
			cred.IsDefault = true
		} else if cred.IsDefault {
			if err := clearCredentialDefaults(tx, cred.UserID, cred.ProviderType); err != nil {
				return err
			}
		}
		if err := tx.Create(cred).Error; err != nil {
			return fmt.Errorf("credential store: create: %w", err)
		}
		return nil
	})
}

// GetByID loads an owner's credential by ID.
func (s *CredentialStore) GetByID(ctx context.Context, userID, id uint64) (*models.ProviderCredential, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("credential store: not initialized")
	}
	var cred models.ProviderCredential
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&cred).Error
	if err != nil {
		return nil, translate("credential store: get", err)
	}
	return &cred, nil
}

// GetDefault loads the owner's default active credential for a provider type.
func (s *CredentialStore) GetDefault(ctx context.Context, userID uint64, providerType string) (*models.ProviderCredential, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("credential store: not initialized")
	}
	var cred models.ProviderCredential
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider_type = ? AND is_default = ? AND is_active = ?",
			userID, providerType, true, true).
		First(&cred).Error
	if err != nil {
		return nil, translate("credential store: get default", err)
	}
	return &cred, nil
}

// List returns the owner's credentials, optionally filtered by provider
// type, newest first.
func (s *CredentialStore) List(ctx context.Context, userID uint64, providerType string) ([]models.ProviderCredential, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("credential store: not initialized")
	}
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if providerType = strings.TrimSpace(providerType); providerType != "" {
		query = query.Where("provider_type = ?", providerType)
	}
	var creds []models.ProviderCredential
	if err := query.Order("is_default DESC, created_at DESC").Find(&creds).Error; err != nil {
		return nil, fmt.Errorf("credential store: list: %w", err)
	}
	return creds, nil
}

// Update applies a partial column update to an owner's credential. Setting
// is_default demotes the previous default for the same provider type.
func (s *CredentialStore) Update(ctx context.Context, userID, id uint64, updates map[string]any) (*models.ProviderCredential, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("credential store: not initialized")
	}
	if len(updates) == 0 {
		return s.GetByID(ctx, userID, id)
	}

	var updated models.ProviderCredential
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cred models.ProviderCredential
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cred).Error; err != nil {
			return translate("credential store: update", err)
		}
		if wantDefault, ok := updates["is_default"].(bool); ok && wantDefault && !cred.IsDefault {
			if err := clearCredentialDefaults(tx, userID, cred.ProviderType); err != nil {
				return err
			}
		}
		if err := tx.Model(&cred).Updates(updates).Error; err != nil {
			return fmt.Errorf("credential store: update: %w", err)
		}
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return fmt.Errorf("credential store: reload: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetDefault marks the credential as the owner's default for its provider
// type, demoting any previous default.
func (s *CredentialStore) SetDefault(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("credential store: not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cred models.ProviderCredential
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cred).Error; err != nil {
			return translate("credential store: set default", err)
		}
		if err := clearCredentialDefaults(tx, userID, cred.ProviderType); err != nil {
			return err
		}
		if err := tx.Model(&cred).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("credential store: set default: %w", err)
		}
		return nil
	})
}

// Delete removes an owner's credential. When the deleted row was the
// default and alternates of the same provider type remain, the most recent
// one is promoted so exactly one default survives.
func (s *CredentialStore) Delete(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("credential store: not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cred models.ProviderCredential
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cred).Error; err != nil {
			return translate("credential store: delete", err)
		}
		if err := tx.Delete(&cred).Error; err != nil {
			return fmt.Errorf("credential store: delete: %w", err)
		}
		if !cred.IsDefault {
			return nil
		}
		var next models.ProviderCredential
		err := tx.Where("user_id = ? AND provider_type = ?", userID, cred.ProviderType).
			Order("created_at DESC, id DESC").
			First(&next).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("credential store: find successor: %w", err)
		}
		if err := tx.Model(&next).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("credential store: promote successor: %w", err)
		}
		return nil
	})
}

func clearCredentialDefaults(tx *gorm.DB, userID uint64, providerType string) error {
	err := tx.Model(&models.ProviderCredential{}).
		Where("user_id = ? AND provider_type = ? AND is_default = ?", userID, providerType, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("credential store: clear defaults: %w", err)
	}
	return nil
}
