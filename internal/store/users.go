package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/models"
)

// UserStore persists user accounts.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore constructs a UserStore.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user account.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("user store: not initialized")
	}
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return fmt.Errorf("user store: username is empty")
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("user store: create: %w", err)
	}
	return nil
}

// GetByID loads a user by primary key.
func (s *UserStore) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("user store: not initialized")
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate("user store: get", err)
	}
	return &user, nil
}

// GetByUsername loads a user by login name.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("user store: not initialized")
	}
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&user).Error
	if err != nil {
		return nil, translate("user store: get by username", err)
	}
	return &user, nil
}

// Count returns the number of user accounts. The server seeds an admin
// account when this is zero.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("user store: not initialized")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("user store: count: %w", err)
	}
	return count, nil
}

// UpdatePassword replaces a user's stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("user store: not initialized")
	}
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("user store: update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user store: update password: %w", ErrNotFound)
	}
	return nil
}

// AppKeyStore persists external application keys. Only key hashes are
// stored; lookups happen by hash.
type AppKeyStore struct {
	db *gorm.DB
}

// NewAppKeyStore constructs an AppKeyStore.
func NewAppKeyStore(db *gorm.DB) *AppKeyStore {
	return &AppKeyStore{db: db}
}

// Create inserts an application key record.
func (s *AppKeyStore) Create(ctx context.Context, key *models.AppKey) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("app key store: not initialized")
	}
	if key.KeyHash == "" {
		return fmt.Errorf("app key store: key hash is empty")
	}
	if err := s.db.WithContext(ctx).Create(key).Error; err != nil {
		return fmt.Errorf("app key store: create: %w", err)
	}
	return nil
}

// GetByHash loads an active key by its SHA-256 hash.
func (s *AppKeyStore) GetByHash(ctx context.Context, keyHash string) (*models.AppKey, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("app key store: not initialized")
	}
	var key models.AppKey
	err := s.db.WithContext(ctx).
		Where("key_hash = ? AND active = ?", keyHash, true).
		First(&key).Error
	if err != nil {
		return nil, translate("app key store: get by hash", err)
	}
	return &key, nil
}

// TouchLastUsed records a successful authentication timestamp. Failures
// here are reported but must not block the request.
func (s *AppKeyStore) TouchLastUsed(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("app key store: not initialized")
	}
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).
		Model(&models.AppKey{}).
		Where("id = ?", id).
		Update("last_used_at", now).Error
	if err != nil {
		return fmt.Errorf("app key store: touch last used: %w", err)
	}
	return nil
}

// List returns the owner's keys, newest first.
func (s *AppKeyStore) List(ctx context.Context, userID uint64) ([]models.AppKey, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("app key store: not initialized")
	}
	var keys []models.AppKey
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("app key store: list: %w", err)
	}
	return keys, nil
}

// Disable deactivates an owner's key without deleting its audit trail.
func (s *AppKeyStore) Disable(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("app key store: not initialized")
	}
	result := s.db.WithContext(ctx).
		Model(&models.AppKey{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("app key store: disable: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("app key store: disable: %w", ErrNotFound)
	}
	return nil
}

// Delete removes an owner's key.
func (s *AppKeyStore) Delete(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("app key store: not initialized")
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.AppKey{})
	if result.Error != nil {
		return fmt.Errorf("app key store: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("app key store: delete: %w", ErrNotFound)
	}
	return nil
}
