package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/models"
)

// GenerationConfigStore persists copy-generation configs. Each owner has at
// most one default generation config.
type GenerationConfigStore struct {
	db *gorm.DB
}

// NewGenerationConfigStore constructs a GenerationConfigStore.
func NewGenerationConfigStore(db *gorm.DB) *GenerationConfigStore {
	return &GenerationConfigStore{db: db}
}

// Create inserts a config. The owner's first config becomes the default
// regardless of the flag; an explicit default demotes the previous one.
func (s *GenerationConfigStore) Create(ctx context.Context, cfg *models.GenerationConfig) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("generation config store: not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		isDefault, err := resolveDefaultFlag(tx, &models.GenerationConfig{}, cfg.UserID, cfg.IsDefault, "generation config store")
		if err != nil {
			return err
		}
		cfg.IsDefault = isDefault
		if err := tx.Create(cfg).Error; err != nil {
			return fmt.Errorf("generation config store: create: %w", err)
		}
		return nil
	})
}

// GetByID loads an owner's config by ID.
func (s *GenerationConfigStore) GetByID(ctx context.Context, userID, id uint64) (*models.GenerationConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("generation config store: not initialized")
	}
	var cfg models.GenerationConfig
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&cfg).Error
	if err != nil {
		return nil, translate("generation config store: get", err)
	}
	return &cfg, nil
}

// GetDefault loads the owner's default config.
func (s *GenerationConfigStore) GetDefault(ctx context.Context, userID uint64) (*models.GenerationConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("generation config store: not initialized")
	}
	var cfg models.GenerationConfig
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&cfg).Error
	if err != nil {
		return nil, translate("generation config store: get default", err)
	}
	return &cfg, nil
}

// List returns the owner's configs, default first then newest first.
func (s *GenerationConfigStore) List(ctx context.Context, userID uint64) ([]models.GenerationConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("generation config store: not initialized")
	}
	var cfgs []models.GenerationConfig
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&cfgs).Error
	if err != nil {
		return nil, fmt.Errorf("generation config store: list: %w", err)
	}
	return cfgs, nil
}

// Update applies a partial column update. Setting is_default demotes the
// owner's previous default.
func (s *GenerationConfigStore) Update(ctx context.Context, userID, id uint64, updates map[string]any) (*models.GenerationConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("generation config store: not initialized")
	}
	if len(updates) == 0 {
		return s.GetByID(ctx, userID, id)
	}
	var updated models.GenerationConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.GenerationConfig
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cfg).Error; err != nil {
			return translate("generation config store: update", err)
		}
		if wantDefault, ok := updates["is_default"].(bool); ok && wantDefault && !cfg.IsDefault {
			if err := clearConfigDefaults(tx, &models.GenerationConfig{}, userID, "generation config store"); err != nil {
				return err
			}
		}
		if err := tx.Model(&cfg).Updates(updates).Error; err != nil {
			return fmt.Errorf("generation config store: update: %w", err)
		}
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return fmt.Errorf("generation config store: reload: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetDefault marks the config as the owner's default, demoting any previous one.
func (s *GenerationConfigStore) SetDefault(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("generation config store: not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.GenerationConfig
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cfg).Error; err != nil {
			return translate("generation config store: set default", err)
		}
		if err := clearConfigDefaults(tx, &models.GenerationConfig{}, userID, "generation config store"); err != nil {
			return err
		}
		if err := tx.Model(&cfg).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("generation config store: set default: %w", err)
		}
		return nil
	})
}

// Delete removes an owner's config, promoting the most recent survivor to
// default when the deleted row was the default.
func (s *GenerationConfigStore) Delete(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("generation config store: not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.GenerationConfig
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cfg).Error; err != nil {
			return translate("generation config store: delete", err)
		}
		if err := tx.Delete(&cfg).Error; err != nil {
			return fmt.Errorf("generation config store: delete: %w", err)
		}
		if !cfg.IsDefault {
			return nil
		}
		var next models.GenerationConfig
		err := tx.Where("user_id = ?", userID).
			Order("created_at DESC, id DESC").
			First(&next).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("generation config store: find successor: %w", err)
		}
		if err := tx.Model(&next).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("generation config store: promote successor: %w", err)
		}
		return nil
	})
}

// ClassificationConfigStore persists image-classification configs. Each
// owner has at most one default classification config.
type ClassificationConfigStore struct {
	db *gorm.DB
}

// NewClassificationConfigStore constructs a ClassificationConfigStore.
func NewClassificationConfigStore(db *gorm.DB) *ClassificationConfigStore {
	return &ClassificationConfigStore{db: db}
}

// Create inserts a config under the same default rules as generation configs.
func (s *ClassificationConfigStore) Create(ctx context.Context, cfg *models.ClassificationConfig) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("classification config store: not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		isDefault, err := resolveDefaultFlag(tx, &models.ClassificationConfig{}, cfg.UserID, cfg.IsDefault, "classification config store")
		if err != nil {
			return err
		}
		cfg.IsDefault = isDefault
		if err := tx.Create(cfg).Error; err != nil {
			return fmt.Errorf("classification config store: create: %w", err)
		}
		return nil
	})
}

// GetByID loads an owner's config by ID.
func (s *ClassificationConfigStore) GetByID(ctx context.Context, userID, id uint64) (*models.ClassificationConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("classification config store: not initialized")
	}
	var cfg models.ClassificationConfig
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&cfg).Error
	if err != nil {
		return nil, translate("classification config store: get", err)
	}
	return &cfg, nil
}

// GetDefault loads the owner's default config.
func (s *ClassificationConfigStore) GetDefault(ctx context.Context, userID uint64) (*models.ClassificationConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("classification config store: not initialized")
	}
	var cfg models.ClassificationConfig
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&cfg).Error
	if err != nil {
		return nil, translate("classification config store: get default", err)
	}
	return &cfg, nil
}

// List returns the owner's configs, default first then newest first.
func (s *ClassificationConfigStore) List(ctx context.Context, userID uint64) ([]models.ClassificationConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("classification config store: not initialized")
	}
	var cfgs []models.ClassificationConfig
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&cfgs).Error
	if err != nil {
		return nil, fmt.Errorf("classification config store: list: %w", err)
	}
	return cfgs, nil
}

// Update applies a partial column update. Setting is_default demotes the
// owner's previous default.
func (s *ClassificationConfigStore) Update(ctx context.Context, userID, id uint64, updates map[string]any) (*models.ClassificationConfig, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("classification config store: not initialized")
	}
	if len(updates) == 0 {
		return s.GetByID(ctx, userID, id)
	}
	var updated models.ClassificationConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.ClassificationConfig
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cfg).Error; err != nil {
			return translate("classification config store: update", err)
		}
		if wantDefault, ok := updates["is_default"].(bool); ok && wantDefault && !cfg.IsDefault {
			if err := clearConfigDefaults(tx, &models.ClassificationConfig{}, userID, "classification config store"); err != nil {
				return err
			}
		}
		if err := tx.Model(&cfg).Updates(updates).Error; err != nil {
			return fmt.Errorf("classification config store: update: %w", err)
		}
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return fmt.Errorf("classification config store: reload: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetDefault marks the config as the owner's default, demoting any previous one.
func (s *ClassificationConfigStore) SetDefault(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("classification config store: not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.ClassificationConfig
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cfg).Error; err != nil {
			return translate("classification config store: set default", err)
		}
		if err := clearConfigDefaults(tx, &models.ClassificationConfig{}, userID, "classification config store"); err != nil {
			return err
		}
		if err := tx.Model(&cfg).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("classification config store: set default: %w", err)
		}
		return nil
	})
}

// Delete removes an owner's config, promoting the most recent survivor to
// default when the deleted row was the default.
func (s *ClassificationConfigStore) Delete(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("classification config store: not initialized")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.ClassificationConfig
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&cfg).Error; err != nil {
			return translate("classification config store: delete", err)
		}
		if err := tx.Delete(&cfg).Error; err != nil {
			return fmt.Errorf("classification config store: delete: %w", err)
		}
		if !cfg.IsDefault {
			return nil
		}
		var next models.ClassificationConfig
		err := tx.Where("user_id = ?", userID).
			Order("created_at DESC, id DESC").
			First(&next).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("classification config store: find successor: %w", err)
		}
		if err := tx.Model(&next).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("classification config store: promote successor: %w", err)
		}
		return nil
	})
}

// resolveDefaultFlag decides the is_default value for a new config row: the
// owner's first row is always the default and a requested default clears the
// previous one.
func resolveDefaultFlag(tx *gorm.DB, model any, userID uint64, requested bool, op string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("%s: count existing: %w", op, err)
	}
	if count == 0 {
		return true, nil
	}
	if requested {
		if err := clearConfigDefaults(tx, model, userID, op); err != nil {
			return false, err
		}
	}
	return requested, nil
}

func clearConfigDefaults(tx *gorm.DB, model any, userID uint64, op string) error {
	err := tx.Model(model).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("%s: clear defaults: %w", op, err)
	}
	return nil
}
