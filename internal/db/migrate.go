package db

import (
	"fmt"

	"github.com/redink-ai/redink/internal/models"
	"gorm.io/gorm"
)

// Migrate runs schema migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.AppKey{},
		&models.ProviderCredential{},
		&models.GenerationConfig{},
		&models.ClassificationConfig{},
		&models.GenerationRecord{},
		&models.ClassificationRecord{},
		&models.ForbiddenWord{},
		&models.ForbiddenWordDetection{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errIndexes := ensureIndexes(conn); errIndexes != nil {
		return errIndexes
	}
	return nil
}

// ensureIndexes applies composite indexes AutoMigrate cannot express per dialect.
func ensureIndexes(conn *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_provider_credentials_owner_type
		 ON provider_credentials (user_id, provider_type)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_configs_owner_default
		 ON generation_configs (user_id, is_default)`,
		`CREATE INDEX IF NOT EXISTS idx_classification_configs_owner_default
		 ON classification_configs (user_id, is_default)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_forbidden_words_scope_word
		 ON forbidden_words (application, word)`,
	}

	for _, stmt := range statements {
		if errExec := conn.Exec(stmt).Error; errExec != nil {
			return fmt.Errorf("db: ensure index: %w", errExec)
		}
	}
	return nil
}
