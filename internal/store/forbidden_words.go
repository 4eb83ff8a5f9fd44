package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/db"
	"github.com/redink-ai/redink/internal/models"
)

// ForbiddenWordStore persists the admin-managed word list and its
// detection log. It backs the content safety filter as its word source.
type ForbiddenWordStore struct {
	db *gorm.DB
}

// NewForbiddenWordStore constructs a ForbiddenWordStore.
func NewForbiddenWordStore(db *gorm.DB) *ForbiddenWordStore {
	return &ForbiddenWordStore{db: db}
}

// Words returns the active word list for an application scope.
func (s *ForbiddenWordStore) Words(ctx context.Context, application string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("forbidden word store: not initialized")
	}
	var words []string
	err := s.db.WithContext(ctx).
		Model(&models.ForbiddenWord{}).
		Where("application = ?", application).
		Order("id ASC").
		Pluck("word", &words).Error
	if err != nil {
		return nil, fmt.Errorf("forbidden word store: words: %w", err)
	}
	return words, nil
}

// LogDetection records one content check that matched prohibited terms.
func (s *ForbiddenWordStore) LogDetection(ctx context.Context, sample string, detected []string, application string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("forbidden word store: not initialized")
	}
	payload, err := json.Marshal(detected)
	if err != nil {
		return fmt.Errorf("forbidden word store: marshal detected words: %w", err)
	}
	row := models.ForbiddenWordDetection{
		ContentSample: sample,
		DetectedWords: datatypes.JSON(payload),
		Application:   application,
		DetectionTime: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("forbidden word store: log detection: %w", err)
	}
	return nil
}

// Add inserts a word into an application scope. Duplicate (application,
// word) pairs are rejected with ErrDuplicate.
func (s *ForbiddenWordStore) Add(ctx context.Context, word, application string, level int, remark string, createdBy uint64) (*models.ForbiddenWord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("forbidden word store: not initialized")
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("forbidden word store: word is empty")
	}
	application = strings.TrimSpace(application)
	if application == "" {
		return nil, fmt.Errorf("forbidden word store: application is empty")
	}
	if level < 1 {
		level = 1
	}

	var row models.ForbiddenWord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ForbiddenWord{}).
			Where("application = ? AND word = ?", application, word).
			Count(&count).Error; err != nil {
			return fmt.Errorf("forbidden word store: check duplicate: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("forbidden word store: %q already exists in %q: %w", word, application, ErrDuplicate)
		}
		row = models.ForbiddenWord{
			Word:        word,
			Application: application,
			Level:       level,
			Remark:      remark,
			CreatedBy:   createdBy,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("forbidden word store: add: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Update applies a partial column update to a word entry and returns the
// updated row.
func (s *ForbiddenWordStore) Update(ctx context.Context, id uint64, updates map[string]any) (*models.ForbiddenWord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("forbidden word store: not initialized")
	}
	var row models.ForbiddenWord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return translate("forbidden word store: update", err)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&row).Updates(updates).Error; err != nil {
			return fmt.Errorf("forbidden word store: update: %w", err)
		}
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return fmt.Errorf("forbidden word store: reload: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes a word entry and returns the removed row so callers can
// invalidate the right scope's cache.
func (s *ForbiddenWordStore) Delete(ctx context.Context, id uint64) (*models.ForbiddenWord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("forbidden word store: not initialized")
	}
	var row models.ForbiddenWord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return translate("forbidden word store: delete", err)
		}
		if err := tx.Delete(&row).Error; err != nil {
			return fmt.Errorf("forbidden word store: delete: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Search returns one page of word entries, optionally filtered by
// application scope and a case-insensitive keyword over the word column.
func (s *ForbiddenWordStore) Search(ctx context.Context, application, keyword string, page, pageSize int) ([]models.ForbiddenWord, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, fmt.Errorf("forbidden word store: not initialized")
	}
	page, pageSize = normalizePage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.ForbiddenWord{})
	if application = strings.TrimSpace(application); application != "" {
		query = query.Where("application = ?", application)
	}
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		pattern := db.NormalizeLikePattern(s.db, "%"+keyword+"%")
		query = query.Where(db.CaseInsensitiveLikeExpr(s.db, "word"), pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("forbidden word store: count: %w", err)
	}
	var rows []models.ForbiddenWord
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("forbidden word store: search: %w", err)
	}
	return rows, total, nil
}

// Detections returns one page of the detection log, optionally filtered by
// application scope, newest first.
func (s *ForbiddenWordStore) Detections(ctx context.Context, application string, page, pageSize int) ([]models.ForbiddenWordDetection, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, fmt.Errorf("forbidden word store: not initialized")
	}
	page, pageSize = normalizePage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.ForbiddenWordDetection{})
	if application = strings.TrimSpace(application); application != "" {
		query = query.Where("application = ?", application)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("forbidden word store: count detections: %w", err)
	}
	var rows []models.ForbiddenWordDetection
	err := query.Order("detection_time DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("forbidden word store: detections: %w", err)
	}
	return rows, total, nil
}
