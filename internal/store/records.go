package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/models"
)

// Record list paging bounds.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps page/pageSize to sane bounds.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func validRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("store: rating must be between 1 and 5, got %d", rating)
	}
	return nil
}

// GenerationRecordStore persists copy-generation invocation records.
type GenerationRecordStore struct {
	db *gorm.DB
}

// NewGenerationRecordStore constructs a GenerationRecordStore.
func NewGenerationRecordStore(db *gorm.DB) *GenerationRecordStore {
	return &GenerationRecordStore{db: db}
}

// Create inserts a record, normally in the processing state.
func (s *GenerationRecordStore) Create(ctx context.Context, rec *models.GenerationRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("generation record store: not initialized")
	}
	if rec.Status == "" {
		rec.Status = models.StatusProcessing
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("generation record store: create: %w", err)
	}
	return nil
}

// Update applies a partial column update to a record by primary key. It is
// used by the pipeline to move a record from processing to its terminal
// state together with the outcome columns.
func (s *GenerationRecordStore) Update(ctx context.Context, id uint64, updates map[string]any) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("generation record store: not initialized")
	}
	result := s.db.WithContext(ctx).
		Model(&models.GenerationRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("generation record store: update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("generation record store: update: %w", ErrNotFound)
	}
	return nil
}

// GetByID loads an owner's record by ID.
func (s *GenerationRecordStore) GetByID(ctx context.Context, userID, id uint64) (*models.GenerationRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("generation record store: not initialized")
	}
	var rec models.GenerationRecord
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rec).Error
	if err != nil {
		return nil, translate("generation record store: get", err)
	}
	return &rec, nil
}

// GetByRequestID loads a record by its external correlation ID.
func (s *GenerationRecordStore) GetByRequestID(ctx context.Context, requestID string) (*models.GenerationRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("generation record store: not initialized")
	}
	var rec models.GenerationRecord
	err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&rec).Error
	if err != nil {
		return nil, translate("generation record store: get by request id", err)
	}
	return &rec, nil
}

// ListByUser returns one page of the owner's records, newest first, plus
// the total row count for paging.
func (s *GenerationRecordStore) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]models.GenerationRecord, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, fmt.Errorf("generation record store: not initialized")
	}
	page, pageSize = normalizePage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.GenerationRecord{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("generation record store: count: %w", err)
	}
	var recs []models.GenerationRecord
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("generation record store: list: %w", err)
	}
	return recs, total, nil
}

// Delete removes an owner's record.
func (s *GenerationRecordStore) Delete(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("generation record store: not initialized")
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.GenerationRecord{})
	if result.Error != nil {
		return fmt.Errorf("generation record store: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("generation record store: delete: %w", ErrNotFound)
	}
	return nil
}

// Rate stores the owner's 1-5 rating and optional feedback on a record.
func (s *GenerationRecordStore) Rate(ctx context.Context, userID, id uint64, rating int, feedback string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("generation record store: not initialized")
	}
	if err := validRating(rating); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Model(&models.GenerationRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"user_rating": rating, "user_feedback": feedback})
	if result.Error != nil {
		return fmt.Errorf("generation record store: rate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("generation record store: rate: %w", ErrNotFound)
	}
	return nil
}

// ClassificationRecordStore persists image-classification invocation records.
type ClassificationRecordStore struct {
	db *gorm.DB
}

// NewClassificationRecordStore constructs a ClassificationRecordStore.
func NewClassificationRecordStore(db *gorm.DB) *ClassificationRecordStore {
	return &ClassificationRecordStore{db: db}
}

// Create inserts a record, normally in the processing state.
func (s *ClassificationRecordStore) Create(ctx context.Context, rec *models.ClassificationRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("classification record store: not initialized")
	}
	if rec.Status == "" {
		rec.Status = models.StatusProcessing
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("classification record store: create: %w", err)
	}
	return nil
}

// Update applies a partial column update to a record by primary key.
func (s *ClassificationRecordStore) Update(ctx context.Context, id uint64, updates map[string]any) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("classification record store: not initialized")
	}
	result := s.db.WithContext(ctx).
		Model(&models.ClassificationRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("classification record store: update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("classification record store: update: %w", ErrNotFound)
	}
	return nil
}

// GetByID loads an owner's record by ID.
func (s *ClassificationRecordStore) GetByID(ctx context.Context, userID, id uint64) (*models.ClassificationRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("classification record store: not initialized")
	}
	var rec models.ClassificationRecord
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rec).Error
	if err != nil {
		return nil, translate("classification record store: get", err)
	}
	return &rec, nil
}

// GetByRequestID loads a record by its external correlation ID.
func (s *ClassificationRecordStore) GetByRequestID(ctx context.Context, requestID string) (*models.ClassificationRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("classification record store: not initialized")
	}
	var rec models.ClassificationRecord
	err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&rec).Error
	if err != nil {
		return nil, translate("classification record store: get by request id", err)
	}
	return &rec, nil
}

// ListByUser returns one page of the owner's records, newest first, plus
// the total row count for paging.
func (s *ClassificationRecordStore) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]models.ClassificationRecord, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, fmt.Errorf("classification record store: not initialized")
	}
	page, pageSize = normalizePage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.ClassificationRecord{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("classification record store: count: %w", err)
	}
	var recs []models.ClassificationRecord
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("classification record store: list: %w", err)
	}
	return recs, total, nil
}

// Delete removes an owner's record.
func (s *ClassificationRecordStore) Delete(ctx context.Context, userID, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("classification record store: not initialized")
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ClassificationRecord{})
	if result.Error != nil {
		return fmt.Errorf("classification record store: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("classification record store: delete: %w", ErrNotFound)
	}
	return nil
}

// Rate stores the owner's 1-5 rating and optional feedback on a record.
func (s *ClassificationRecordStore) Rate(ctx context.Context, userID, id uint64, rating int, feedback string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("classification record store: not initialized")
	}
	if err := validRating(rating); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Model(&models.ClassificationRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"user_rating": rating, "user_feedback": feedback})
	if result.Error != nil {
		return fmt.Errorf("classification record store: rate: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("classification record store: rate: %w", ErrNotFound)
	}
	return nil
}
