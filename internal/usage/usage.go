// Package usage aggregates token consumption and request outcomes from the
// generation and classification record tables.
package usage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/models"
)

const maxWindowDays = 365

// Summary aggregates one record table over a time window.
type Summary struct {
	TotalRequests     int64 `json:"total_requests"`
	Completed         int64 `json:"completed"`
	Unclassified      int64 `json:"unclassified"`
	Failed            int64 `json:"failed"`
	TokensUsed        int64 `json:"tokens_used"`
	TokensPrompt      int64 `json:"tokens_prompt"`
	TokensCompletion  int64 `json:"tokens_completion"`
	AvgDurationMillis int64 `json:"avg_duration_ms"`
}

// Report combines generation and classification usage for one user.
type Report struct {
	Since          time.Time `json:"since"`
	Until          time.Time `json:"until"`
	Generation     Summary   `json:"generation"`
	Classification Summary   `json:"classification"`
}

// DailyBucket holds per-day request and token totals.
type DailyBucket struct {
	Date       string `json:"date"`
	Requests   int64  `json:"requests"`
	TokensUsed int64  `json:"tokens_used"`
}

// Service computes usage reports.
type Service struct {
	db *gorm.DB
}

// NewService constructs a usage Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Report aggregates both record tables for userID over the last `days` days.
// Days outside [1, 365] are clamped.
func (s *Service) Report(ctx context.Context, userID uint64, days int) (*Report, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("usage: service not initialized")
	}
	since, until := window(days)

	generation, errGen := s.summarize(ctx, &models.GenerationRecord{}, userID, since)
	if errGen != nil {
		return nil, fmt.Errorf("usage: generation summary: %w", errGen)
	}
	classification, errClass := s.summarize(ctx, &models.ClassificationRecord{}, userID, since)
	if errClass != nil {
		return nil, fmt.Errorf("usage: classification summary: %w", errClass)
	}
	return &Report{
		Since:          since,
		Until:          until,
		Generation:     *generation,
		Classification: *classification,
	}, nil
}

// Daily returns per-day totals across both record tables for the last `days`
// days, oldest first. Days with no traffic are omitted.
func (s *Service) Daily(ctx context.Context, userID uint64, days int) ([]DailyBucket, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("usage: service not initialized")
	}
	since, _ := window(days)

	// Bucketing happens in Go so the query stays portable across the
	// sqlite and postgres dialects.
	type row struct {
		CreatedAt  time.Time
		TokensUsed int
	}
	buckets := make(map[string]*DailyBucket)
	for _, model := range []any{&models.GenerationRecord{}, &models.ClassificationRecord{}} {
		var rows []row
		errFind := s.db.WithContext(ctx).
			Model(model).
			Select("created_at", "tokens_used").
			Where("user_id = ? AND created_at >= ?", userID, since).
			Find(&rows).Error
		if errFind != nil {
			return nil, fmt.Errorf("usage: daily rows: %w", errFind)
		}
		for _, r := range rows {
			day := r.CreatedAt.UTC().Format("2006-01-02")
			bucket := buckets[day]
			if bucket == nil {
				bucket = &DailyBucket{Date: day}
				buckets[day] = bucket
			}
			bucket.Requests++
			bucket.TokensUsed += int64(r.TokensUsed)
		}
	}

	out := make([]DailyBucket, 0, len(buckets))
	for day := since; !day.After(time.Now().UTC()); day = day.AddDate(0, 0, 1) {
		if bucket, ok := buckets[day.Format("2006-01-02")]; ok {
			out = append(out, *bucket)
		}
	}
	return out, nil
}

func (s *Service) summarize(ctx context.Context, model any, userID uint64, since time.Time) (*Summary, error) {
	var agg struct {
		TotalRequests    int64
		Completed        int64
		Unclassified     int64
		Failed           int64
		TokensUsed       int64
		TokensPrompt     int64
		TokensCompletion int64
		DurationTotal    int64
	}
	errScan := s.db.WithContext(ctx).
		Model(model).
		Select(
			"COUNT(*) AS total_requests, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS unclassified, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS failed, "+
				"COALESCE(SUM(tokens_used), 0) AS tokens_used, "+
				"COALESCE(SUM(tokens_prompt), 0) AS tokens_prompt, "+
				"COALESCE(SUM(tokens_completion), 0) AS tokens_completion, "+
				"COALESCE(SUM(duration_ms), 0) AS duration_total",
			models.StatusCompleted, models.StatusUnclassified, models.StatusFailed,
		).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&agg).Error
	if errScan != nil {
		return nil, errScan
	}

	summary := &Summary{
		TotalRequests:    agg.TotalRequests,
		Completed:        agg.Completed,
		Unclassified:     agg.Unclassified,
		Failed:           agg.Failed,
		TokensUsed:       agg.TokensUsed,
		TokensPrompt:     agg.TokensPrompt,
		TokensCompletion: agg.TokensCompletion,
	}
	if agg.TotalRequests > 0 {
		summary.AvgDurationMillis = agg.DurationTotal / agg.TotalRequests
	}
	return summary, nil
}

func window(days int) (since, until time.Time) {
	if days < 1 {
		days = 1
	}
	if days > maxWindowDays {
		days = maxWindowDays
	}
	until = time.Now().UTC()
	since = until.AddDate(0, 0, -days).Truncate(24 * time.Hour)
	return since, until
}
