package usage

import (
	"context"
	"fmt"
	"testing"

	"github.com/redink-ai/redink/internal/db"
	"github.com/redink-ai/redink/internal/models"
)

func newUsageDB(t *testing.T) *Service {
	t.Helper()
	conn, errOpen := db.Open(fmt.Sprintf("file:usage_%s?mode=memory&cache=shared", t.Name()))
	if errOpen != nil {
		t.Fatalf("open database: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewService(conn)
}

func seedRecords(t *testing.T, service *Service) {
	t.Helper()
	rows := []models.GenerationRecord{
		{UserID: 1, ConfigID: 1, Prompt: "a", Status: models.StatusCompleted, TokensUsed: 120, TokensPrompt: 80, TokensCompletion: 40, DurationMs: 900},
		{UserID: 1, ConfigID: 1, Prompt: "b", Status: models.StatusCompleted, TokensUsed: 60, TokensPrompt: 40, TokensCompletion: 20, DurationMs: 700},
		{UserID: 1, ConfigID: 1, Prompt: "c", Status: models.StatusFailed, DurationMs: 200},
		{UserID: 2, ConfigID: 1, Prompt: "other user", Status: models.StatusCompleted, TokensUsed: 999},
	}
	for i := range rows {
		rows[i].RequestID = fmt.Sprintf("%s-gen-%d", t.Name(), i)
		if errCreate := service.db.Create(&rows[i]).Error; errCreate != nil {
			t.Fatalf("seed generation record %d: %v", i, errCreate)
		}
	}
	classRows := []models.ClassificationRecord{
		{UserID: 1, ConfigID: 1, ImageURL: "https://img/1.jpg", Categories: []byte(`[{"id":"1","text":"美妆"}]`), Status: models.StatusUnclassified, TokensUsed: 30, DurationMs: 400},
	}
	for i := range classRows {
		classRows[i].RequestID = fmt.Sprintf("%s-class-%d", t.Name(), i)
		if errCreate := service.db.Create(&classRows[i]).Error; errCreate != nil {
			t.Fatalf("seed classification record %d: %v", i, errCreate)
		}
	}
}

func TestReportAggregatesPerUser(t *testing.T) {
	service := newUsageDB(t)
	seedRecords(t, service)

	report, errReport := service.Report(context.Background(), 1, 30)
	if errReport != nil {
		t.Fatalf("report: %v", errReport)
	}

	gen := report.Generation
	if gen.TotalRequests != 3 {
		t.Fatalf("generation total = %d, want 3", gen.TotalRequests)
	}
	if gen.Completed != 2 || gen.Failed != 1 {
		t.Fatalf("generation completed/failed = %d/%d, want 2/1", gen.Completed, gen.Failed)
	}
	if gen.TokensUsed != 180 {
		t.Fatalf("generation tokens = %d, want 180 (other user's rows must not count)", gen.TokensUsed)
	}
	if gen.TokensPrompt != 120 || gen.TokensCompletion != 60 {
		t.Fatalf("generation prompt/completion tokens = %d/%d", gen.TokensPrompt, gen.TokensCompletion)
	}
	if gen.AvgDurationMillis != 600 {
		t.Fatalf("generation avg duration = %d, want 600", gen.AvgDurationMillis)
	}

	class := report.Classification
	if class.TotalRequests != 1 || class.Unclassified != 1 {
		t.Fatalf("classification total/unclassified = %d/%d, want 1/1", class.TotalRequests, class.Unclassified)
	}
	if class.TokensUsed != 30 {
		t.Fatalf("classification tokens = %d, want 30", class.TokensUsed)
	}
}

func TestReportEmptyWindow(t *testing.T) {
	service := newUsageDB(t)

	report, errReport := service.Report(context.Background(), 7, 30)
	if errReport != nil {
		t.Fatalf("report: %v", errReport)
	}
	if report.Generation.TotalRequests != 0 || report.Classification.TotalRequests != 0 {
		t.Fatal("empty database must produce zero totals")
	}
	if report.Generation.AvgDurationMillis != 0 {
		t.Fatal("average duration over zero requests must be zero")
	}
}

func TestDailyBucketsByDay(t *testing.T) {
	service := newUsageDB(t)
	seedRecords(t, service)

	buckets, errDaily := service.Daily(context.Background(), 1, 30)
	if errDaily != nil {
		t.Fatalf("daily: %v", errDaily)
	}
	// All seeded rows share today's date.
	if len(buckets) != 1 {
		t.Fatalf("bucket count = %d, want 1", len(buckets))
	}
	if buckets[0].Requests != 4 {
		t.Fatalf("requests = %d, want 4", buckets[0].Requests)
	}
	if buckets[0].TokensUsed != 210 {
		t.Fatalf("tokens = %d, want 210", buckets[0].TokensUsed)
	}
}
