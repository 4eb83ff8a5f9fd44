package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/db"
	"github.com/redink-ai/redink/internal/models"
)

func errorsIsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func errorsIsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// newTestDB opens a private in-memory database per test and migrates the
// full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return conn
}

func TestMaskSecret(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"abc", "****"},
		{"abcd", "****"},
		{"sk-1234567890", "***7890"},
	}
	for _, tc := range cases {
		if got := MaskSecret(tc.in); got != tc.want {
			t.Fatalf("MaskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func countDefaults(t *testing.T, conn *gorm.DB, model any, userID uint64) int64 {
	t.Helper()
	var count int64
	err := conn.Model(model).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count defaults: %v", err)
	}
	return count
}

func TestCredentialStore_FirstBecomesDefault(t *testing.T) {
	conn := newTestDB(t)
	creds := NewCredentialStore(conn)
	ctx := context.Background()

	first := &models.ProviderCredential{UserID: 1, Name: "a", ProviderType: models.ProviderOpenAI, APIKey: "sk-a"}
	if err := creds.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("first credential should become the default")
	}

	second := &models.ProviderCredential{UserID: 1, Name: "b", ProviderType: models.ProviderOpenAI, APIKey: "sk-b"}
	if err := creds.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.IsDefault {
		t.Fatal("second credential must not steal the default")
	}
	if got := countDefaults(t, conn, &models.ProviderCredential{}, 1); got != 1 {
		t.Fatalf("expected exactly one default, got %d", got)
	}
}

func TestCredentialStore_ExplicitDefaultDemotesPrevious(t *testing.T) {
	conn := newTestDB(t)
	creds := NewCredentialStore(conn)
	ctx := context.Background()

	first := &models.ProviderCredential{UserID: 1, Name: "a", ProviderType: models.ProviderClaude, APIKey: "sk-a"}
	if err := creds.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := &models.ProviderCredential{UserID: 1, Name: "b", ProviderType: models.ProviderClaude, APIKey: "sk-b", IsDefault: true}
	if err := creds.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	def, err := creds.GetDefault(ctx, 1, models.ProviderClaude)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if def.ID != second.ID {
		t.Fatalf("expected credential %d as default, got %d", second.ID, def.ID)
	}
	if got := countDefaults(t, conn, &models.ProviderCredential{}, 1); got != 1 {
		t.Fatalf("expected exactly one default, got %d", got)
	}
}

func TestCredentialStore_DefaultsScopedPerProviderType(t *testing.T) {
	conn := newTestDB(t)
	creds := NewCredentialStore(conn)
	ctx := context.Background()

	openai := &models.ProviderCredential{UserID: 1, Name: "o", ProviderType: models.ProviderOpenAI, APIKey: "sk-o"}
	claude := &models.ProviderCredential{UserID: 1, Name: "c", ProviderType: models.ProviderClaude, APIKey: "sk-c"}
	if err := creds.Create(ctx, openai); err != nil {
		t.Fatalf("create openai: %v", err)
	}
	if err := creds.Create(ctx, claude); err != nil {
		t.Fatalf("create claude: %v", err)
	}
	if !openai.IsDefault || !claude.IsDefault {
		t.Fatal("each provider type keeps its own default")
	}
}

func TestCredentialStore_DeleteDefaultPromotesSurvivor(t *testing.T) {
	conn := newTestDB(t)
	creds := NewCredentialStore(conn)
	ctx := context.Background()

	first := &models.ProviderCredential{UserID: 1, Name: "a", ProviderType: models.ProviderOpenAI, APIKey: "sk-a"}
	second := &models.ProviderCredential{UserID: 1, Name: "b", ProviderType: models.ProviderOpenAI, APIKey: "sk-b"}
	third := &models.ProviderCredential{UserID: 1, Name: "c", ProviderType: models.ProviderOpenAI, APIKey: "sk-c"}
	for _, cred := range []*models.ProviderCredential{first, second, third} {
		if err := creds.Create(ctx, cred); err != nil {
			t.Fatalf("create %s: %v", cred.Name, err)
		}
	}

	if err := creds.Delete(ctx, 1, first.ID); err != nil {
		t.Fatalf("delete default: %v", err)
	}
	if got := countDefaults(t, conn, &models.ProviderCredential{}, 1); got != 1 {
		t.Fatalf("expected exactly one default after delete, got %d", got)
	}

	def, err := creds.GetDefault(ctx, 1, models.ProviderOpenAI)
	if err != nil {
		t.Fatalf("get default after delete: %v", err)
	}
	if def.ID != third.ID {
		t.Fatalf("expected most recent survivor %d promoted, got %d", third.ID, def.ID)
	}
}

func TestCredentialStore_OwnerScoping(t *testing.T) {
	conn := newTestDB(t)
	creds := NewCredentialStore(conn)
	ctx := context.Background()

	mine := &models.ProviderCredential{UserID: 1, Name: "a", ProviderType: models.ProviderOpenAI, APIKey: "sk-a"}
	if err := creds.Create(ctx, mine); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := creds.GetByID(ctx, 2, mine.ID); !errorsIsNotFound(err) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
	if err := creds.Delete(ctx, 2, mine.ID); !errorsIsNotFound(err) {
		t.Fatalf("expected not found on foreign delete, got %v", err)
	}
}

func TestCredentialStore_SetDefault(t *testing.T) {
	conn := newTestDB(t)
	creds := NewCredentialStore(conn)
	ctx := context.Background()

	first := &models.ProviderCredential{UserID: 1, Name: "a", ProviderType: models.ProviderVolcano, AppID: "id", AppKey: "k", AppSecret: "s"}
	second := &models.ProviderCredential{UserID: 1, Name: "b", ProviderType: models.ProviderVolcano, AppID: "id2", AppKey: "k2", AppSecret: "s2"}
	if err := creds.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := creds.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	if err := creds.SetDefault(ctx, 1, second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}
	def, err := creds.GetDefault(ctx, 1, models.ProviderVolcano)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if def.ID != second.ID {
		t.Fatalf("expected %d as default, got %d", second.ID, def.ID)
	}
	if got := countDefaults(t, conn, &models.ProviderCredential{}, 1); got != 1 {
		t.Fatalf("expected exactly one default, got %d", got)
	}
}

func TestGenerationConfigStore_DefaultLifecycle(t *testing.T) {
	conn := newTestDB(t)
	cfgs := NewGenerationConfigStore(conn)
	ctx := context.Background()

	first := &models.GenerationConfig{UserID: 1, Name: "a", ProviderType: models.ProviderOpenAI}
	if err := cfgs.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("first config should become the default")
	}

	second := &models.GenerationConfig{UserID: 1, Name: "b", ProviderType: models.ProviderClaude}
	if err := cfgs.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	// Promote via partial update.
	if _, err := cfgs.Update(ctx, 1, second.ID, map[string]any{"is_default": true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := countDefaults(t, conn, &models.GenerationConfig{}, 1); got != 1 {
		t.Fatalf("expected exactly one default, got %d", got)
	}
	def, err := cfgs.GetDefault(ctx, 1)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if def.ID != second.ID {
		t.Fatalf("expected %d as default, got %d", second.ID, def.ID)
	}

	// Deleting the default leaves exactly one default among survivors.
	if err := cfgs.Delete(ctx, 1, second.ID); err != nil {
		t.Fatalf("delete default: %v", err)
	}
	if got := countDefaults(t, conn, &models.GenerationConfig{}, 1); got != 1 {
		t.Fatalf("expected exactly one default after delete, got %d", got)
	}
	def, err = cfgs.GetDefault(ctx, 1)
	if err != nil {
		t.Fatalf("get default after delete: %v", err)
	}
	if def.ID != first.ID {
		t.Fatalf("expected %d promoted, got %d", first.ID, def.ID)
	}
}

func TestClassificationConfigStore_DefaultLifecycle(t *testing.T) {
	conn := newTestDB(t)
	cfgs := NewClassificationConfigStore(conn)
	ctx := context.Background()

	first := &models.ClassificationConfig{UserID: 7, Name: "a", ProviderType: models.ProviderVolcano}
	second := &models.ClassificationConfig{UserID: 7, Name: "b", ProviderType: models.ProviderVolcano, IsDefault: true}
	if err := cfgs.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := cfgs.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if got := countDefaults(t, conn, &models.ClassificationConfig{}, 7); got != 1 {
		t.Fatalf("expected exactly one default, got %d", got)
	}

	if err := cfgs.SetDefault(ctx, 7, first.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}
	def, err := cfgs.GetDefault(ctx, 7)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if def.ID != first.ID {
		t.Fatalf("expected %d as default, got %d", first.ID, def.ID)
	}
}

func TestGenerationRecordStore_Lifecycle(t *testing.T) {
	conn := newTestDB(t)
	recs := NewGenerationRecordStore(conn)
	ctx := context.Background()

	rec := &models.GenerationRecord{RequestID: "req-1", UserID: 1, ConfigID: 1, Prompt: "春季新品"}
	if err := recs.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Status != models.StatusProcessing {
		t.Fatalf("expected processing status on create, got %q", rec.Status)
	}

	err := recs.Update(ctx, rec.ID, map[string]any{
		"status":      models.StatusCompleted,
		"title":       "标题",
		"content":     "正文",
		"tokens_used": 42,
		"duration_ms": 830,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	loaded, err := recs.GetByID(ctx, 1, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != models.StatusCompleted || loaded.Title != "标题" || loaded.TokensUsed != 42 {
		t.Fatalf("unexpected record after update: %+v", loaded)
	}

	byReq, err := recs.GetByRequestID(ctx, "req-1")
	if err != nil {
		t.Fatalf("get by request id: %v", err)
	}
	if byReq.ID != rec.ID {
		t.Fatalf("request id lookup returned record %d, want %d", byReq.ID, rec.ID)
	}
}

func TestGenerationRecordStore_ListPaging(t *testing.T) {
	conn := newTestDB(t)
	recs := NewGenerationRecordStore(conn)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &models.GenerationRecord{RequestID: fmt.Sprintf("req-%d", i), UserID: 1, ConfigID: 1, Prompt: "p"}
		if err := recs.Create(ctx, rec); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	// Another owner's record must not leak into the listing.
	other := &models.GenerationRecord{RequestID: "req-other", UserID: 2, ConfigID: 1, Prompt: "p"}
	if err := recs.Create(ctx, other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	page, total, err := recs.ListByUser(ctx, 1, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if page[0].RequestID != "req-4" {
		t.Fatalf("expected newest first, got %q", page[0].RequestID)
	}

	last, _, err := recs.ListByUser(ctx, 1, 3, 2)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(last) != 1 {
		t.Fatalf("expected final page of 1, got %d", len(last))
	}
}

func TestGenerationRecordStore_Rate(t *testing.T) {
	conn := newTestDB(t)
	recs := NewGenerationRecordStore(conn)
	ctx := context.Background()

	rec := &models.GenerationRecord{RequestID: "req-1", UserID: 1, ConfigID: 1, Prompt: "p"}
	if err := recs.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := recs.Rate(ctx, 1, rec.ID, 0, ""); err == nil {
		t.Fatal("expected rating validation error")
	}
	if err := recs.Rate(ctx, 1, rec.ID, 6, ""); err == nil {
		t.Fatal("expected rating validation error")
	}
	if err := recs.Rate(ctx, 1, rec.ID, 4, "不错"); err != nil {
		t.Fatalf("rate: %v", err)
	}

	loaded, err := recs.GetByID(ctx, 1, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.UserRating == nil || *loaded.UserRating != 4 || loaded.UserFeedback != "不错" {
		t.Fatalf("unexpected rating state: %+v", loaded)
	}

	if err := recs.Rate(ctx, 2, rec.ID, 3, ""); !errorsIsNotFound(err) {
		t.Fatalf("expected not found for foreign rater, got %v", err)
	}
}

func TestClassificationRecordStore_Lifecycle(t *testing.T) {
	conn := newTestDB(t)
	recs := NewClassificationRecordStore(conn)
	ctx := context.Background()

	rec := &models.ClassificationRecord{
		RequestID:  "req-1",
		UserID:     1,
		ConfigID:   1,
		ImageURL:   "https://example.com/a.jpg",
		Categories: []byte(`[{"id":"1","text":"美妆"}]`),
	}
	if err := recs.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Status != models.StatusProcessing {
		t.Fatalf("expected processing status on create, got %q", rec.Status)
	}

	err := recs.Update(ctx, rec.ID, map[string]any{
		"status":        models.StatusUnclassified,
		"category_id":   nil,
		"category_name": nil,
		"reasoning":     "图片内容不属于任何分类",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	loaded, err := recs.GetByID(ctx, 1, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != models.StatusUnclassified || loaded.CategoryID != nil {
		t.Fatalf("unexpected record after update: %+v", loaded)
	}

	if err := recs.Delete(ctx, 1, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := recs.GetByID(ctx, 1, rec.ID); !errorsIsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestForbiddenWordStore_AddAndDuplicate(t *testing.T) {
	conn := newTestDB(t)
	words := NewForbiddenWordStore(conn)
	ctx := context.Background()

	row, err := words.Add(ctx, "违禁词", "xhs", 2, "备注", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if row.ID == 0 || row.Level != 2 {
		t.Fatalf("unexpected row: %+v", row)
	}

	if _, err := words.Add(ctx, "违禁词", "xhs", 1, "", 1); !errorsIsDuplicate(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	// Same word in another scope is fine.
	if _, err := words.Add(ctx, "违禁词", "other", 1, "", 1); err != nil {
		t.Fatalf("add to other scope: %v", err)
	}

	list, err := words.Words(ctx, "xhs")
	if err != nil {
		t.Fatalf("words: %v", err)
	}
	if len(list) != 1 || list[0] != "违禁词" {
		t.Fatalf("unexpected word list: %v", list)
	}
}

func TestForbiddenWordStore_SearchAndDelete(t *testing.T) {
	conn := newTestDB(t)
	words := NewForbiddenWordStore(conn)
	ctx := context.Background()

	if _, err := words.Add(ctx, "SpamWord", "xhs", 1, "", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := words.Add(ctx, "другое", "xhs", 1, "", 1); err != nil {
		t.Fatalf("add second: %v", err)
	}

	rows, total, err := words.Search(ctx, "xhs", "spamword", 1, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Word != "SpamWord" {
		t.Fatalf("unexpected search result: total=%d rows=%+v", total, rows)
	}

	deleted, err := words.Delete(ctx, rows[0].ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Application != "xhs" {
		t.Fatalf("expected deleted row to carry its scope, got %q", deleted.Application)
	}
	remaining, err := words.Words(ctx, "xhs")
	if err != nil {
		t.Fatalf("words: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected one remaining word, got %v", remaining)
	}
}

func TestForbiddenWordStore_Detections(t *testing.T) {
	conn := newTestDB(t)
	words := NewForbiddenWordStore(conn)
	ctx := context.Background()

	if err := words.LogDetection(ctx, "样例内容", []string{"违禁词"}, "xhs"); err != nil {
		t.Fatalf("log detection: %v", err)
	}
	rows, total, err := words.Detections(ctx, "xhs", 1, 10)
	if err != nil {
		t.Fatalf("detections: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ContentSample != "样例内容" {
		t.Fatalf("unexpected detections: total=%d rows=%+v", total, rows)
	}

	_, total, err = words.Detections(ctx, "other", 1, 10)
	if err != nil {
		t.Fatalf("detections other scope: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no detections in other scope, got %d", total)
	}
}

func TestAppKeyStore_HashLookupAndDisable(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserStore(conn)
	keys := NewAppKeyStore(conn)
	ctx := context.Background()

	user := &models.User{Username: "admin", Password: "hash"}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	key := &models.AppKey{UserID: user.ID, Name: "mini-app", Application: "xhs", KeyHash: "deadbeef", KeyPrefix: "rdk_dead", Active: true}
	if err := keys.Create(ctx, key); err != nil {
		t.Fatalf("create key: %v", err)
	}

	loaded, err := keys.GetByHash(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("get by hash: %v", err)
	}
	if loaded.Application != "xhs" {
		t.Fatalf("unexpected key: %+v", loaded)
	}

	if err := keys.Disable(ctx, user.ID, key.ID); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := keys.GetByHash(ctx, "deadbeef"); !errorsIsNotFound(err) {
		t.Fatalf("expected disabled key to be invisible, got %v", err)
	}
}

func TestUserStore_Lookup(t *testing.T) {
	conn := newTestDB(t)
	users := NewUserStore(conn)
	ctx := context.Background()

	count, err := users.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty table, got %d", count)
	}

	user := &models.User{Username: "admin", Password: "hash", Active: true}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	loaded, err := users.GetByUsername(ctx, "  admin ")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if loaded.ID != user.ID {
		t.Fatalf("lookup returned user %d, want %d", loaded.ID, user.ID)
	}
	if _, err := users.GetByUsername(ctx, "nobody"); !errorsIsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
