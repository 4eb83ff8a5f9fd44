package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/redink-ai/redink/internal/interpret"
	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/prompt"
	"github.com/redink-ai/redink/internal/provider"
	"github.com/redink-ai/redink/internal/store"
)

// ClassificationInput is one image-classification request after
// authentication.
type ClassificationInput struct {
	UserID   uint64
	AppKeyID *uint64

	// ConfigID selects an explicit config; nil uses the owner's default.
	ConfigID *uint64

	ImageURL   string
	Categories []models.Category

	IPAddress string
	UserAgent string
}

// ClassificationResult is the caller-facing outcome of one classification
// request. CategoryID and CategoryName are nil when the image could not be
// classified.
type ClassificationResult struct {
	RecordID  uint64 `json:"record_id"`
	RequestID string `json:"request_id"`
	Status    string `json:"status"`

	CategoryID   *string `json:"category_id"`
	CategoryName *string `json:"category_name"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
	Inferred     bool    `json:"inferred"`

	TokensUsed int `json:"tokens_used"`
	DurationMs int `json:"duration_ms"`

	ProviderType string `json:"provider_type"`
	ModelID      string `json:"model_id"`
}

// ClassificationService runs the image-classification pipeline.
type ClassificationService struct {
	configs *store.ClassificationConfigStore
	creds   *store.CredentialStore
	records *store.ClassificationRecordStore

	newClient func(providerType string, cred provider.Credential) (provider.Client, error)
}

// NewClassificationService constructs a ClassificationService.
func NewClassificationService(configs *store.ClassificationConfigStore, creds *store.CredentialStore, records *store.ClassificationRecordStore) *ClassificationService {
	return &ClassificationService{
		configs:   configs,
		creds:     creds,
		records:   records,
		newClient: provider.New,
	}
}

// Classify runs one request end to end. Interpretation never fails: the
// record lands in completed or unclassified when the provider call
// succeeds, failed otherwise. The record is created right after config
// resolution so provider-gate and credential failures are persisted too.
func (s *ClassificationService) Classify(ctx context.Context, input ClassificationInput) (*ClassificationResult, error) {
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	if input.ImageURL == "" {
		return nil, invalid("image_url", "must not be empty")
	}
	if !validHTTPURL(input.ImageURL) {
		return nil, invalid("image_url", "must be an http or https URL")
	}
	if len(input.Categories) < 2 {
		return nil, invalid("categories", "need at least two candidates")
	}
	for i, cat := range input.Categories {
		if strings.TrimSpace(cat.ID) == "" || strings.TrimSpace(cat.Text) == "" {
			return nil, invalid("categories", fmt.Sprintf("entry %d needs both id and text", i))
		}
	}

	cfg, err := s.resolveConfig(ctx, input.UserID, input.ConfigID)
	if err != nil {
		return nil, err
	}

	record := &models.ClassificationRecord{
		RequestID:    uuid.NewString(),
		UserID:       input.UserID,
		ConfigID:     cfg.ID,
		AppKeyID:     input.AppKeyID,
		ImageURL:     input.ImageURL,
		Categories:   mustJSON(input.Categories),
		Status:       models.StatusProcessing,
		ProviderType: cfg.ProviderType,
		ModelID:      cfg.ModelID,
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}
	start := time.Now()

	// Classification needs a vision-capable endpoint; only the Volcano
	// vision models are wired for it.
	if cfg.ProviderType != models.ProviderVolcano {
		errGate := invalid("provider_type", fmt.Sprintf("%s does not support image classification", cfg.ProviderType))
		s.fail(ctx, record.ID, errGate, elapsedMs(start), nil)
		return nil, errGate
	}
	credRow, err := resolveCredential(ctx, s.creds, input.UserID, cfg.CredentialID, cfg.ProviderType)
	if err != nil {
		s.fail(ctx, record.ID, err, elapsedMs(start), nil)
		return nil, err
	}

	messages := prompt.BuildClassification(cfg, input.ImageURL, input.Categories)

	client, err := s.newClient(cfg.ProviderType, provider.CredentialFromModel(credRow))
	if err != nil {
		s.fail(ctx, record.ID, err, elapsedMs(start), nil)
		return nil, err
	}

	completion, err := client.GenerateChatCompletion(ctx, messages, cfg.ModelID, cfg.MaxTokens, cfg.Temperature)
	elapsed := elapsedMs(start)
	if err != nil {
		s.fail(ctx, record.ID, err, elapsed, nil)
		return nil, fmt.Errorf("pipeline: classification call: %w", err)
	}

	parsed := interpret.ParseClassification(completion.Text, input.Categories)

	status := models.StatusCompleted
	if parsed.Unclassified() {
		status = models.StatusUnclassified
	}
	updates := map[string]any{
		"status":            status,
		"category_id":       parsed.CategoryID,
		"category_name":     parsed.CategoryName,
		"confidence":        parsed.Confidence,
		"reasoning":         parsed.Reasoning,
		"tokens_used":       completion.Usage.TotalTokens,
		"tokens_prompt":     completion.Usage.PromptTokens,
		"tokens_completion": completion.Usage.CompletionTokens,
		"duration_ms":       elapsed,
		"model_id":          completion.Model,
		"raw_request":       datatypes.JSON(completion.RawRequest),
		"raw_response":      datatypes.JSON(completion.RawResponse),
	}
	if err := s.records.Update(ctx, record.ID, updates); err != nil {
		return nil, err
	}

	return &ClassificationResult{
		RecordID:     record.ID,
		RequestID:    record.RequestID,
		Status:       status,
		CategoryID:   parsed.CategoryID,
		CategoryName: parsed.CategoryName,
		Confidence:   parsed.Confidence,
		Reasoning:    parsed.Reasoning,
		Inferred:     parsed.Inferred,
		TokensUsed:   completion.Usage.TotalTokens,
		DurationMs:   elapsed,
		ProviderType: cfg.ProviderType,
		ModelID:      completion.Model,
	}, nil
}

func (s *ClassificationService) resolveConfig(ctx context.Context, userID uint64, configID *uint64) (*models.ClassificationConfig, error) {
	var cfg *models.ClassificationConfig
	var err error
	if configID != nil {
		cfg, err = s.configs.GetByID(ctx, userID, *configID)
	} else {
		cfg, err = s.configs.GetDefault(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	if !cfg.IsActive {
		return nil, ErrConfigInactive
	}
	return cfg, nil
}

func (s *ClassificationService) fail(ctx context.Context, recordID uint64, cause error, elapsed int, completion *provider.CompletionResult) {
	updates := map[string]any{
		"status":        models.StatusFailed,
		"error_message": cause.Error(),
		"duration_ms":   elapsed,
	}
	if completion != nil {
		updates["raw_request"] = datatypes.JSON(completion.RawRequest)
		updates["raw_response"] = datatypes.JSON(completion.RawResponse)
	}
	if err := s.records.Update(ctx, recordID, updates); err != nil {
		logFailurePersist(recordID, err)
	}
}

// resolveCredential loads the explicit credential when the config pins one,
// otherwise the owner's default for the provider type.
func resolveCredential(ctx context.Context, creds *store.CredentialStore, userID uint64, credentialID *uint64, providerType string) (*models.ProviderCredential, error) {
	var row *models.ProviderCredential
	var err error
	if credentialID != nil {
		row, err = creds.GetByID(ctx, userID, *credentialID)
	} else {
		row, err = creds.GetDefault(ctx, userID, providerType)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	if !row.IsActive {
		return nil, ErrCredentialInactive
	}
	if row.ProviderType != providerType {
		return nil, invalid("credential_id", fmt.Sprintf("credential is for %s, config needs %s", row.ProviderType, providerType))
	}
	return row, nil
}
