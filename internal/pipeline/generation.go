package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/redink-ai/redink/internal/interpret"
	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/prompt"
	"github.com/redink-ai/redink/internal/provider"
	"github.com/redink-ai/redink/internal/safety"
	"github.com/redink-ai/redink/internal/store"
)

// GenerationInput is one copy-generation request after authentication.
type GenerationInput struct {
	UserID   uint64
	AppKeyID *uint64

	// Application is the forbidden-word scope. Empty skips safety checks.
	Application string

	// ConfigID selects an explicit config; nil uses the owner's default.
	ConfigID *uint64

	Prompt    string
	ImageURLs []string

	// CheckOutput runs the safety filter over the generated copy as well.
	CheckOutput bool

	IPAddress string
	UserAgent string
}

// GenerationResult is the caller-facing outcome of one generation request.
type GenerationResult struct {
	RecordID  uint64   `json:"record_id"`
	RequestID string   `json:"request_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Status    string   `json:"status"`

	TokensUsed int `json:"tokens_used"`
	DurationMs int `json:"duration_ms"`

	ProviderType string `json:"provider_type"`
	ModelID      string `json:"model_id"`
}

// GenerationService runs the copy-generation pipeline.
type GenerationService struct {
	configs *store.GenerationConfigStore
	creds   *store.CredentialStore
	records *store.GenerationRecordStore
	filter  *safety.Filter

	// newClient is provider.New unless a test injects a stub.
	newClient func(providerType string, cred provider.Credential) (provider.Client, error)
}

// NewGenerationService constructs a GenerationService. The filter may be
// nil, which disables safety checks.
func NewGenerationService(configs *store.GenerationConfigStore, creds *store.CredentialStore, records *store.GenerationRecordStore, filter *safety.Filter) *GenerationService {
	return &GenerationService{
		configs:   configs,
		creds:     creds,
		records:   records,
		filter:    filter,
		newClient: provider.New,
	}
}

// Generate runs one request end to end. A record is created in the
// processing state right after config resolution; every failure past that
// point, credential lookup included, moves it to exactly one terminal state
// before the error is returned.
func (s *GenerationService) Generate(ctx context.Context, input GenerationInput) (*GenerationResult, error) {
	input.Prompt = strings.TrimSpace(input.Prompt)
	if input.Prompt == "" {
		return nil, invalid("prompt", "must not be empty")
	}
	for i, raw := range input.ImageURLs {
		input.ImageURLs[i] = strings.TrimSpace(raw)
		if !validHTTPURL(input.ImageURLs[i]) {
			return nil, invalid("image_urls", fmt.Sprintf("entry %d must be an http or https URL", i))
		}
	}

	if err := s.checkContent(ctx, input.Prompt, input.Application); err != nil {
		return nil, err
	}

	cfg, err := s.resolveConfig(ctx, input.UserID, input.ConfigID)
	if err != nil {
		return nil, err
	}

	modelID := cfg.ModelID
	if len(input.ImageURLs) > 0 && cfg.VisionModelID != "" {
		modelID = cfg.VisionModelID
	}

	record := &models.GenerationRecord{
		RequestID:    uuid.NewString(),
		UserID:       input.UserID,
		ConfigID:     cfg.ID,
		AppKeyID:     input.AppKeyID,
		Prompt:       input.Prompt,
		ImageURLs:    mustJSON(input.ImageURLs),
		Status:       models.StatusProcessing,
		ProviderType: cfg.ProviderType,
		ModelID:      modelID,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}
	start := time.Now()

	credRow, err := resolveCredential(ctx, s.creds, input.UserID, cfg.CredentialID, cfg.ProviderType)
	if err != nil {
		s.fail(ctx, record.ID, err, elapsedMs(start), nil)
		return nil, err
	}

	words, err := s.wordList(ctx, input.Application)
	if err != nil {
		s.fail(ctx, record.ID, err, elapsedMs(start), nil)
		return nil, err
	}
	steering, err := s.steering(ctx, input.Application)
	if err != nil {
		s.fail(ctx, record.ID, err, elapsedMs(start), nil)
		return nil, err
	}
	messages := prompt.BuildGeneration(cfg, input.Prompt, input.ImageURLs, words, steering)

	client, err := s.newClient(cfg.ProviderType, provider.CredentialFromModel(credRow))
	if err != nil {
		s.fail(ctx, record.ID, err, elapsedMs(start), nil)
		return nil, err
	}

	completion, err := client.GenerateChatCompletion(ctx, messages, modelID, cfg.MaxTokens, cfg.Temperature)
	elapsed := elapsedMs(start)
	if err != nil {
		s.fail(ctx, record.ID, err, elapsed, nil)
		return nil, fmt.Errorf("pipeline: generation call: %w", err)
	}

	parsed := interpret.ParseGeneration(completion.Text, cfg.TagsCount)

	if input.CheckOutput {
		if err := s.checkContent(ctx, parsed.Title+"\n"+parsed.Body, input.Application); err != nil {
			s.fail(ctx, record.ID, err, elapsed, completion)
			return nil, err
		}
	}

	updates := map[string]any{
		"status":            models.StatusCompleted,
		"title":             parsed.Title,
		"content":           parsed.Body,
		"tags":              mustJSON(parsed.Tags),
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

	return &GenerationResult{
		RecordID:     record.ID,
		RequestID:    record.RequestID,
		Title:        parsed.Title,
		Content:      parsed.Body,
		Tags:         parsed.Tags,
		Status:       models.StatusCompleted,
		TokensUsed:   completion.Usage.TotalTokens,
		DurationMs:   elapsed,
		ProviderType: cfg.ProviderType,
		ModelID:      completion.Model,
	}, nil
}

func (s *GenerationService) resolveConfig(ctx context.Context, userID uint64, configID *uint64) (*models.GenerationConfig, error) {
	var cfg *models.GenerationConfig
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

// checkContent runs the safety filter when a scope is set; a match surfaces
// as *safety.BlockedError.
func (s *GenerationService) checkContent(ctx context.Context, content, application string) error {
	if s.filter == nil || application == "" {
		return nil
	}
	return s.filter.Validate(ctx, content, application)
}

// wordList returns the scope's forbidden words for prompt steering.
func (s *GenerationService) wordList(ctx context.Context, application string) ([]string, error) {
	if s.filter == nil || application == "" {
		return nil, nil
	}
	return s.filter.WordList(ctx, application)
}

// steering renders the scope's word list as the system prompt instruction.
func (s *GenerationService) steering(ctx context.Context, application string) (string, error) {
	if s.filter == nil || application == "" {
		return "", nil
	}
	return s.filter.PromptInstruction(ctx, application)
}

// fail moves a record to the failed state. The update error is logged, not
// returned, so the original failure reaches the caller.
func (s *GenerationService) fail(ctx context.Context, recordID uint64, cause error, elapsed int, completion *provider.CompletionResult) {
	updates := map[string]any{
		"status":        models.StatusFailed,
		"error_message": cause.Error(),
		"duration_ms":   elapsed,
	}
	if completion != nil {
		updates["raw_request"] = datatypes.JSON(completion.RawRequest)
		updates["raw_response"] = datatypes.JSON(completion.RawResponse)
		updates["tokens_used"] = completion.Usage.TotalTokens
		updates["tokens_prompt"] = completion.Usage.PromptTokens
		updates["tokens_completion"] = completion.Usage.CompletionTokens
	}
	if err := s.records.Update(ctx, recordID, updates); err != nil {
		logFailurePersist(recordID, err)
	}
}

// logFailurePersist reports a failure-state write that itself failed. The
// original provider error still reaches the caller.
func logFailurePersist(recordID uint64, err error) {
	log.WithError(err).WithField("record_id", recordID).
		Warn("pipeline: failed to persist failure state")
}

// mustJSON marshals values whose shape we control; it returns null on the
// impossible marshal failure rather than dropping the record write.
func mustJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Warn("pipeline: marshal record column")
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(payload)
}
