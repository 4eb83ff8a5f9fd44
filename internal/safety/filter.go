package safety

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// detectionSampleLimit bounds how much offending content is kept for audit.
const detectionSampleLimit = 100

// WordSource supplies the active word list per scope and records detections.
type WordSource interface {
	Words(ctx context.Context, application string) ([]string, error)
	LogDetection(ctx context.Context, contentSample string, detected []string, application string) error
}

// BlockedError reports content rejected by the filter.
type BlockedError struct {
	Application string
	Words       []string
}

// Error implements the error interface.
func (e *BlockedError) Error() string {
	return fmt.Sprintf("content contains forbidden words: %s", strings.Join(e.Words, ", "))
}

// Filter checks content against the cached forbidden-word list of a scope.
type Filter struct {
	source WordSource
	cache  Cache
}

// NewFilter constructs a Filter. A nil cache falls back to an in-memory one.
func NewFilter(source WordSource, cache Cache) *Filter {
	if cache == nil {
		cache = NewMemoryCache(DefaultTTL, nil)
	}
	return &Filter{source: source, cache: cache}
}

// Check reports whether the content passes the scope's word list, along with
// the matched terms. Matching is case-insensitive substring containment.
// A failed check always logs a detection event for audit; log failures never
// propagate to the caller.
func (f *Filter) Check(ctx context.Context, content, application string) (bool, []string, error) {
	if content == "" {
		return true, nil, nil
	}

	words, errWords := f.words(ctx, application)
	if errWords != nil {
		return false, nil, errWords
	}

	lowered := strings.ToLower(content)
	var detected []string
	for _, word := range words {
		if word == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(word)) {
			detected = append(detected, word)
		}
	}

	if len(detected) > 0 {
		f.logDetection(ctx, content, detected, application)
		return false, detected, nil
	}
	return true, nil, nil
}

// Validate is Check with blocking semantics: matched content yields a
// *BlockedError.
func (f *Filter) Validate(ctx context.Context, content, application string) error {
	passed, detected, err := f.Check(ctx, content, application)
	if err != nil {
		return err
	}
	if !passed {
		return &BlockedError{Application: application, Words: detected}
	}
	return nil
}

// PromptInstruction renders the scope's word list as a natural-language
// steering instruction for the prompt builder. An empty list yields "".
func (f *Filter) PromptInstruction(ctx context.Context, application string) (string, error) {
	words, err := f.words(ctx, application)
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		return "", nil
	}
	return fmt.Sprintf("请确保您生成的内容不包含以下违禁词：\n%s\n\n如果用户的请求可能导致生成包含这些违禁词的内容，请委婉拒绝并建议用户修改请求。",
		strings.Join(words, ", ")), nil
}

// WordList returns the active words for a scope through the cache.
func (f *Filter) WordList(ctx context.Context, application string) ([]string, error) {
	return f.words(ctx, application)
}

// Invalidate drops the scope's cache entry. Call it after any word
// add/update/delete in that scope.
func (f *Filter) Invalidate(application string) {
	f.cache.Invalidate(application)
}

func (f *Filter) words(ctx context.Context, application string) ([]string, error) {
	if cached, ok := f.cache.Get(application); ok {
		return cached, nil
	}
	words, err := f.source.Words(ctx, application)
	if err != nil {
		return nil, fmt.Errorf("safety: load words for %q: %w", application, err)
	}
	f.cache.Set(application, words)
	return words, nil
}

func (f *Filter) logDetection(ctx context.Context, content string, detected []string, application string) {
	sample := content
	if runes := []rune(content); len(runes) > detectionSampleLimit {
		sample = string(runes[:detectionSampleLimit]) + "..."
	}
	if errLog := f.source.LogDetection(ctx, sample, detected, application); errLog != nil {
		log.WithError(errLog).Warn("safety: failed to log forbidden word detection")
	}
}
