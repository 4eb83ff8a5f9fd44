package interpret

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/redink-ai/redink/internal/models"
)

// Reasoning strings attached when the model's own rationale is unavailable.
const (
	reasoningUnclassifiable   = "无法对图片进行分类，信息值太低或不符合任何给定分类"
	reasoningDeclaredInText   = "根据LLM响应，图片无法分类"
	reasoningDeclaredNoJSON   = "LLM表示无法分类，但未返回标准JSON格式"
	reasoningInferred         = "通过文本分析推断的分类结果"
	reasoningDefaultedToFirst = "无法确定明确分类，默认选择第一个分类"
	reasoningNotProvided      = "未提供推理过程"
)

// Classification is the structured outcome of interpreting a classification
// reply. A nil CategoryID means the model explicitly declined to choose.
type Classification struct {
	CategoryID   *string
	CategoryName *string
	Confidence   float64
	Reasoning    string
	Inferred     bool // True when the heuristic fallback produced the result.
}

// Unclassified reports whether the model declined to pick a category.
func (c Classification) Unclassified() bool { return c.CategoryID == nil }

// declinePhrases are literal markers of an explicit cannot-classify reply.
var declinePhrases = []string{"无法分类", "不属于任何分类"}

// ParseClassification interprets a provider reply against the candidate set.
// It never fails: the strict JSON path falls through to heuristic scoring and
// the result always carries a clamped confidence and a reasoning string.
func ParseClassification(content string, categories []models.Category) Classification {
	if raw := ExtractJSON(content); raw != "" {
		if result, ok := parseStrict(raw, content, categories); ok {
			return result
		}
		return guessClassification(content, categories)
	}

	if containsDeclinePhrase(content) {
		return Classification{Confidence: 0, Reasoning: reasoningDeclaredNoJSON}
	}
	return guessClassification(content, categories)
}

// strictPayload mirrors the JSON shape the prompt requests. RawMessage keeps
// field presence distinguishable from explicit null.
type strictPayload struct {
	CategoryID   json.RawMessage `json:"category_id"`
	CategoryName json.RawMessage `json:"category_name"`
	Confidence   *float64        `json:"confidence"`
	Reasoning    string          `json:"reasoning"`
}

// parseStrict handles the valid-JSON path. ok=false means the payload is
// unusable and the caller should fall through to the heuristic.
func parseStrict(raw, content string, categories []models.Category) (Classification, bool) {
	var keys map[string]json.RawMessage
	if json.Unmarshal([]byte(raw), &keys) != nil {
		return Classification{}, false
	}

	var payload strictPayload
	if json.Unmarshal([]byte(raw), &payload) != nil {
		return Classification{}, false
	}

	_, hasID := keys["category_id"]
	_, hasName := keys["category_name"]

	// An explicit null/null pair is the model declining, not an error.
	if hasID && hasName && isJSONNull(payload.CategoryID) && isJSONNull(payload.CategoryName) {
		reasoning := payload.Reasoning
		if reasoning == "" {
			reasoning = reasoningUnclassifiable
		}
		return Classification{Confidence: 0, Reasoning: reasoning}, true
	}

	if !hasID || !hasName {
		if containsDeclinePhrase(content) {
			return Classification{Confidence: 0, Reasoning: reasoningDeclaredInText}, true
		}
		return Classification{}, false
	}

	categoryID := decodeFlexibleString(payload.CategoryID)
	categoryName := decodeFlexibleString(payload.CategoryName)

	confidence := 0.8
	if payload.Confidence != nil {
		confidence = clampConfidence(*payload.Confidence)
	}
	reasoning := payload.Reasoning
	if reasoning == "" {
		reasoning = reasoningNotProvided
	}

	// Remap an unknown ID via case-insensitive label match before giving up.
	if !isValidCategoryID(categoryID, categories) {
		remapped := ""
		for _, cat := range categories {
			if strings.EqualFold(cat.Text, categoryName) {
				remapped = cat.ID
				break
			}
		}
		if remapped == "" {
			return Classification{}, false
		}
		categoryID = remapped
	}

	return Classification{
		CategoryID:   &categoryID,
		CategoryName: &categoryName,
		Confidence:   confidence,
		Reasoning:    reasoning,
	}, true
}

// guessClassification scores each candidate by label occurrences, with a
// fixed bonus when its ID appears after the word "id". All-zero scores default
// to the first candidate.
func guessClassification(content string, categories []models.Category) Classification {
	if len(categories) == 0 {
		return Classification{Confidence: 0, Reasoning: reasoningUnclassifiable, Inferred: true}
	}

	lowered := strings.ToLower(content)

	var best *models.Category
	highest := 0
	for i := range categories {
		cat := categories[i]
		score := strings.Count(lowered, strings.ToLower(cat.Text))

		idPattern := regexp.MustCompile(`id[:\s]*["']?` + regexp.QuoteMeta(strings.ToLower(cat.ID)) + `["']?`)
		if idPattern.MatchString(lowered) {
			score += 5
		}

		if score > highest {
			highest = score
			best = &categories[i]
		}
	}

	reasoning := reasoningInferred
	confidence := clampConfidence(float64(highest) * 0.1)
	if confidence > 0.95 {
		confidence = 0.95
	}
	if best == nil {
		best = &categories[0]
		reasoning = reasoningDefaultedToFirst
		confidence = 0.5
	}

	id := best.ID
	name := best.Text
	return Classification{
		CategoryID:   &id,
		CategoryName: &name,
		Confidence:   confidence,
		Reasoning:    reasoning,
		Inferred:     true,
	}
}

func containsDeclinePhrase(content string) bool {
	for _, phrase := range declinePhrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

func isValidCategoryID(id string, categories []models.Category) bool {
	for _, cat := range categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

// decodeFlexibleString accepts both string and numeric JSON values, since
// models frequently return numeric IDs unquoted.
func decodeFlexibleString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}

// clampConfidence forces a confidence value into [0,1].
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
