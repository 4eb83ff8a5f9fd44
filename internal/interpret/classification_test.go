package interpret

import (
	"strings"
	"testing"

	"github.com/redink-ai/redink/internal/models"
)

var testCategories = []models.Category{
	{ID: "1", Text: "美食"},
	{ID: "2", Text: "旅行"},
	{ID: "3", Text: "数码"},
}

func TestParseClassification_StrictJSON(t *testing.T) {
	content := `分析结果如下：
{"category_id": "2", "category_name": "旅行", "confidence": 0.92, "reasoning": "图片中有雪山和行李箱"}`

	result := ParseClassification(content, testCategories)
	if result.Unclassified() {
		t.Fatal("expected a classified result")
	}
	if *result.CategoryID != "2" || *result.CategoryName != "旅行" {
		t.Fatalf("unexpected category: %s/%s", *result.CategoryID, *result.CategoryName)
	}
	if result.Confidence != 0.92 {
		t.Fatalf("expected confidence 0.92, got %v", result.Confidence)
	}
	if result.Inferred {
		t.Fatal("strict path must not be marked inferred")
	}
}

func TestParseClassification_NullPairIsUnclassified(t *testing.T) {
	content := `{"category_id": null, "category_name": null, "confidence": 0, "reasoning": "图片过于模糊"}`

	result := ParseClassification(content, testCategories)
	if !result.Unclassified() {
		t.Fatal("expected unclassified outcome")
	}
	if result.Reasoning != "图片过于模糊" {
		t.Fatalf("expected supplied reasoning, got %q", result.Reasoning)
	}
	if result.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", result.Confidence)
	}
}

func TestParseClassification_ConfidenceClamped(t *testing.T) {
	content := `{"category_id": "1", "category_name": "美食", "confidence": 1.7}`
	result := ParseClassification(content, testCategories)
	if result.Confidence != 1 {
		t.Fatalf("expected clamp to 1, got %v", result.Confidence)
	}

	content = `{"category_id": "1", "category_name": "美食", "confidence": -0.3}`
	result = ParseClassification(content, testCategories)
	if result.Confidence != 0 {
		t.Fatalf("expected clamp to 0, got %v", result.Confidence)
	}
}

func TestParseClassification_MissingConfidenceDefaults(t *testing.T) {
	content := `{"category_id": "3", "category_name": "数码"}`
	result := ParseClassification(content, testCategories)
	if result.Confidence != 0.8 {
		t.Fatalf("expected default 0.8 confidence, got %v", result.Confidence)
	}
	if result.Reasoning == "" {
		t.Fatal("expected a reasoning string")
	}
}

func TestParseClassification_InvalidIDRemappedByLabel(t *testing.T) {
	content := `{"category_id": "99", "category_name": "旅行", "confidence": 0.8}`
	result := ParseClassification(content, testCategories)
	if result.Unclassified() {
		t.Fatal("expected remapped classification")
	}
	if *result.CategoryID != "2" {
		t.Fatalf("expected remap to ID 2, got %q", *result.CategoryID)
	}
}

func TestParseClassification_NumericID(t *testing.T) {
	content := `{"category_id": 3, "category_name": "数码", "confidence": 0.6}`
	result := ParseClassification(content, testCategories)
	if result.Unclassified() || *result.CategoryID != "3" {
		t.Fatalf("expected numeric ID normalized, got %+v", result)
	}
}

func TestParseClassification_HeuristicScoring(t *testing.T) {
	content := "这张图片展示了美食，摆盘精致，美食的色泽诱人。"
	result := ParseClassification(content, testCategories)
	if result.Unclassified() {
		t.Fatal("expected heuristic classification")
	}
	if *result.CategoryID != "1" {
		t.Fatalf("expected 美食 to win, got %q", *result.CategoryName)
	}
	if !result.Inferred {
		t.Fatal("heuristic path must be marked inferred")
	}
	if result.Reasoning == "" {
		t.Fatal("expected a reasoning string")
	}
}

func TestParseClassification_IDBonus(t *testing.T) {
	content := `结果 id: "3"`
	result := ParseClassification(content, testCategories)
	if result.Unclassified() || *result.CategoryID != "3" {
		t.Fatalf("expected ID mention to win, got %+v", result)
	}
	if result.Confidence > 0.95 {
		t.Fatalf("heuristic confidence must stay <= 0.95, got %v", result.Confidence)
	}
}

func TestParseClassification_DefaultsToFirstCategory(t *testing.T) {
	content := "完全无关的回复内容。"
	result := ParseClassification(content, testCategories)
	if result.Unclassified() {
		t.Fatal("expected defaulted classification")
	}
	if *result.CategoryID != testCategories[0].ID {
		t.Fatalf("expected first category, got %q", *result.CategoryID)
	}
	if result.Confidence > 0.5 {
		t.Fatalf("defaulted confidence must be <= 0.5, got %v", result.Confidence)
	}
	if !strings.Contains(result.Reasoning, "默认选择第一个分类") {
		t.Fatalf("expected default-choice reasoning, got %q", result.Reasoning)
	}
}

func TestParseClassification_DeclineWithoutJSON(t *testing.T) {
	content := "抱歉，这张图片无法分类。"
	result := ParseClassification(content, testCategories)
	if !result.Unclassified() {
		t.Fatal("expected unclassified outcome")
	}
	if result.Reasoning == "" {
		t.Fatal("expected a reasoning string")
	}
}

func TestParseClassification_ResultAlwaysInCandidateSet(t *testing.T) {
	replies := []string{
		`{"category_id": "2", "category_name": "旅行"}`,
		`{"category_id": "x", "category_name": "불명"}`,
		"自由文本，提到了旅行和数码。",
		"",
	}
	valid := map[string]bool{"1": true, "2": true, "3": true}
	for _, reply := range replies {
		result := ParseClassification(reply, testCategories)
		if result.CategoryID != nil && !valid[*result.CategoryID] {
			t.Fatalf("reply %q produced out-of-set ID %q", reply, *result.CategoryID)
		}
	}
}
