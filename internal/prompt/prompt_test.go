package prompt

import (
	"strings"
	"testing"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/provider"
)

func genConfig() *models.GenerationConfig {
	return &models.GenerationConfig{
		UserPromptTemplate: "围绕主题写一篇笔记：{prompt}",
		TitleLength:        30,
		ContentLength:      600,
		TagsCount:          3,
		IncludeEmojis:      true,
	}
}

func TestBuildGeneration_PlaceholderSubstitution(t *testing.T) {
	messages := BuildGeneration(genConfig(), "周末露营", nil, nil, "")
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != provider.RoleSystem {
		t.Fatalf("expected system message first, got %q", messages[0].Role)
	}
	user := messages[1].Text
	if !strings.Contains(user, "围绕主题写一篇笔记：周末露营") {
		t.Fatalf("expected substituted template, got %q", user)
	}
	if strings.Contains(user, PlaceholderPrompt) {
		t.Fatal("placeholder should be replaced")
	}
}

func TestBuildGeneration_MissingPlaceholderAppendsInput(t *testing.T) {
	cfg := genConfig()
	cfg.UserPromptTemplate = "写一篇种草笔记。"

	messages := BuildGeneration(cfg, "关于机械键盘", nil, nil, "")
	user := messages[1].Text
	if !strings.Contains(user, "写一篇种草笔记。\n\n关于机械键盘") {
		t.Fatalf("expected input appended after template, got %q", user)
	}
}

func TestBuildGeneration_RequirementsBlock(t *testing.T) {
	messages := BuildGeneration(genConfig(), "x", nil, []string{"最低价", "全网第一"}, "")
	user := messages[1].Text

	for _, want := range []string{
		"1. 标题长度不超过30个字",
		"2. 正文内容600字左右",
		"3. 生成3个适合的标签",
		"4. 适当地使用表情符号",
		"5. 请特别注意，严禁输出以下词语: 最低价、全网第一",
		MarkerTitle, MarkerBody, MarkerTags,
	} {
		if !strings.Contains(user, want) {
			t.Fatalf("expected requirements to contain %q, got:\n%s", want, user)
		}
	}
}

func TestBuildGeneration_SteeringAppendedToSystemPrompt(t *testing.T) {
	steering := "请确保您生成的内容不包含以下违禁词：\n最低价"
	messages := BuildGeneration(genConfig(), "x", nil, []string{"最低价"}, steering)

	if !strings.Contains(messages[0].Text, steering) {
		t.Fatalf("expected steering in system prompt, got %q", messages[0].Text)
	}

	plain := BuildGeneration(genConfig(), "x", nil, nil, "")
	if strings.Contains(plain[0].Text, "违禁词") {
		t.Fatal("empty steering must leave the system prompt untouched")
	}
}

func TestBuildGeneration_ImageCap(t *testing.T) {
	urls := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	messages := BuildGeneration(genConfig(), "x", urls, nil, "")

	parts := messages[1].Parts
	if len(parts) != 5 { // text part + 4 images
		t.Fatalf("expected 1 text + 4 image parts, got %d", len(parts))
	}
	if parts[0].Type != provider.PartText {
		t.Fatalf("expected leading text part, got %q", parts[0].Type)
	}
	for i, part := range parts[1:] {
		if part.Type != provider.PartImageURL || part.ImageURL != urls[i] {
			t.Fatalf("unexpected image part %d: %+v", i, part)
		}
	}
}

func TestBuildGeneration_Defaults(t *testing.T) {
	messages := BuildGeneration(&models.GenerationConfig{}, "topic", nil, nil, "")
	if messages[0].Text == "" {
		t.Fatal("expected default system prompt")
	}
	user := messages[1].Text
	if !strings.Contains(user, "topic") {
		t.Fatalf("caller input must survive default template, got %q", user)
	}
	if !strings.Contains(user, "标题长度不超过50个字") {
		t.Fatalf("expected default title length in requirements, got %q", user)
	}
}

func TestBuildClassification(t *testing.T) {
	categories := []models.Category{
		{ID: "1", Text: "美食"},
		{ID: "2", Text: "旅行"},
	}
	messages := BuildClassification(&models.ClassificationConfig{}, "https://example.com/img.jpg", categories)

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	parts := messages[1].Parts
	if len(parts) != 2 {
		t.Fatalf("expected text + single image part, got %d", len(parts))
	}
	text := parts[0].Text
	if !strings.Contains(text, "ID: 1, 分类: 美食") || !strings.Contains(text, "ID: 2, 分类: 旅行") {
		t.Fatalf("expected enumerated categories, got:\n%s", text)
	}
	if !strings.Contains(text, `"category_id": null`) {
		t.Fatal("expected the cannot-classify JSON variant in the prompt")
	}
	if parts[1].ImageURL != "https://example.com/img.jpg" {
		t.Fatalf("unexpected image part: %+v", parts[1])
	}
}
