// Package prompt turns stored configuration plus caller input into
// vendor-neutral message lists. Builders are pure functions; everything the
// response interpreter relies on (section markers, the JSON schema example)
// is stated literally in the prompt here.
package prompt

import (
	"fmt"
	"strings"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/provider"
)

// PlaceholderPrompt is the literal substring replaced by caller input in user
// prompt templates. When a template omits it, caller input is appended after
// the template instead of being dropped.
const PlaceholderPrompt = "{prompt}"

// Section markers the generation prompt instructs the model to emit. The
// interpreter splits on the same literals.
const (
	MarkerTitle = "【标题】"
	MarkerBody  = "【正文】"
	MarkerTags  = "【标签】"
)

// maxImages caps multi-modal parts per message to respect vendor limits.
const maxImages = 4

const (
	defaultGenerationSystemPrompt = "你是一位专业的小红书博主，擅长编写吸引人的小红书文案。"
	defaultGenerationTemplate     = "请根据以下内容，创作一篇吸引人的小红书文案：\n{prompt}"

	defaultClassificationSystemPrompt = "你是一位专业的图像分类助手，你的任务是判断图片属于哪个预定义分类。" +
		"请仔细分析图片内容，如果图片不属于任何分类或信息值太低，请明确表示无法分类。"
)

// BuildGeneration assembles the message list for a copy-generation call.
// steering is the safety filter's forbidden-word instruction and is appended
// to the system prompt verbatim; forbiddenWords additionally feed the
// numbered requirements block.
func BuildGeneration(cfg *models.GenerationConfig, input string, imageURLs []string, forbiddenWords []string, steering string) []provider.Message {
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultGenerationSystemPrompt
	}
	if steering != "" {
		systemPrompt += "\n\n" + steering
	}

	template := cfg.UserPromptTemplate
	if template == "" {
		template = defaultGenerationTemplate
	}

	userPrompt := template
	if strings.Contains(userPrompt, PlaceholderPrompt) {
		userPrompt = strings.ReplaceAll(userPrompt, PlaceholderPrompt, input)
	} else {
		userPrompt = userPrompt + "\n\n" + input
	}

	userPrompt += generationRequirements(cfg, forbiddenWords)

	messages := []provider.Message{
		provider.TextMessage(provider.RoleSystem, systemPrompt),
	}

	if len(imageURLs) > 0 {
		parts := []provider.ContentPart{{Type: provider.PartText, Text: userPrompt}}
		for i, url := range imageURLs {
			if i >= maxImages {
				break
			}
			parts = append(parts, provider.ContentPart{Type: provider.PartImageURL, ImageURL: url})
		}
		messages = append(messages, provider.Message{Role: provider.RoleUser, Parts: parts})
		return messages
	}

	messages = append(messages, provider.TextMessage(provider.RoleUser, userPrompt))
	return messages
}

// generationRequirements renders the numbered requirements block plus the
// literal output format instruction.
func generationRequirements(cfg *models.GenerationConfig, forbiddenWords []string) string {
	titleLength := cfg.TitleLength
	if titleLength <= 0 {
		titleLength = 50
	}
	contentLength := cfg.ContentLength
	if contentLength <= 0 {
		contentLength = 1000
	}
	tagsCount := cfg.TagsCount
	if tagsCount <= 0 {
		tagsCount = 5
	}

	var b strings.Builder
	b.WriteString("\n\n请按以下要求生成文案：")
	fmt.Fprintf(&b, "\n1. 标题长度不超过%d个字", titleLength)
	fmt.Fprintf(&b, "\n2. 正文内容%d字左右", contentLength)
	fmt.Fprintf(&b, "\n3. 生成%d个适合的标签", tagsCount)
	item := 4
	if cfg.IncludeEmojis {
		fmt.Fprintf(&b, "\n%d. 适当地使用表情符号增加趣味性", item)
		item++
	}
	if len(forbiddenWords) > 0 {
		fmt.Fprintf(&b, "\n%d. 请特别注意，严禁输出以下词语: %s", item, strings.Join(forbiddenWords, "、"))
	}
	fmt.Fprintf(&b, "\n\n请按照以下格式输出：\n%s\n%s\n%s标签1 标签2 标签3...", MarkerTitle, MarkerBody, MarkerTags)
	return b.String()
}

// BuildClassification assembles the message list for an image classification
// call. Exactly one image URL is attached; candidate categories are serialized
// as an enumerated block and the expected JSON shape, including the
// cannot-classify variant, is stated literally.
func BuildClassification(cfg *models.ClassificationConfig, imageURL string, categories []models.Category) []provider.Message {
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultClassificationSystemPrompt
	}

	lines := make([]string, 0, len(categories))
	for _, cat := range categories {
		lines = append(lines, fmt.Sprintf("ID: %s, 分类: %s", cat.ID, cat.Text))
	}

	userPrompt := fmt.Sprintf(`请分析下面这张图片，并判断它应该属于以下哪个分类：

%s

请仔细分析图片内容，并给出你的分类结果和推理过程。
你的回答必须是以下JSON格式：
{
"category_id": "分类ID",
"category_name": "分类名称",
"confidence": 0.95,
"reasoning": "这里是你对分类的推理过程"
}

只能选择一个最匹配的分类。如果图片内容不清晰、信息值低或不属于任何一个给定分类，请返回以下JSON格式：
{
"category_id": null,
"category_name": null,
"confidence": 0,
"reasoning": "这里说明为什么无法对图片进行分类的原因"
}

置信度为0-1之间的小数，推理过程需要详细说明为什么图片属于该分类或无法分类的原因。`, strings.Join(lines, "\n"))

	return []provider.Message{
		provider.TextMessage(provider.RoleSystem, systemPrompt),
		{Role: provider.RoleUser, Parts: []provider.ContentPart{
			{Type: provider.PartText, Text: userPrompt},
			{Type: provider.PartImageURL, ImageURL: imageURL},
		}},
	}
}
