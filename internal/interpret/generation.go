package interpret

import "strings"

// Section markers the generation prompt instructs the model to emit.
const (
	markerTitle = "【标题】"
	markerBody  = "【正文】"
	markerTags  = "【标签】"
)

// Generation is the structured outcome of interpreting a copy-generation reply.
type Generation struct {
	Title string
	Body  string
	Tags  []string
	// FromMarkers is false when the reply lacked section markers and the
	// first-line/remainder fallback was applied.
	FromMarkers bool
}

// ParseGeneration splits a reply on the literal section markers. Replies
// without markers degrade to first line as title and the remainder as body;
// missing tags are harvested from the body when tagsCount asks for them.
// It never fails.
func ParseGeneration(content string, tagsCount int) Generation {
	result := Generation{FromMarkers: true}

	if idx := strings.Index(content, markerTitle); idx >= 0 {
		section := content[idx+len(markerTitle):]
		if end := strings.Index(section, markerBody); end >= 0 {
			section = section[:end]
		}
		result.Title = strings.TrimSpace(section)
	}

	if idx := strings.Index(content, markerBody); idx >= 0 {
		section := content[idx+len(markerBody):]
		if end := strings.Index(section, markerTags); end >= 0 {
			section = section[:end]
		}
		result.Body = strings.TrimSpace(section)
	}

	if idx := strings.Index(content, markerTags); idx >= 0 {
		for _, tag := range strings.Fields(content[idx+len(markerTags):]) {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				result.Tags = append(result.Tags, tag)
			}
		}
	}

	if result.Title == "" && result.Body == "" {
		result.FromMarkers = false
		lines := strings.SplitN(strings.TrimSpace(content), "\n", 2)
		if len(lines) > 0 {
			result.Title = strings.TrimSpace(lines[0])
		}
		if len(lines) > 1 {
			result.Body = strings.TrimSpace(lines[1])
		}
	}

	if len(result.Tags) == 0 && tagsCount > 0 {
		result.Tags = harvestTags(result.Body, tagsCount)
	}
	return result
}

// harvestTags picks distinct medium-length words from the body as stand-in
// tags, preserving their order of appearance.
func harvestTags(body string, limit int) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, word := range strings.Fields(body) {
		length := len([]rune(word))
		if length < 2 || length > 10 {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		tags = append(tags, word)
		if len(tags) >= limit {
			break
		}
	}
	return tags
}
