package interpret

import (
	"reflect"
	"testing"
)

func TestParseGeneration_Markers(t *testing.T) {
	content := `【标题】秋日露营指南
【正文】周末去山里露营，空气清新。
带上帐篷和咖啡，享受慢生活。
【标签】露营 周末 户外生活`

	result := ParseGeneration(content, 5)
	if result.Title != "秋日露营指南" {
		t.Fatalf("unexpected title: %q", result.Title)
	}
	if result.Body != "周末去山里露营，空气清新。\n带上帐篷和咖啡，享受慢生活。" {
		t.Fatalf("unexpected body: %q", result.Body)
	}
	if !reflect.DeepEqual(result.Tags, []string{"露营", "周末", "户外生活"}) {
		t.Fatalf("unexpected tags: %v", result.Tags)
	}
	if !result.FromMarkers {
		t.Fatal("expected marker-based parse")
	}
}

func TestParseGeneration_NoMarkersFallsBack(t *testing.T) {
	content := "这是标题行\n这是正文第一行。\n这是正文第二行。"

	result := ParseGeneration(content, 0)
	if result.Title != "这是标题行" {
		t.Fatalf("expected first line as title, got %q", result.Title)
	}
	if result.Body != "这是正文第一行。\n这是正文第二行。" {
		t.Fatalf("expected remainder as body, got %q", result.Body)
	}
	if result.FromMarkers {
		t.Fatal("expected fallback parse to be flagged")
	}
}

func TestParseGeneration_TitleOnlyMarker(t *testing.T) {
	content := "【标题】只有标题"
	result := ParseGeneration(content, 0)
	if result.Title != "只有标题" {
		t.Fatalf("unexpected title: %q", result.Title)
	}
	if result.Body != "" {
		t.Fatalf("expected empty body, got %q", result.Body)
	}
}

func TestParseGeneration_HarvestsTagsWhenMissing(t *testing.T) {
	content := "【标题】标题\n【正文】word 露营地 喝咖啡 露营地 a 这个词太长超过十个字符了"
	result := ParseGeneration(content, 2)

	if len(result.Tags) != 2 {
		t.Fatalf("expected 2 harvested tags, got %v", result.Tags)
	}
	if result.Tags[0] != "word" || result.Tags[1] != "露营地" {
		t.Fatalf("expected order-preserving unique harvest, got %v", result.Tags)
	}
}

func TestParseGeneration_EmptyInput(t *testing.T) {
	result := ParseGeneration("", 3)
	if result.Title != "" || result.Body != "" {
		t.Fatalf("expected empty result, got %+v", result)
	}
}
