package prompt

import "strings"

// Example pairs a style with a ready-to-use prompt for it.
type Example struct {
	Style   string `json:"style"`
	Prompt  string `json:"prompt"`
	UseCase string `json:"use_case"`
}

// StyleAdvice is the response of Suggestions.
type StyleAdvice struct {
	ContentType string    `json:"content_type"`
	Mood        string    `json:"mood,omitempty"`
	Styles      []string  `json:"recommended_styles"`
	Examples    []Example `json:"usage_examples"`
	Tips        []string  `json:"tips"`
}

// Built-in style catalog per content type.
var styleCatalog = map[string][]string{
	"business": {"professional photography", "clean minimalist", "corporate style", "modern business"},
	"social":   {"vibrant colors", "engaging", "social media style", "eye-catching"},
	"artistic": {"digital art", "watercolor painting", "oil painting", "concept art"},
	"nature":   {"natural lighting", "organic", "landscape photography", "environmental"},
	"tech":     {"futuristic", "sci-fi", "cyberpunk", "tech aesthetic", "digital"},
	"casual":   {"friendly", "warm tones", "approachable", "everyday style"},
}

// Substring filters applied per mood.
var moodFilters = map[string][]string{
	"professional": {"professional", "clean", "modern"},
	"friendly":     {"warm", "friendly", "casual"},
	"creative":     {"art", "creative", "concept"},
}

var examplePrompts = []string{"产品展示", "团队合影"}

var generalTips = []string{
	"选择与内容匹配的风格能获得更好的效果",
	"可以组合多个风格关键词",
	"英文提示词通常效果更好",
	"简洁描述往往比复杂描述更有效",
}

// Suggestions returns the recommended styles for a content type, optionally
// narrowed by mood. An unknown content type falls back to the casual set;
// a mood filter that would empty the list is ignored.
func Suggestions(contentType, mood string) StyleAdvice {
	styles, ok := styleCatalog[contentType]
	if !ok {
		styles = styleCatalog["casual"]
	}

	if keywords, ok := moodFilters[mood]; ok {
		filtered := make([]string, 0, len(styles))
		for _, style := range styles {
			for _, kw := range keywords {
				if strings.Contains(style, kw) {
					filtered = append(filtered, style)
					break
				}
			}
		}
		if len(filtered) > 0 {
			styles = filtered
		}
	}

	examples := make([]Example, 0, 6)
	for i, style := range styles {
		if i >= 3 {
			break
		}
		for _, p := range examplePrompts {
			examples = append(examples, Example{
				Style:   style,
				Prompt:  p + "，" + style,
				UseCase: contentType,
			})
		}
	}

	return StyleAdvice{
		ContentType: contentType,
		Mood:        mood,
		Styles:      styles,
		Examples:    examples,
		Tips:        generalTips,
	}
}
