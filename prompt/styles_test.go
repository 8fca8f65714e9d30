package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuggestionsKnownContentType 已知类型返回其目录中的风格
func TestSuggestionsKnownContentType(t *testing.T) {
	advice := Suggestions("tech", "")
	assert.Equal(t, "tech", advice.ContentType)
	assert.Contains(t, advice.Styles, "cyberpunk")
	assert.NotEmpty(t, advice.Tips)
}

// TestSuggestionsUnknownFallsBackToCasual 未知类型回退到 casual 风格集
func TestSuggestionsUnknownFallsBackToCasual(t *testing.T) {
	advice := Suggestions("astrology", "")
	assert.Equal(t, styleCatalog["casual"], advice.Styles)
}

// TestSuggestionsMoodFilter 心情过滤只保留匹配的风格
func TestSuggestionsMoodFilter(t *testing.T) {
	advice := Suggestions("business", "professional")
	require.NotEmpty(t, advice.Styles)
	for _, style := range advice.Styles {
		assert.True(t,
			containsAny(style, moodFilters["professional"]),
			"style %q should match a professional keyword", style)
	}
}

// TestSuggestionsMoodFilterNeverEmpties 过滤会清空列表时保留未过滤集合
func TestSuggestionsMoodFilterNeverEmpties(t *testing.T) {
	advice := Suggestions("nature", "creative")
	assert.Equal(t, styleCatalog["nature"], advice.Styles)
}

// TestSuggestionsExamples 每个推荐风格最多取前三个, 各配两条示例提示词
func TestSuggestionsExamples(t *testing.T) {
	advice := Suggestions("artistic", "")
	assert.Len(t, advice.Examples, 6)
	for _, ex := range advice.Examples {
		assert.Equal(t, "artistic", ex.UseCase)
		assert.Contains(t, ex.Prompt, ex.Style)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
