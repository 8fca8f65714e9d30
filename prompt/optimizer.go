// Package prompt turns terse user descriptions into production-grade image
// generation prompts and serves the built-in style catalog.
package prompt

import "strings"

// UseCase selects the quality vocabulary appended to a prompt.
type UseCase string

const (
	UseCaseGeneral      UseCase = "general"
	UseCaseWeChatHeader UseCase = "wechat_header"
)

// Quality suffixes appended per use case. The model responds better to
// vocabulary in the prompt's own language, so CJK prompts get the Chinese
// set.
var qualityTerms = map[UseCase]struct{ en, zh string }{
	UseCaseGeneral:      {"high quality, detailed, professional photography", "高质量, 细节丰富, 专业摄影"},
	UseCaseWeChatHeader: {"professional photography, high resolution, commercial grade, clean background", "专业摄影, 高清, 商业级, 纯净背景"},
}

// Keyword-triggered style hints, matched against the lowercased prompt.
var styleHints = []struct {
	keywords []string
	hint     string
}{
	{[]string{"科技", "tech"}, "futuristic technology style"},
	{[]string{"自然", "nature"}, "natural environment"},
	{[]string{"商务", "business"}, "professional business style"},
}

// Optimize expands a raw description into a full generation prompt for the
// given use case. The transformation is purely additive: the original text
// is preserved as the prompt prefix.
func Optimize(text string, useCase UseCase) string {
	optimized := strings.TrimSpace(text)
	if optimized == "" {
		return optimized
	}

	terms, ok := qualityTerms[useCase]
	if !ok {
		terms = qualityTerms[UseCaseGeneral]
	}
	if containsCJK(optimized) {
		optimized += ", " + terms.zh
	} else {
		optimized += ", " + terms.en
	}

	lowered := strings.ToLower(optimized)
	for _, hint := range styleHints {
		for _, kw := range hint.keywords {
			if strings.Contains(lowered, kw) {
				optimized += ", " + hint.hint
				break
			}
		}
	}

	return optimized
}

// containsCJK reports whether the text carries any non-ASCII rune.
func containsCJK(text string) bool {
	for _, r := range text {
		if r > 127 {
			return true
		}
	}
	return false
}
