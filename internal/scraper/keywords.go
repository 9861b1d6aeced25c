package scraper

import (
	"strings"
	"unicode/utf8"
)

const DefaultMaxKeywords = 10

var stopWords = map[string]struct{}{
	"это": {}, "что": {}, "как": {}, "для": {}, "или": {}, "но": {}, "и": {},
}

// ExtractKeywords простые ключевые слова по тексту статьи.
// Порядок результата не гарантируется потребителям.
func ExtractKeywords(content string, max int) []string {
	if max <= 0 {
		max = DefaultMaxKeywords
	}

	seen := make(map[string]struct{})
	keywords := make([]string, 0, max)
	for _, word := range strings.Fields(strings.ToLower(content)) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == max {
			break
		}
	}
	return keywords
}
