package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var spaceRe = regexp.MustCompile(`\s+`)

// noiseSelectors элементы, текст которых никогда не является контентом
const noiseSelectors = "script, style, noscript, template"

// CollapseSpaces заменяет NBSP на пробел, схлопывает пробельные символы и обрезает края
func CollapseSpaces(text string) string {
	text = strings.ReplaceAll(text, "\u00A0", " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SelectionText текст выборки после CollapseSpaces
func SelectionText(sel *goquery.Selection) string {
	return CollapseSpaces(sel.Text())
}

// StripNoise удаляет script/style и подобные блоки из документа
func StripNoise(doc *goquery.Document) {
	doc.Find(noiseSelectors).Remove()
}

// Preview обрезает текст до maxChars символов (не байт) по последнему пробелу
func Preview(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	runes := []rune(text)
	// оставляем место под многоточие
	truncated := string(runes[:maxChars-1])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		return truncated[:lastSpace] + "…"
	}
	return truncated + "…"
}

// ResolveURL убирает якорь и делает ссылку абсолютной относительно base
func ResolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if idx := strings.Index(href, "#"); idx > -1 {
		href = href[:idx]
	}
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
