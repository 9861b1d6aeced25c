package scraper

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"medical-news-scraper/internal/normalize"
	"medical-news-scraper/internal/observability"
	"medical-news-scraper/internal/source"
)

// MinFieldLength текст поля должен быть строго длиннее, иначе это навигация или подпись
const MinFieldLength = 50

// extractedFields поля, которые ищет экстрактор; link используется только листингом
var extractedFields = []source.Field{source.FieldTitle, source.FieldContent, source.FieldArticle}

type Extractor struct {
	logger  *observability.Logger
	metrics *observability.Metrics
}

func NewExtractor(logger *observability.Logger, metrics *observability.Metrics) *Extractor {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Extractor{logger: logger, metrics: metrics}
}

// Extract для каждого поля перебирает селекторы по порядку; побеждает первый элемент
// первого селектора, чей текст длиннее MinFieldLength символов.
func (e *Extractor) Extract(doc *goquery.Document, selectors source.SelectorMap) Extraction {
	out := Extraction{fields: make(map[source.Field]string, len(extractedFields))}
	for _, field := range extractedFields {
		if text, ok := e.extractField(doc.Selection, field, selectors[field]); ok {
			out.fields[field] = text
		}
	}
	return out
}

func (e *Extractor) extractField(root *goquery.Selection, field source.Field, list source.SelectorList) (string, bool) {
	for _, sel := range list {
		matcher, err := e.compile(field, sel)
		if err != nil {
			continue
		}

		var found string
		root.FindMatcher(matcher).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := normalize.SelectionText(s)
			if utf8.RuneCountInString(text) > MinFieldLength {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// compile разбирает селектор заранее: goquery.Find молча возвращает пустую выборку
// для некорректного селектора, а нам нужно об этом знать.
func (e *Extractor) compile(field source.Field, sel string) (cascadia.Selector, error) {
	matcher, err := cascadia.Compile(sel)
	if err != nil {
		selErr := &SelectorError{Field: field, Selector: sel, Err: err}
		e.logger.Warn("selector skipped", "field", field, "selector", sel, "error", selErr)
		e.metrics.ObserveSelectorError()
		return nil, selErr
	}
	return matcher, nil
}

// firstMatch первый элемент внутри root по первому сработавшему селектору
func (e *Extractor) firstMatch(root *goquery.Selection, field source.Field, list source.SelectorList) *goquery.Selection {
	for _, sel := range list {
		matcher, err := e.compile(field, sel)
		if err != nil {
			continue
		}
		if found := root.FindMatcher(matcher).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}
