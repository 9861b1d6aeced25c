package scraper

import (
	"errors"
	"time"

	"medical-news-scraper/internal/source"
)

// Record нормализованная статья, готовая к суммаризации и хранению
type Record struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Keywords   []string  `json:"keywords"`
	SourceName string    `json:"source_name"`
	SourceURL  string    `json:"source_url"`
	Categories []string  `json:"category"`
	Language   string    `json:"language"`
	Timestamp  time.Time `json:"timestamp"`
}

// newRecord единственный способ собрать Record: без заголовка или текста запись не создаётся
func newRecord(src source.Descriptor, title, content string, keywords []string, ts time.Time) (*Record, error) {
	if title == "" || content == "" {
		return nil, errors.New("record requires non-empty title and content")
	}

	categories := make([]string, len(src.Categories))
	copy(categories, src.Categories)

	return &Record{
		Title:      title,
		Content:    content,
		Keywords:   keywords,
		SourceName: src.Name,
		SourceURL:  src.URL,
		Categories: categories,
		Language:   src.Language,
		Timestamp:  ts,
	}, nil
}

// Extraction результат работы экстрактора; отсутствующее поле не равно пустой строке
type Extraction struct {
	fields map[source.Field]string
}

func (e Extraction) Get(field source.Field) (string, bool) {
	v, ok := e.fields[field]
	return v, ok
}

// Missing поля из списка, которые не удалось извлечь
func (e Extraction) Missing(fields ...source.Field) []source.Field {
	var missing []source.Field
	for _, f := range fields {
		if _, ok := e.fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Outcome итог обработки одного источника: либо Record, либо Err
type Outcome struct {
	Source   string
	Record   *Record
	Err      error
	Attempts int
}

func (o Outcome) OK() bool {
	return o.Record != nil
}

// ListingItem карточка статьи со страницы-листинга
type ListingItem struct {
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Link       string     `json:"link,omitempty"`
	Published  *time.Time `json:"published,omitempty"`
	SourceName string     `json:"source_name"`
	PageURL    string     `json:"page_url"`
	Page       int        `json:"page"`
}
