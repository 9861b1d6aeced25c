package source

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // зоны источников не должны зависеть от системной базы

	"gopkg.in/yaml.v3"
)

// Field логическое поле, для которого задаётся список селекторов
type Field string

const (
	FieldArticle Field = "article"
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldLink    Field = "link"
	FieldDate    Field = "date"
)

// SelectorList упорядоченный список CSS-селекторов в порядке убывания уверенности
type SelectorList []string

// UnmarshalYAML принимает как одиночную строку, так и список строк.
// Одиночная строка превращается в список из одного элемента.
func (l *SelectorList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		s := strings.TrimSpace(value.Value)
		if s == "" {
			*l = nil
			return nil
		}
		*l = SelectorList{s}
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := value.Decode(&raw); err != nil {
			return fmt.Errorf("selector list: %w", err)
		}
		out := make(SelectorList, 0, len(raw))
		for _, s := range raw {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("selector list: expected string or sequence at line %d", value.Line)
	}
}

// SelectorMap соответствие поле → список селекторов
type SelectorMap map[Field]SelectorList

// TLSPolicy политика проверки сертификатов источника
type TLSPolicy string

const (
	// TLSStrict полная проверка цепочки и имени хоста (по умолчанию)
	TLSStrict TLSPolicy = "strict"
	// TLSDisabled проверка сертификата отключена
	TLSDisabled TLSPolicy = "disabled"
	// TLSLenient проверка отключена и допускаются старые версии TLS
	TLSLenient TLSPolicy = "lenient"
)

// Valid сообщает, известна ли политика. Пустая строка означает strict.
func (p TLSPolicy) Valid() bool {
	switch p {
	case "", TLSStrict, TLSDisabled, TLSLenient:
		return true
	}
	return false
}

// Pagination описывает переход по страницам листинга
type Pagination struct {
	NextSelectors SelectorList `yaml:"next_selectors"`
	MaxPages      int          `yaml:"max_pages"`
}

// Descriptor неизменяемое описание источника. Движок только читает его.
type Descriptor struct {
	Name       string            `yaml:"name"`
	URL        string            `yaml:"url"`
	Categories []string          `yaml:"category"`
	Language   string            `yaml:"language"`
	Selectors  SelectorMap       `yaml:"selectors"`
	Headers    map[string]string `yaml:"headers"`
	RequiresJS bool              `yaml:"requires_js"`
	Pagination *Pagination       `yaml:"pagination"`
	TLS        TLSPolicy         `yaml:"tls"`
	Timezone   string            `yaml:"timezone"`

	// TLSConfig собственный TLS-контекст; имеет приоритет над TLS
	TLSConfig *tls.Config `yaml:"-"`
}

// Validate проверяет минимальный набор полей источника
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if d.URL == "" {
		return fmt.Errorf("source %s: url is required", d.Name)
	}
	u, err := url.Parse(d.URL)
	if err != nil || u.Hostname() == "" {
		return fmt.Errorf("source %s: invalid url %q", d.Name, d.URL)
	}
	if d.Language == "" {
		return fmt.Errorf("source %s: language is required", d.Name)
	}
	if len(d.Selectors[FieldTitle]) == 0 {
		return fmt.Errorf("source %s: title selectors are required", d.Name)
	}
	if len(d.Selectors[FieldContent]) == 0 {
		return fmt.Errorf("source %s: content selectors are required", d.Name)
	}
	if !d.TLS.Valid() {
		return fmt.Errorf("source %s: unknown tls policy %q", d.Name, d.TLS)
	}
	if d.Timezone != "" {
		if _, err := time.LoadLocation(d.Timezone); err != nil {
			return fmt.Errorf("source %s: invalid timezone %q: %w", d.Name, d.Timezone, err)
		}
	}
	if d.Pagination != nil && d.Pagination.MaxPages < 0 {
		return fmt.Errorf("source %s: pagination.max_pages must be >= 0", d.Name)
	}
	return nil
}

// Location часовой пояс сайта (IANA), по нему считаются "сегодня" и "вчера" в датах листинга.
// Без зоны или с неизвестной зоной UTC.
func (d *Descriptor) Location() *time.Location {
	if d.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MatchesCategory нестрогое сравнение категории: точное совпадение тега
// либо тег источника является подстрокой запрошенной категории.
func (d *Descriptor) MatchesCategory(category string) bool {
	for _, tag := range d.Categories {
		if tag == category {
			return true
		}
	}
	for _, tag := range d.Categories {
		if tag != "" && strings.Contains(category, tag) {
			return true
		}
	}
	return false
}
