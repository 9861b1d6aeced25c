package scraper

import (
	"errors"
	"fmt"

	"medical-news-scraper/internal/source"
)

// Причины неудачи. Каждая ошибка в Outcome.Err оборачивает ровно одну из них.
var (
	ErrHostUnreachable      = errors.New("host unreachable")
	ErrTransport            = errors.New("transport error")
	ErrIncompleteExtraction = errors.New("incomplete extraction")
	ErrSelector             = errors.New("selector error")
	ErrUnexpected           = errors.New("unexpected fault")
)

// SelectorError селектор не удалось разобрать. Поле при этом не теряется:
// экстрактор переходит к следующему селектору.
type SelectorError struct {
	Field    source.Field
	Selector string
	Err      error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("%s: field %s: %q: %v", ErrSelector, e.Field, e.Selector, e.Err)
}

func (e *SelectorError) Unwrap() []error {
	return []error{ErrSelector, e.Err}
}

// Reason короткая метка причины для метрик и логов
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrHostUnreachable):
		return "unreachable"
	case errors.Is(err, ErrIncompleteExtraction):
		return "incomplete"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrUnexpected):
		return "unexpected"
	default:
		return "unknown"
	}
}
