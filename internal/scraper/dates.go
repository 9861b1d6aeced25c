package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ruMonths = map[string]time.Month{
		"января": time.January, "февраля": time.February, "марта": time.March,
		"апреля": time.April, "мая": time.May, "июня": time.June,
		"июля": time.July, "августа": time.August, "сентября": time.September,
		"октября": time.October, "ноября": time.November, "декабря": time.December,
	}

	ruToday     = []string{"сегодня", "сейчас"}
	ruYesterday = []string{"вчера"}

	reTextDate = regexp.MustCompile(`(\d{1,2})\s+([а-яё]+)(?:\s+(\d{4}))?`)
	reDotDate  = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{4}|\d{2}))?\b`)
	reISODate  = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// DateParser разбирает даты публикации с карточек листинга.
// Результат: календарный день в UTC, время 00:00:00.
type DateParser struct {
	now func() time.Time
}

func NewDateParser() *DateParser {
	return &DateParser{now: time.Now}
}

// Parse понимает "18 октября 2024", "18.10.2024", "18.10.24", "2024-10-18", "сегодня" и "вчера".
// Без года берётся текущий. "Сегодня" и текущий год считаются в часовом поясе источника loc.
func (dp *DateParser) Parse(raw string, loc *time.Location) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	if loc == nil {
		loc = time.UTC
	}
	local := dp.now().In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	for _, w := range ruToday {
		if strings.Contains(s, w) {
			return today, nil
		}
	}
	for _, w := range ruYesterday {
		if strings.Contains(s, w) {
			return today.AddDate(0, 0, -1), nil
		}
	}

	if m := reISODate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		return dp.build(m[3], time.Month(month), m[1], today.Year())
	}
	if m := reTextDate.FindStringSubmatch(s); m != nil {
		month, ok := ruMonths[m[2]]
		if !ok {
			return time.Time{}, fmt.Errorf("unknown month: %s", m[2])
		}
		return dp.build(m[1], month, m[3], today.Year())
	}
	if m := reDotDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		return dp.build(m[1], time.Month(month), m[3], today.Year())
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
}

func (dp *DateParser) build(dayStr string, month time.Month, yearStr string, year int) (time.Time, error) {
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day: %q: %w", dayStr, err)
	}
	if yearStr != "" {
		if year, err = strconv.Atoi(yearStr); err != nil {
			return time.Time{}, fmt.Errorf("invalid year: %q: %w", yearStr, err)
		}
		// "18.10.24": двузначный год относится к 2000-м
		if len(yearStr) == 2 {
			year += 2000
		}
	}
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("invalid month: %d", month)
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date нормализует 31.02 в март, такие даты отбрасываем
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("invalid date: %d.%d.%d", day, month, year)
	}
	return t, nil
}
