package scraper

import (
	"testing"
	"time"
)

func TestDateParser(t *testing.T) {
	dp := NewDateParser()
	dp.now = func() time.Time { return time.Date(2024, time.October, 18, 15, 30, 0, 0, time.UTC) }

	tests := []struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"18 октября 2024", time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC), false},
		{"Опубликовано: 3 марта 2023, 10:15", time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC), false},
		{"5 мая", time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), false},
		{"18.10.2024", time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC), false},
		{"01.02", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"18.10.24", time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC), false},
		{"Опубликовано 05.03.23, 10:15", time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC), false},
		{"2024-09-30T08:00:00+03:00", time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC), false},
		{"Сегодня, 12:00", time.Date(2024, 10, 18, 0, 0, 0, 0, time.UTC), false},
		{"вчера", time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC), false},
		{"31.02.2024", time.Time{}, true},
		{"18 брюмера 2024", time.Time{}, true},
		{"", time.Time{}, true},
		{"без даты", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := dp.Parse(tt.input, time.UTC)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.expected) {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDateParserUsesSourceTimezone(t *testing.T) {
	dp := NewDateParser()
	// 22:30 UTC 31 декабря, в Москве (UTC+3) уже 1 января
	dp.now = func() time.Time { return time.Date(2024, time.December, 31, 22, 30, 0, 0, time.UTC) }
	moscow := time.FixedZone("MSK", 3*60*60)

	tests := []struct {
		input    string
		loc      *time.Location
		expected time.Time
	}{
		{"сегодня", moscow, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"вчера", moscow, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"5 мая", moscow, time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)},
		{"сегодня", time.UTC, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"сегодня", nil, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := dp.Parse(tt.input, tt.loc)
		if err != nil {
			t.Errorf("Parse(%q, %v) unexpected error: %v", tt.input, tt.loc, err)
			continue
		}
		if !got.Equal(tt.expected) {
			t.Errorf("Parse(%q, %v) = %v, want %v", tt.input, tt.loc, got, tt.expected)
		}
	}
}
