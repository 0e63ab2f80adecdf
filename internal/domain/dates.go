package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Layouts tried by ParseDate, most common first. Non-padded month/day
// verbs also accept zero-padded input.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006. 1. 2.",
	"2006. 1. 2",
	"20060102",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006/1/2 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006년 1월 2일",
	"1/2/2006",
}

// ParseDate parses the date formats seen in order entry and spreadsheets.
// Only the calendar date is kept.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}

// NormalizeDate rewrites a parseable date as YYYY-MM-DD.
func NormalizeDate(s string) (string, bool) {
	t, err := ParseDate(s)
	if err != nil {
		return s, false
	}
	return t.Format(DateLayout), true
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
