package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// DayKey identifies a calendar day in UTC, formatted YYYY-MM-DD.
type DayKey string

const dayLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	dayLayout,
	"2006/01/02",
}

// ParseDay accepts a time.Time, a date string or epoch milliseconds and
// returns midnight UTC of the day it falls on.
func ParseDay(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		return startOfDay(t), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("%w: nil", ErrInvalidDate)
		}
		return ParseDay(*t)
	case string:
		return parseDayString(t)
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, t.String())
		}
		return startOfDay(time.UnixMilli(ms)), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, t)
		}
		return startOfDay(time.UnixMilli(int64(t))), nil
	case int64:
		return startOfDay(time.UnixMilli(t)), nil
	case int:
		return startOfDay(time.UnixMilli(int64(t))), nil
	case nil:
		return time.Time{}, fmt.Errorf("%w: missing", ErrInvalidDate)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, v)
	}
}

func parseDayString(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return startOfDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// KeyOf returns the UTC day key of t.
func KeyOf(t time.Time) DayKey {
	return DayKey(t.UTC().Format(dayLayout))
}

// DayKeyOf parses v with ParseDay and returns its day key.
func DayKeyOf(v any) (DayKey, error) {
	t, err := ParseDay(v)
	if err != nil {
		return "", err
	}
	return KeyOf(t), nil
}

// FormatDay renders a day for humans, e.g. "June 1, 2024".
func FormatDay(t time.Time) string {
	return t.UTC().Format("January 2, 2006")
}
