package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/timex"
)

// fields is a decoded JSON object kept raw so that several alternative key
// spellings can be probed in order.
type fields map[string]json.RawMessage

func decodeFields(b []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// str returns the first non-empty string value found under keys.
func (f fields) str(keys ...string) string {
	for _, k := range keys {
		raw, ok := f[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// num returns the first integer (or numeric string) found under keys.
func (f fields) num(keys ...string) (int, bool) {
	for _, k := range keys {
		raw, ok := f[k]
		if !ok {
			continue
		}
		if n, ok := parseInt(raw); ok {
			return n, true
		}
	}
	return 0, false
}

// obj returns the nested object under key, or nil.
func (f fields) obj(key string) fields {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	nested, err := decodeFields(raw)
	if err != nil {
		return nil
	}
	return nested
}

// when returns the first parseable timestamp found under keys.
func (f fields) when(keys ...string) time.Time {
	for _, k := range keys {
		raw, ok := f[k]
		if !ok {
			continue
		}
		if t := ParseTimestamp(raw); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

func (f fields) boolean(key string) bool {
	var b bool
	if raw, ok := f[key]; ok {
		_ = json.Unmarshal(raw, &b)
	}
	return b
}

func parseInt(raw json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts an ISO-8601 string or a unix timestamp in seconds
// or milliseconds. Unparseable input yields the zero time.
func ParseTimestamp(raw json.RawMessage) time.Time {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n <= 0 {
			return time.Time{}
		}
		return timex.FromEpoch(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
