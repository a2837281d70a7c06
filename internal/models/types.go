package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SiteZone is the operating timezone of the site (UTC+9, no DST).
var SiteZone = time.FixedZone("JST", 9*60*60)

// ID is a content-store identifier. The store hands out either numbers or
// strings depending on the table, so both are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp keeps the raw value from the store next to the parsed time.
// Values without an offset are read as site-local time.
type Timestamp struct {
	time.Time
	Raw string
}

// ParseTimestamp parses the timestamp forms the content store emits.
func ParseTimestamp(raw string) (Timestamp, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t, Raw: raw}, nil
	}
	// "2024-05-01 10:00:00+00:00" from SQL-style clients
	if t, err := time.Parse("2006-01-02 15:04:05Z07:00", s); err == nil {
		return Timestamp{Time: t, Raw: raw}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, trimFraction(s), SiteZone); err == nil {
			return Timestamp{Time: t, Raw: raw}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// trimFraction drops fractional seconds from zone-less values.
func trimFraction(s string) string {
	if i := strings.LastIndexByte(s, '.'); i > len("2006-01-02T15:04") {
		return s[:i]
	}
	return s
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// Local returns the time in the site zone.
func (t Timestamp) Local() time.Time {
	return t.In(SiteZone)
}

// DateKey returns the site-local calendar date as YYYY-MM-DD.
func (t Timestamp) DateKey() string {
	return t.Local().Format("2006-01-02")
}
