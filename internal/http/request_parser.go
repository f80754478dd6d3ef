package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// apiDateFormat is the wire format for all dates
const apiDateFormat = "2006-01-02"

// Amount accepts a JSON number or a decimal string and holds the parsed
// cents. "12.34", 12.34 and "12,34" all become 1234.
type Amount struct {
	Cents int64
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" || s == "" {
		return nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	a.Cents = cents
	return nil
}

// Date accepts "2006-01-02" strings.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse(apiDateFormat, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// decodeJSON parses the request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID extracts the {id} path segment as an int64
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// queryInt64 reads an optional integer query parameter; missing or empty
// returns (0, nil).
func queryInt64(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

// queryDateRange reads optional startDate/endDate query parameters into
// a DateRange. Both bounds are inclusive; the end bound is pushed to the
// last instant of its day so date-only inputs cover the whole day.
func queryDateRange(r *http.Request) (core.DateRange, error) {
	var dr core.DateRange
	if raw := strings.TrimSpace(r.URL.Query().Get("startDate")); raw != "" {
		t, err := time.Parse(apiDateFormat, raw)
		if err != nil {
			return dr, fmt.Errorf("invalid startDate %q: expected YYYY-MM-DD", raw)
		}
		dr.Start = &t
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("endDate")); raw != "" {
		t, err := time.Parse(apiDateFormat, raw)
		if err != nil {
			return dr, fmt.Errorf("invalid endDate %q: expected YYYY-MM-DD", raw)
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		dr.End = &end
	}
	if dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
		return dr, fmt.Errorf("endDate precedes startDate")
	}
	return dr, nil
}
