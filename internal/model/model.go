package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Platform names one external contest-listing site.
type Platform string

const (
	Codeforces Platform = "Codeforces"
	AtCoder    Platform = "AtCoder"
	LeetCode   Platform = "LeetCode"
	CodeChef   Platform = "CodeChef"
)

// Platforms is the fixed source order used when merging results.
var Platforms = []Platform{Codeforces, AtCoder, LeetCode, CodeChef}

// ParsePlatform matches a platform name case-insensitively, ignoring spaces.
func ParsePlatform(s string) (Platform, bool) {
	key := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	for _, p := range Platforms {
		if strings.ToLower(string(p)) == key {
			return p, true
		}
	}
	return "", false
}

// Contest is the normalized representation for all sources.
type Contest struct {
	ID          string    `json:"id"` // source-prefixed, e.g. "cf-1234"
	Title       string    `json:"title"`
	Platform    Platform  `json:"platform"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
}

// Duration returns EndTime - StartTime.
func (c Contest) Duration() time.Duration { return c.EndTime.Sub(c.StartTime) }

// CreateContestRequest is the admin payload for a community contest.
type CreateContestRequest struct {
	Title       string    `json:"title"`
	Platform    string    `json:"platform"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	StartTime   RequestTime `json:"startTime"`
	EndTime     RequestTime `json:"endTime"`
}

var ErrInvalidTime = errors.New("invalid time")

// requestTimeLayouts are tried in order. The last two are what an HTML
// datetime-local input submits.
var requestTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// RequestTime is a timestamp from an API client. Values without a zone
// offset are read as UTC.
type RequestTime struct {
	time.Time
}

func (t *RequestTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: expected a string, got %s", ErrInvalidTime, b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range requestTimeLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
