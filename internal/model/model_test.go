package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRequestTimeUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{`"2099-01-22T20:00"`, time.Date(2099, 1, 22, 20, 0, 0, 0, time.UTC), false},
		{`"2099-01-22T20:00:45"`, time.Date(2099, 1, 22, 20, 0, 45, 0, time.UTC), false},
		{`"2099-01-22T20:00:00Z"`, time.Date(2099, 1, 22, 20, 0, 0, 0, time.UTC), false},
		{`"2099-01-22T20:00:00.5+05:30"`, time.Date(2099, 1, 22, 14, 30, 0, 500000000, time.UTC), false},
		{`null`, time.Time{}, false},
		{`""`, time.Time{}, false},
		{`"22/01/2099 20:00"`, time.Time{}, true},
		{`1700000000`, time.Time{}, true},
	}
	for _, tt := range tests {
		var got RequestTime
		err := json.Unmarshal([]byte(tt.in), &got)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidTime) {
				t.Errorf("Unmarshal(%s): expected ErrInvalidTime, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Unmarshal(%s) = %s, want %s", tt.in, got.Time, tt.want)
		}
	}
}

func TestRequestTimeMarshalsAsRFC3339(t *testing.T) {
	b, err := json.Marshal(CreateContestRequest{
		Title:     "Club Round",
		StartTime: RequestTime{Time: time.Date(2099, 1, 22, 20, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back CreateContestRequest
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.StartTime.Equal(time.Date(2099, 1, 22, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start after round trip: %s", back.StartTime.Time)
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
		ok   bool
	}{
		{"codeforces", Codeforces, true},
		{"Code Chef", CodeChef, true},
		{"LEETCODE", LeetCode, true},
		{"TopCoder", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePlatform(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePlatform(%q) = %q, %v", tt.in, got, ok)
		}
	}
}
