package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codewinder/contests/internal/model"
)

// CodeChef: GET /api/list/contests/all
// {"status":"success","present_contests":[...],"future_contests":[{"contest_code":"START170",
//  "contest_name":"Starters 170","contest_start_date":"22 Jan 2025  20:00:00",
//  "contest_end_date":"22 Jan 2025  22:00:00","contest_start_date_iso":"2025-01-22T20:00:00+05:30",
//  "contest_end_date_iso":"2025-01-22T22:00:00+05:30","contest_duration":"120"}]}

// codeChefLocal is the zone of the non-ISO date strings (IST, no DST).
var codeChefLocal = time.FixedZone("IST", 5*3600+30*60)

const codeChefLayout = "02 Jan 2006 15:04:05"

type ccResponse struct {
	Status  string       `json:"status"`
	Present *[]ccContest `json:"present_contests"`
	Future  *[]ccContest `json:"future_contests"`
}

type ccContest struct {
	Code      string `json:"contest_code"`
	Name      string `json:"contest_name"`
	StartDate string `json:"contest_start_date"`
	EndDate   string `json:"contest_end_date"`
	StartISO  string `json:"contest_start_date_iso"`
	EndISO    string `json:"contest_end_date_iso"`
}

// The endpoint answers 403 unless the request looks like it came from the site.
func codeChefHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Referer", "https://www.codechef.com/contests")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("X-Requested-With", "XMLHttpRequest")
	return h
}

func decodeCodeChef(raw []byte) ([]model.Contest, error) {
	var resp ccResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	if resp.Present == nil && resp.Future == nil {
		return nil, errors.New("missing present_contests and future_contests")
	}

	var all []ccContest
	if resp.Present != nil {
		all = append(all, *resp.Present...)
	}
	if resp.Future != nil {
		all = append(all, *resp.Future...)
	}

	out := make([]model.Contest, 0, len(all))
	for _, c := range all {
		if c.Code == "" {
			return nil, errors.New("contest without contest_code")
		}
		start, err := codeChefTime(c.StartISO, c.StartDate)
		if err != nil {
			return nil, fmt.Errorf("contest %s start: %w", c.Code, err)
		}
		end, err := codeChefTime(c.EndISO, c.EndDate)
		if err != nil {
			return nil, fmt.Errorf("contest %s end: %w", c.Code, err)
		}
		out = append(out, newContest(model.CodeChef, c.Code, c.Name,
			"https://www.codechef.com/"+c.Code, start, end))
	}
	return out, nil
}

// codeChefTime prefers the ISO field and falls back to the local string.
func codeChefTime(iso, local string) (time.Time, error) {
	if s := strings.TrimSpace(iso); s != "" {
		return time.Parse(time.RFC3339, s)
	}
	s := strings.Join(strings.Fields(local), " ")
	if s == "" {
		return time.Time{}, errors.New("no date")
	}
	return time.ParseInLocation(codeChefLayout, s, codeChefLocal)
}
