package source

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codewinder/contests/internal/model"
)

// ClientID identifies this service to platforms that accept bots.
const ClientID = "CodeWinder/1.0 (+https://codewinder.dev)"

type platformRequest struct {
	endpoint string
	method   string
	body     []byte
	headers  http.Header
}

var idPrefix = map[model.Platform]string{
	model.Codeforces: "cf-",
	model.AtCoder:    "ac-",
	model.LeetCode:   "lc-",
	model.CodeChef:   "cc-",
}

// platformDefault fills settings a source config leaves unset.
type platformDefault struct {
	baseURL string
	timeout time.Duration
	limit   int // 0 = uncapped
}

var platformDefaults = map[model.Platform]platformDefault{
	model.Codeforces: {baseURL: "https://codeforces.com", timeout: 10 * time.Second, limit: 5},
	model.AtCoder:    {baseURL: "https://kenkoooo.com/atcoder", timeout: 10 * time.Second, limit: 5},
	model.LeetCode:   {baseURL: "https://leetcode.com", timeout: 8 * time.Second},
	model.CodeChef:   {baseURL: "https://www.codechef.com", timeout: 10 * time.Second},
}

func requestFor(p model.Platform, baseURL string) (platformRequest, error) {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = platformDefaults[p].baseURL
	}
	h := http.Header{}
	h.Set("User-Agent", ClientID)
	h.Set("Accept", "application/json")

	switch p {
	case model.Codeforces:
		return platformRequest{endpoint: base + "/api/contest.list?gym=false", method: http.MethodGet, headers: h}, nil
	case model.AtCoder:
		return platformRequest{endpoint: base + "/resources/contests.json", method: http.MethodGet, headers: h}, nil
	case model.LeetCode:
		h.Set("Content-Type", "application/json")
		h.Set("Referer", "https://leetcode.com/contest/")
		return platformRequest{endpoint: base + "/graphql", method: http.MethodPost, body: []byte(leetCodeBody), headers: h}, nil
	case model.CodeChef:
		return platformRequest{
			endpoint: base + "/api/list/contests/all?sort_by=START&sorting_order=asc&offset=0&mode=all",
			method:   http.MethodGet,
			headers:  codeChefHeaders(),
		}, nil
	default:
		return platformRequest{}, fmt.Errorf("unknown platform: %q", p)
	}
}

// decode maps a raw platform payload onto contests. Filtering by start
// time and capping happen afterwards in Adapter.upcoming.
func decode(p model.Platform, raw []byte, now time.Time) ([]model.Contest, error) {
	switch p {
	case model.Codeforces:
		return decodeCodeforces(raw)
	case model.AtCoder:
		return decodeAtCoder(raw, now)
	case model.LeetCode:
		return decodeLeetCode(raw)
	case model.CodeChef:
		return decodeCodeChef(raw)
	default:
		return nil, fmt.Errorf("unknown platform: %q", p)
	}
}

func newContest(p model.Platform, id, title, url string, start, end time.Time) model.Contest {
	return model.Contest{
		ID:          idPrefix[p] + id,
		Title:       strings.TrimSpace(title),
		Platform:    p,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Description: describeDuration(end.Sub(start)),
		URL:         url,
	}
}

// describeDuration renders d as e.g. "Duration: 2 hours 30 minutes".
func describeDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	var parts []string
	for _, u := range []struct {
		n    int
		unit string
	}{{days, "day"}, {hours, "hour"}, {minutes, "minute"}} {
		if u.n <= 0 {
			continue
		}
		if u.n == 1 {
			parts = append(parts, "1 "+u.unit)
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", u.n, u.unit))
		}
	}
	if len(parts) == 0 {
		return "Duration: less than a minute"
	}
	return "Duration: " + strings.Join(parts, " ")
}

func epoch(sec int64) time.Time { return time.Unix(sec, 0).UTC() }
