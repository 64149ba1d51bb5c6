package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/codewinder/contests/internal/model"
)

// LeetCode: POST /graphql
// {"data":{"topTwoContests":[{"title":"Weekly Contest 400","titleSlug":"weekly-contest-400","startTime":1700000000,"duration":5400}]}}

const leetCodeQuery = `{ topTwoContests { title titleSlug startTime duration } }`

const leetCodeBody = `{"query":"` + leetCodeQuery + `"}`

// maxLeetCodeContests is the size of the list the query returns.
const maxLeetCodeContests = 2

type lcResponse struct {
	Data *struct {
		TopTwoContests *[]lcContest `json:"topTwoContests"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type lcContest struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	StartTime *int64 `json:"startTime"`
	Duration  *int64 `json:"duration"`
}

func decodeLeetCode(raw []byte) ([]model.Contest, error) {
	var resp lcResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if resp.Data == nil || resp.Data.TopTwoContests == nil {
		return nil, errors.New("missing data.topTwoContests")
	}

	list := *resp.Data.TopTwoContests
	if len(list) > maxLeetCodeContests {
		list = list[:maxLeetCodeContests]
	}
	out := make([]model.Contest, 0, len(list))
	for _, c := range list {
		if c.TitleSlug == "" || c.StartTime == nil || c.Duration == nil {
			return nil, fmt.Errorf("contest %q: missing titleSlug, startTime or duration", c.Title)
		}
		out = append(out, newContest(model.LeetCode, c.TitleSlug, c.Title,
			"https://leetcode.com/contest/"+c.TitleSlug,
			epoch(*c.StartTime), epoch(*c.StartTime+*c.Duration)))
	}
	return out, nil
}
