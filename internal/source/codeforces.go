package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/codewinder/contests/internal/model"
)

// Codeforces: GET /api/contest.list
// {"status":"OK","result":[{"id":1,"name":"...","phase":"BEFORE","durationSeconds":7200,"startTimeSeconds":1700000000}]}

type cfResponse struct {
	Status  string       `json:"status"`
	Comment string       `json:"comment"`
	Result  *[]cfContest `json:"result"`
}

type cfContest struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	DurationSeconds  *int64 `json:"durationSeconds"`
	StartTimeSeconds *int64 `json:"startTimeSeconds"`
}

func decodeCodeforces(raw []byte) ([]model.Contest, error) {
	var resp cfResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("status %q: %s", resp.Status, resp.Comment)
	}
	if resp.Result == nil {
		return nil, errors.New("missing result")
	}

	out := make([]model.Contest, 0, 8)
	for _, c := range *resp.Result {
		if c.Phase != "BEFORE" {
			continue
		}
		if c.StartTimeSeconds == nil || c.DurationSeconds == nil {
			return nil, fmt.Errorf("contest %d: missing start time or duration", c.ID)
		}
		id := strconv.FormatInt(c.ID, 10)
		start := epoch(*c.StartTimeSeconds)
		out = append(out, newContest(model.Codeforces, id, c.Name,
			"https://codeforces.com/contest/"+id,
			start, epoch(*c.StartTimeSeconds+*c.DurationSeconds)))
	}
	return out, nil
}
