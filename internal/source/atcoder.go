package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codewinder/contests/internal/model"
)

// AtCoder (kenkoooo mirror): GET /resources/contests.json
// [{"id":"abc400","start_epoch_second":1700000000,"duration_second":6000,"title":"...","rate_change":" ~ 1999"}]

type acContest struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	StartEpochSecond *int64 `json:"start_epoch_second"`
	DurationSecond   *int64 `json:"duration_second"`
}

func decodeAtCoder(raw []byte, now time.Time) ([]model.Contest, error) {
	var list *[]acContest
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	if list == nil {
		return nil, errors.New("empty payload")
	}

	out := make([]model.Contest, 0, 8)
	for _, c := range *list {
		if c.StartEpochSecond == nil {
			return nil, fmt.Errorf("contest %q: missing start_epoch_second", c.ID)
		}
		// The feed carries the whole archive; only future rounds matter.
		if *c.StartEpochSecond <= now.Unix() {
			continue
		}
		if c.ID == "" || c.DurationSecond == nil {
			return nil, fmt.Errorf("contest %q: missing id or duration_second", c.ID)
		}
		out = append(out, newContest(model.AtCoder, c.ID, c.Title,
			"https://atcoder.jp/contests/"+c.ID,
			epoch(*c.StartEpochSecond), epoch(*c.StartEpochSecond+*c.DurationSecond)))
	}
	return out, nil
}
