package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/codewinder/contests/internal/config"
	"github.com/codewinder/contests/internal/model"
	"github.com/codewinder/contests/internal/util"
)

// maxBody bounds how much of a platform response is read.
const maxBody = 4 << 20

// Status is the outcome of one adapter call.
type Status string

const (
	StatusOK       Status = "ok"
	StatusFailed   Status = "failed"
	StatusTimedOut Status = "timed_out"
	StatusDisabled Status = "disabled"
)

// Result is what an adapter hands back to the coordinator. Contests is
// never nil; on any failure it is empty and Err says why.
type Result struct {
	Platform model.Platform
	Status   Status
	Contests []model.Contest
	Err      error
	Elapsed  time.Duration
}

// Source fetches upcoming contests from one platform. Fetch never fails:
// errors are folded into the Result.
type Source interface {
	Platform() model.Platform
	Fetch(ctx context.Context) Result
}

// Adapter is the single Source implementation; the platform tag selects
// the request shape and the payload decoder.
type Adapter struct {
	platform   model.Platform
	endpoint   string
	method     string
	body       []byte
	headers    http.Header
	client     *http.Client
	timeout    time.Duration
	limit      int
	retries    int
	backoff    time.Duration
	maxBackoff time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Adapter)

// WithClock overrides the clock used for the future-start filter.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithHTTPClient replaces the outbound client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New builds the adapter for platform p from its source settings.
func New(p model.Platform, cfg config.Source, logger *slog.Logger, opts ...Option) (*Adapter, error) {
	rs, err := requestFor(p, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	def := platformDefaults[p]
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = def.timeout
	}
	if ua := strings.TrimSpace(cfg.UserAgent); ua != "" {
		rs.headers.Set("User-Agent", ua)
	}
	for k, v := range cfg.Headers {
		rs.headers.Set(k, v)
	}
	limit := def.limit
	if cfg.Limit != nil {
		limit = *cfg.Limit
	}
	a := &Adapter{
		platform:   p,
		endpoint:   rs.endpoint,
		method:     rs.method,
		body:       rs.body,
		headers:    rs.headers,
		client:     util.NewHTTPClient(timeout + time.Second),
		timeout:    timeout,
		limit:      limit,
		retries:    cfg.MaxRetries,
		backoff:    cfg.Backoff,
		maxBackoff: cfg.MaxBackoff,
		logger:     logger.With("platform", string(p)),
		now:        time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// NewFromConfig builds all four sources in merge order. Disabled
// platforms are represented by a source that reports StatusDisabled.
func NewFromConfig(c config.Sources, logger *slog.Logger, opts ...Option) ([]Source, error) {
	byPlatform := map[model.Platform]config.Source{
		model.Codeforces: c.Codeforces,
		model.AtCoder:    c.AtCoder,
		model.LeetCode:   c.LeetCode,
		model.CodeChef:   c.CodeChef,
	}
	out := make([]Source, 0, len(model.Platforms))
	for _, p := range model.Platforms {
		sc := byPlatform[p]
		if !sc.IsEnabled() {
			out = append(out, Disabled(p))
			continue
		}
		a, err := New(p, sc, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("build source %s: %w", p, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (a *Adapter) Platform() model.Platform { return a.platform }

// Fetch calls the platform once (or up to the configured attempts) within
// the adapter timeout and returns its upcoming contests.
func (a *Adapter) Fetch(ctx context.Context) Result {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	contests, err := a.fetch(ctx)
	res := Result{Platform: a.platform, Elapsed: time.Since(started)}
	if err != nil {
		res.Status = StatusFailed
		if util.IsTimeout(err) || ctx.Err() == context.DeadlineExceeded {
			res.Status = StatusTimedOut
		}
		res.Err = err
		res.Contests = []model.Contest{}
		a.logger.Warn("contest source failed",
			"status", string(res.Status),
			"error", err,
			"elapsed_ms", res.Elapsed.Milliseconds(),
		)
		return res
	}
	res.Status = StatusOK
	res.Contests = contests
	a.logger.Debug("contest source fetched", "count", len(contests), "elapsed_ms", res.Elapsed.Milliseconds())
	return res
}

func (a *Adapter) fetch(ctx context.Context) ([]model.Contest, error) {
	raw, err := a.download(ctx)
	if err != nil {
		return nil, err
	}
	now := a.now()
	contests, err := decode(a.platform, raw, now)
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", strings.ToLower(string(a.platform)), err)
	}
	return a.upcoming(contests, now), nil
}

func (a *Adapter) download(ctx context.Context) ([]byte, error) {
	var raw []byte
	err := util.Retry(ctx, a.retries, a.backoff, a.maxBackoff, func() error {
		// Fresh request per attempt so the body is never drained.
		var body io.Reader
		if a.body != nil {
			body = bytes.NewReader(a.body)
		}
		req, err := http.NewRequestWithContext(ctx, a.method, a.endpoint, body)
		if err != nil {
			return err
		}
		req.Header = a.headers.Clone()

		resp, err := a.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("%s %d: %s", strings.ToLower(string(a.platform)), resp.StatusCode, strings.TrimSpace(string(b)))
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return err
		}
		raw = b
		return nil
	})
	return raw, err
}

// upcoming keeps well-formed contests starting after now, soonest first,
// capped at the adapter limit when one is set.
func (a *Adapter) upcoming(in []model.Contest, now time.Time) []model.Contest {
	out := make([]model.Contest, 0, len(in))
	for _, c := range in {
		if !c.StartTime.After(now) {
			continue
		}
		if !c.EndTime.After(c.StartTime) {
			a.logger.Debug("dropping contest with non-positive duration", "id", c.ID)
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if a.limit > 0 && len(out) > a.limit {
		out = out[:a.limit]
	}
	return out
}

type disabled model.Platform

// Disabled returns a Source that never calls out.
func Disabled(p model.Platform) Source { return disabled(p) }

func (d disabled) Platform() model.Platform { return model.Platform(d) }

func (d disabled) Fetch(context.Context) Result {
	return Result{Platform: model.Platform(d), Status: StatusDisabled, Contests: []model.Contest{}}
}
