package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codewinder/contests/internal/model"
)

var (
	ErrInvalidContest = errors.New("invalid contest")
	ErrNotFound       = errors.New("contest not found")
)

// Store persists community contests.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Create validates req and inserts it under a fresh id.
func (s *Store) Create(ctx context.Context, req model.CreateContestRequest) (model.Contest, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Contest{}, fmt.Errorf("%w: title is required", ErrInvalidContest)
	}
	platform := strings.TrimSpace(req.Platform)
	if platform == "" {
		return model.Contest{}, fmt.Errorf("%w: platform is required", ErrInvalidContest)
	}
	// Known platforms keep their canonical spelling; anything else is a community label.
	if p, ok := model.ParsePlatform(platform); ok {
		platform = string(p)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return model.Contest{}, fmt.Errorf("%w: startTime and endTime are required", ErrInvalidContest)
	}
	start, end := normalize(req.StartTime.Time), normalize(req.EndTime.Time)
	if !end.After(start) {
		return model.Contest{}, fmt.Errorf("%w: endTime must be after startTime", ErrInvalidContest)
	}

	c := model.Contest{
		ID:          uuid.NewString(),
		Title:       title,
		Platform:    model.Platform(platform),
		StartTime:   start,
		EndTime:     end,
		Description: strings.TrimSpace(req.Description),
		URL:         strings.TrimSpace(req.URL),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contest (id, title, platform, description, url, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Title, string(c.Platform), c.Description, c.URL, c.StartTime, c.EndTime, normalize(time.Now()))
	if err != nil {
		return model.Contest{}, fmt.Errorf("insert contest: %w", err)
	}

	s.logger.Info("community contest created", "id", c.ID, "platform", string(c.Platform))
	return c, nil
}

// Upcoming lists contests that have not ended at now, soonest start first.
func (s *Store) Upcoming(ctx context.Context, now time.Time) ([]model.Contest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, platform, description, url, start_time, end_time
		FROM contest
		WHERE end_time > $1
		ORDER BY start_time, id
	`, normalize(now))
	if err != nil {
		return nil, fmt.Errorf("query contests: %w", err)
	}
	defer rows.Close()

	out := []model.Contest{}
	for rows.Next() {
		var c model.Contest
		var platform string
		if err := rows.Scan(&c.ID, &c.Title, &platform, &c.Description, &c.URL, &c.StartTime, &c.EndTime); err != nil {
			return nil, fmt.Errorf("scan contest: %w", err)
		}
		c.Platform = model.Platform(platform)
		c.StartTime, c.EndTime = c.StartTime.UTC(), c.EndTime.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contests: %w", err)
	}
	return out, nil
}

// Delete removes one contest by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contest WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contest: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Info("community contest deleted", "id", id)
	return nil
}

// normalize stores every instant as whole-second UTC so sqlite's text
// timestamps compare in time order.
func normalize(t time.Time) time.Time { return t.UTC().Truncate(time.Second) }
