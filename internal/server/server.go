package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewinder/contests/internal/aggregate"
	"github.com/codewinder/contests/internal/config"
	"github.com/codewinder/contests/internal/metrics"
	"github.com/codewinder/contests/internal/model"
)

// Aggregator produces the merged contest list.
type Aggregator interface {
	Collect(ctx context.Context) aggregate.Report
}

// ContestStore keeps community contests.
type ContestStore interface {
	Create(ctx context.Context, req model.CreateContestRequest) (model.Contest, error)
	Upcoming(ctx context.Context, now time.Time) ([]model.Contest, error)
	Delete(ctx context.Context, id string) error
}

type Options struct {
	Server      config.Server
	AdminKey    string              // empty leaves admin routes unregistered
	MetricsPath string              // empty disables the metrics route
	Gatherer    prometheus.Gatherer // defaults to prometheus.DefaultGatherer
}

type Server struct {
	cfg         config.Server
	adminKey    string
	metricsPath string
	gatherer    prometheus.Gatherer

	agg    Aggregator
	store  ContestStore
	logger *slog.Logger
	now    func() time.Time

	handler http.Handler
	server  *http.Server
}

func New(opts Options, agg Aggregator, st ContestStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		cfg:         opts.Server,
		adminKey:    opts.AdminKey,
		metricsPath: opts.MetricsPath,
		gatherer:    opts.Gatherer,
		agg:         agg,
		store:       st,
		logger:      logger,
		now:         time.Now,
	}
	s.handler = CORS(opts.Server.AllowedOrigin, WithLogging(logger, s.routes()))
	s.server = &http.Server{
		Addr:         opts.Server.ListenAddress,
		Handler:      s.handler,
		ReadTimeout:  opts.Server.ReadTimeout,
		WriteTimeout: opts.Server.WriteTimeout,
		IdleTimeout:  opts.Server.IdleTimeout,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metricsPath != "" {
		mux.Handle("GET "+s.metricsPath, metrics.Handler(s.gatherer))
	}

	// Public contest listings
	mux.HandleFunc("GET /api/contests", s.listContests)
	mux.HandleFunc("GET /api/contests/report", s.contestReport)
	if s.store != nil {
		mux.HandleFunc("GET /api/contests/community", s.communityContests)
	}

	// Community contest administration
	if s.store != nil && s.adminKey != "" {
		mux.HandleFunc("POST /api/admin/contests", s.requireAdmin(s.createContest))
		mux.HandleFunc("DELETE /api/admin/contests/{id}", s.requireAdmin(s.deleteContest))
	} else {
		s.logger.Info("admin routes disabled")
	}

	return mux
}

// Handler exposes the fully wrapped router.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Serve() error                       { return s.server.ListenAndServe() }
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }
