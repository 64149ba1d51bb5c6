package server

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codewinder/contests/internal/model"
	"github.com/codewinder/contests/internal/store"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

const adminKeyHeader = "X-Admin-Key"

// cacheControl renders the shared-cache hint for the contest list.
func cacheControl(maxAge, swr time.Duration) string {
	if maxAge <= 0 {
		return "no-store"
	}
	v := fmt.Sprintf("public, s-maxage=%d", int(maxAge.Seconds()))
	if swr > 0 {
		v += fmt.Sprintf(", stale-while-revalidate=%d", int(swr.Seconds()))
	}
	return v
}

// listContests handles GET /api/contests. It always answers 200; a
// failing platform only shrinks the list.
func (s *Server) listContests(w http.ResponseWriter, r *http.Request) {
	report := s.agg.Collect(r.Context())
	w.Header().Set("Cache-Control", cacheControl(s.cfg.CacheMaxAge, s.cfg.StaleWhileRevalidate))
	JSONResponse(w, http.StatusOK, report.Contests)
}

// contestReport handles GET /api/contests/report
func (s *Server) contestReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	JSONResponse(w, http.StatusOK, s.agg.Collect(r.Context()))
}

// communityContests handles GET /api/contests/community
func (s *Server) communityContests(w http.ResponseWriter, r *http.Request) {
	contests, err := s.store.Upcoming(r.Context(), s.now())
	if err != nil {
		s.logger.Error("failed to list community contests", "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	JSONResponse(w, http.StatusOK, contests)
}

// createContest handles POST /api/admin/contests
func (s *Server) createContest(w http.ResponseWriter, r *http.Request) {
	var req model.CreateContestRequest
	if err := ParseJSONBody(w, r, &req); err != nil {
		if errors.Is(err, model.ErrInvalidTime) {
			ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := s.store.Create(r.Context(), req)
	switch {
	case errors.Is(err, store.ErrInvalidContest):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("failed to create contest", "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	JSONResponse(w, http.StatusCreated, c)
}

// deleteContest handles DELETE /api/admin/contests/{id}
func (s *Server) deleteContest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	case err != nil:
		s.logger.Error("failed to delete contest", "id", id, "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkAdminKey compares the request's admin key in constant time.
func checkAdminKey(r *http.Request, key string) error {
	got := strings.TrimSpace(r.Header.Get(adminKeyHeader))
	if key == "" || got == "" || !hmac.Equal([]byte(got), []byte(key)) {
		return ErrInvalidAdminKey
	}
	return nil
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checkAdminKey(r, s.adminKey); err != nil {
			s.logger.Warn("admin request rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}
		next(w, r)
	}
}
