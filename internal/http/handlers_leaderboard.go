package http

import (
	"net/http"
	"time"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/log"
)

func (s *Server) writeLeaderboard(w http.ResponseWriter, r *http.Request, snapshots []core.Snapshot, err error) {
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Leaderboard computation failed",
			log.FieldError, err, "url", r.URL.Path)
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newLeaderboardView(snapshots)).Write(w)
}

func (s *Server) handleGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.leaderboards.Global(r.Context())
	s.writeLeaderboard(w, r, snapshots, err)
}

func (s *Server) handleMonthlyLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.leaderboards.Monthly(r.Context(), core.DateOf(time.Now()))
	s.writeLeaderboard(w, r, snapshots, err)
}

func (s *Server) handleStreakLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.leaderboards.Streaks(r.Context())
	s.writeLeaderboard(w, r, snapshots, err)
}

func (s *Server) handleChallengeLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.leaderboards.Challenge(r.Context(), r.PathValue("id"))
	s.writeLeaderboard(w, r, snapshots, err)
}

func (s *Server) handleRegionLeaderboard(w http.ResponseWriter, r *http.Request) {
	region := sanitizeInput(r.PathValue("region"))
	if region == "" {
		BadRequestError("region is required").Write(w)
		return
	}

	snapshots, err := s.leaderboards.Region(r.Context(), region)
	s.writeLeaderboard(w, r, snapshots, err)
}
