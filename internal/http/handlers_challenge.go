package http

import (
	"net/http"
	"time"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/log"
	"github.com/Md905908324/NoSpendy/internal/services"
)

type createChallengeRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Target       Amount `json:"target"`
	DurationDays int    `json:"duration_days"`
	StartDate    string `json:"start_date"`
	Category     string `json:"category"`
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req createChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	startDate := core.DateOf(time.Now())
	if v := sanitizeInput(req.StartDate); v != "" {
		day, err := core.ParseDate(v)
		if err != nil {
			UnprocessableEntityError("invalid start_date, expected YYYY-MM-DD").Write(w)
			return
		}
		startDate = day
	}

	challenge, err := s.challenges.Create(r.Context(), services.CreateParams{
		Name:         sanitizeInput(req.Name),
		Description:  sanitizeInput(req.Description),
		Target:       req.Target.Money,
		DurationDays: req.DurationDays,
		StartDate:    startDate,
		Category:     sanitizeInput(req.Category),
		CreatedBy:    claims.UserID,
	})
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		Payload(newChallengeView(challenge)).
		Write(w)
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := s.challenges.List(r.Context())
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newChallengeViews(challenges)).Write(w)
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := s.challenges.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newChallengeView(challenge)).Write(w)
}

type participantsResponse struct {
	ChallengeID  string   `json:"challenge_id"`
	Participants []string `json:"participants"`
}

func (s *Server) handleChallengeParticipants(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	participants, err := s.challenges.Participants(r.Context(), id)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().
		Payload(participantsResponse{ChallengeID: id, Participants: participants}).
		Write(w)
}

func (s *Server) handleUserChallenges(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	challenges, err := s.challenges.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newChallengeViews(challenges)).Write(w)
}

func (s *Server) handleJoinChallenge(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := r.PathValue("id")

	if err := s.challenges.Join(r.Context(), id, claims.UserID); err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Challenge joined",
		log.FieldChallengeID, id, log.FieldUserID, claims.UserID)

	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCompleteChallenge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	challenge, err := s.challenges.Complete(r.Context(), id, core.DateOf(time.Now()))
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newChallengeView(challenge)).Write(w)
}
