package http

import (
	"net/http"

	"github.com/Md905908324/NoSpendy/internal/log"
	"github.com/Md905908324/NoSpendy/internal/services"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

type registerRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	RegionCode    string `json:"region_code"`
	MonthlyBudget Amount `json:"monthly_budget"`
	MonthlyIncome Amount `json:"monthly_income"`
	SavingsGoal   Amount `json:"savings_goal"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	user, err := s.users.Register(r.Context(), services.RegisterParams{
		Username:      sanitizeInput(req.Username),
		Email:         sanitizeInput(req.Email),
		Password:      req.Password,
		RegionCode:    sanitizeInput(req.RegionCode),
		MonthlyBudget: req.MonthlyBudget.Money,
		MonthlyIncome: req.MonthlyIncome.Money,
		SavingsGoal:   req.SavingsGoal.Money,
	})
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Registration failed",
			log.FieldError, err, log.FieldUsername, req.Username)
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		Payload(newUserView(user, nil)).
		Write(w)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	user, token, err := s.users.Login(r.Context(), sanitizeInput(req.Username), req.Password)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Login failed",
			log.FieldUsername, req.Username)
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().
		Payload(loginResponse{Token: token, User: newUserView(user, nil)}).
		Write(w)
}

type verifyTokenResponse struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	claims, err := s.bearerClaims(r)
	if err != nil {
		NewResponse().
			Status(http.StatusUnauthorized).
			Payload(verifyTokenResponse{Valid: false}).
			Write(w)
		return
	}

	NewResponse().
		Payload(verifyTokenResponse{Valid: true, UserID: claims.UserID, Username: claims.Username}).
		Write(w)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	user, badges, err := s.users.Profile(r.Context(), claims.UserID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newUserView(user, badges)).Write(w)
}

type updateProfileRequest struct {
	RegionCode    *string `json:"region_code"`
	MonthlyBudget *Amount `json:"monthly_budget"`
	MonthlyIncome *Amount `json:"monthly_income"`
	SavingsGoal   *Amount `json:"savings_goal"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	upd := storage.ProfileUpdate{}
	if req.RegionCode != nil {
		code := sanitizeInput(*req.RegionCode)
		upd.RegionCode = &code
	}
	if req.MonthlyBudget != nil {
		upd.MonthlyBudget = &req.MonthlyBudget.Money
	}
	if req.MonthlyIncome != nil {
		upd.MonthlyIncome = &req.MonthlyIncome.Money
	}
	if req.SavingsGoal != nil {
		upd.SavingsGoal = &req.SavingsGoal.Money
	}

	user, err := s.users.UpdateProfile(r.Context(), claims.UserID, upd)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newUserView(user, nil)).Write(w)
}
