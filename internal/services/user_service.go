package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Md905908324/NoSpendy/internal/auth"
	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

// ErrInvalidParams marks request payloads that fail validation before they
// reach storage. Callers can map it to a 4xx response.
var ErrInvalidParams = errors.New("invalid parameters")

// UserStore is the storage surface the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u storage.User) error
	GetUserByID(ctx context.Context, id string) (storage.User, error)
	GetUserByUsername(ctx context.Context, username string) (storage.User, error)
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	UpdateProfile(ctx context.Context, id string, upd storage.ProfileUpdate) error
	ListBadges(ctx context.Context, userID string) ([]string, error)
}

// UserService handles registration, login and profile management.
type UserService struct {
	store     UserStore
	auth      *auth.Manager
	publisher ActivityPublisher
}

func NewUserService(store UserStore, authManager *auth.Manager, publisher ActivityPublisher) *UserService {
	return &UserService{
		store:     store,
		auth:      authManager,
		publisher: publisher,
	}
}

// RegisterParams carries the fields accepted at signup.
type RegisterParams struct {
	Username      string
	Email         string
	Password      string
	RegionCode    string
	MonthlyBudget core.Money
	MonthlyIncome core.Money
	SavingsGoal   core.Money
}

func (p RegisterParams) validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.Email) == "" || !strings.Contains(p.Email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrInvalidParams)
	}
	if len(p.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidParams)
	}
	return nil
}

// Register creates an account and returns the stored user.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (storage.User, error) {
	if err := p.validate(); err != nil {
		return storage.User{}, fmt.Errorf("validate registration: %w", err)
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return storage.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := storage.User{
		ID:            uuid.NewString(),
		Username:      strings.TrimSpace(p.Username),
		Email:         strings.ToLower(strings.TrimSpace(p.Email)),
		PasswordHash:  hash,
		RegionCode:    strings.ToUpper(strings.TrimSpace(p.RegionCode)),
		MonthlyBudget: p.MonthlyBudget,
		MonthlyIncome: p.MonthlyIncome,
		SavingsGoal:   p.SavingsGoal,
		JoinedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return storage.User{}, err
	}

	return user, nil
}

// Login verifies credentials and issues a signed token.
func (s *UserService) Login(ctx context.Context, username, password string) (storage.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		// Fall back to email login the way the mobile client sends it.
		user, err = s.store.GetUserByEmail(ctx, strings.ToLower(username))
		if err != nil {
			return storage.User{}, "", fmt.Errorf("login: %w", auth.ErrInvalidCredentials)
		}
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return storage.User{}, "", fmt.Errorf("login: %w", auth.ErrInvalidCredentials)
	}

	token, err := s.auth.IssueToken(user.ID, user.Username)
	if err != nil {
		return storage.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	// Logging in counts as activity for the streak, same as an expense.
	if s.publisher != nil {
		today := core.DateOf(time.Now())
		if err := s.publisher.PublishActivity(ctx, user.ID, today.ISO()); err != nil {
			slog.WarnContext(ctx, "Failed to publish login activity",
				"user_id", user.ID, "error", err)
		}
	}

	return user, token, nil
}

// Profile returns the user together with earned badges.
func (s *UserService) Profile(ctx context.Context, userID string) (storage.User, []string, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return storage.User{}, nil, err
	}

	badges, err := s.store.ListBadges(ctx, userID)
	if err != nil {
		return storage.User{}, nil, fmt.Errorf("load badges: %w", err)
	}

	return user, badges, nil
}

// UpdateProfile applies the provided profile changes.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd storage.ProfileUpdate) (storage.User, error) {
	if upd.RegionCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*upd.RegionCode))
		upd.RegionCode = &code
	}

	if err := s.store.UpdateProfile(ctx, userID, upd); err != nil {
		return storage.User{}, err
	}

	return s.store.GetUserByID(ctx, userID)
}
