package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Md905908324/NoSpendy/internal/auth"
	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/log"
	"github.com/Md905908324/NoSpendy/internal/metrics"
	"github.com/Md905908324/NoSpendy/internal/middleware/ratelimit"
	"github.com/Md905908324/NoSpendy/internal/middleware/security"
	"github.com/Md905908324/NoSpendy/internal/services"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

// UserService is the account surface the handlers need.
type UserService interface {
	Register(ctx context.Context, p services.RegisterParams) (storage.User, error)
	Login(ctx context.Context, username, password string) (storage.User, string, error)
	Profile(ctx context.Context, userID string) (storage.User, []string, error)
	UpdateProfile(ctx context.Context, userID string, upd storage.ProfileUpdate) (storage.User, error)
}

// ExpenseService records and reports spending.
type ExpenseService interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	ListByCategory(ctx context.Context, userID, category string) ([]core.Expense, error)
	MonthlySummary(ctx context.Context, userID string, year, month int) (core.Money, error)
	DailyHistory(ctx context.Context, userID string, today core.Date, days int) ([]storage.DailyTotal, error)
}

// ChallengeService manages group no-spend challenges.
type ChallengeService interface {
	Create(ctx context.Context, p services.CreateParams) (core.Challenge, error)
	Get(ctx context.Context, id string) (core.Challenge, error)
	List(ctx context.Context) ([]core.Challenge, error)
	ListForUser(ctx context.Context, userID string) ([]core.Challenge, error)
	Participants(ctx context.Context, challengeID string) ([]string, error)
	Join(ctx context.Context, challengeID, userID string) error
	Complete(ctx context.Context, challengeID string, today core.Date) (core.Challenge, error)
}

// LeaderboardService computes ranked spending views.
type LeaderboardService interface {
	Global(ctx context.Context) ([]core.Snapshot, error)
	Monthly(ctx context.Context, today core.Date) ([]core.Snapshot, error)
	Challenge(ctx context.Context, challengeID string) ([]core.Snapshot, error)
	Streaks(ctx context.Context) ([]core.Snapshot, error)
	Region(ctx context.Context, regionCode string) ([]core.Snapshot, error)
}

// Pinger reports storage health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the server needs to route requests.
type Deps struct {
	Users        UserService
	Expenses     ExpenseService
	Challenges   ChallengeService
	Leaderboards LeaderboardService
	Auth         *auth.Manager
	DB           Pinger
	Logger       *log.Logger
}

type Server struct {
	http.Server

	users        UserService
	expenses     ExpenseService
	challenges   ChallengeService
	leaderboards LeaderboardService
	auth         *auth.Manager
	db           Pinger

	logger      *log.StructuredLogger
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		users:        deps.Users,
		expenses:     deps.Expenses,
		challenges:   deps.Challenges,
		leaderboards: deps.Leaderboards,
		auth:         deps.Auth,
		db:           deps.DB,
		logger:       log.NewStructuredLogger(deps.Logger.WithComponent(log.ComponentHTTP)),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /users/register", s.withCommon(s.handleRegister))
	mux.HandleFunc("POST /users/login", s.withCommon(s.handleLogin))
	mux.HandleFunc("GET /users/verify-token", s.withCommon(s.handleVerifyToken))
	mux.HandleFunc("GET /users/profile", s.withCommon(s.withAuth(s.handleGetProfile)))
	mux.HandleFunc("PUT /users/profile", s.withCommon(s.withAuth(s.handleUpdateProfile)))

	mux.HandleFunc("POST /expenses", s.withCommon(s.withAuth(s.handleCreateExpense)))
	mux.HandleFunc("GET /expenses", s.withCommon(s.withAuth(s.handleListExpenses)))
	mux.HandleFunc("GET /expenses/monthly", s.withCommon(s.withAuth(s.handleMonthlySummary)))
	mux.HandleFunc("GET /expenses/daily-history", s.withCommon(s.withAuth(s.handleDailyHistory)))
	mux.HandleFunc("GET /expenses/category/{category}", s.withCommon(s.withAuth(s.handleListByCategory)))

	mux.HandleFunc("POST /challenges", s.withCommon(s.withAuth(s.handleCreateChallenge)))
	mux.HandleFunc("GET /challenges", s.withCommon(s.handleListChallenges))
	mux.HandleFunc("GET /challenges/user", s.withCommon(s.withAuth(s.handleUserChallenges)))
	mux.HandleFunc("GET /challenges/{id}", s.withCommon(s.handleGetChallenge))
	mux.HandleFunc("GET /challenges/{id}/participants", s.withCommon(s.handleChallengeParticipants))
	mux.HandleFunc("POST /challenges/{id}/join", s.withCommon(s.withAuth(s.handleJoinChallenge)))
	mux.HandleFunc("POST /challenges/{id}/complete", s.withCommon(s.withAuth(s.handleCompleteChallenge)))

	mux.HandleFunc("GET /leaderboard/global", s.withCommon(s.handleGlobalLeaderboard))
	mux.HandleFunc("GET /leaderboard/monthly", s.withCommon(s.handleMonthlyLeaderboard))
	mux.HandleFunc("GET /leaderboard/streaks", s.withCommon(s.handleStreakLeaderboard))
	mux.HandleFunc("GET /leaderboard/challenge/{id}", s.withCommon(s.handleChallengeLeaderboard))
	mux.HandleFunc("GET /leaderboard/cost-of-living/{region}", s.withCommon(s.handleRegionLeaderboard))

	handler := log.Middleware(deps.Logger)(security.Headers(corsMiddleware(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withCommon adds request tracing, rate limiting and metrics to a handler.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := s.detector.ExtractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.logger.LogHTTPStart(ctx, r, clientIP)

		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request detected",
				log.FieldClientIP, clientIP, "url", r.URL.Path)
		}

		// Mutating requests are rate limited per client IP.
		if r.Method != http.MethodGet && !s.rateLimiter.Allow(clientIP) {
			log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, "method", r.Method, "url", r.URL.Path)
			retry := int(s.rateLimiter.RetryAfter(clientIP).Seconds()) + 1
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").
				Header("Retry-After", strconv.Itoa(retry)).
				Write(w)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		status := strconv.Itoa(rw.statusCode)
		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = r.URL.Path
		}
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(duration.Milliseconds()))

		s.logger.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	claimsKey    contextKey = "claims"
)

// withAuth requires a valid bearer token and stores the claims in the
// request context.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.bearerClaims(r)
		if err != nil {
			UnauthorizedError("invalid or missing token").Write(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) bearerClaims(r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return nil, auth.ErrInvalidToken
	}
	return s.auth.VerifyToken(header[len(prefix):])
}

// claimsFrom returns the authenticated claims stored by withAuth.
func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// corsMiddleware allows browser clients on other origins to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			ErrorResponse(http.StatusServiceUnavailable, "storage unavailable").Write(w)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
