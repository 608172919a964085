package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Md905908324/NoSpendy/internal/auth"
	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/log"
	"github.com/Md905908324/NoSpendy/internal/services"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

type fakeUsers struct {
	byUsername map[string]storage.User
	byID       map[string]storage.User
	badges     map[string][]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byUsername: make(map[string]storage.User),
		byID:       make(map[string]storage.User),
		badges:     make(map[string][]string),
	}
}

func (f *fakeUsers) add(u storage.User) {
	f.byUsername[u.Username] = u
	f.byID[u.ID] = u
}

func (f *fakeUsers) Register(ctx context.Context, p services.RegisterParams) (storage.User, error) {
	if p.Username == "" || !strings.Contains(p.Email, "@") || len(p.Password) < 8 {
		return storage.User{}, fmt.Errorf("%w: invalid registration", services.ErrInvalidParams)
	}
	if _, ok := f.byUsername[p.Username]; ok {
		return storage.User{}, fmt.Errorf("create user: %w", storage.ErrDuplicate)
	}
	u := storage.User{
		ID:         "u-" + p.Username,
		Username:   p.Username,
		Email:      p.Email,
		RegionCode: strings.ToUpper(p.RegionCode),
		JoinedAt:   time.Now().UTC(),
	}
	f.add(u)
	return u, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (storage.User, string, error) {
	u, ok := f.byUsername[username]
	if !ok || password != "s3cret-pass" {
		return storage.User{}, "", fmt.Errorf("login: %w", auth.ErrInvalidCredentials)
	}
	return u, "token-" + u.ID, nil
}

func (f *fakeUsers) Profile(ctx context.Context, userID string) (storage.User, []string, error) {
	u, ok := f.byID[userID]
	if !ok {
		return storage.User{}, nil, fmt.Errorf("get user: %w", storage.ErrNotFound)
	}
	return u, f.badges[userID], nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID string, upd storage.ProfileUpdate) (storage.User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return storage.User{}, fmt.Errorf("get user: %w", storage.ErrNotFound)
	}
	if upd.RegionCode != nil {
		u.RegionCode = strings.ToUpper(*upd.RegionCode)
	}
	if upd.MonthlyBudget != nil {
		u.MonthlyBudget = *upd.MonthlyBudget
	}
	f.add(u)
	return u, nil
}

type fakeExpenses struct {
	expenses []core.Expense
}

func (f *fakeExpenses) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w: %w", services.ErrInvalidParams, err)
	}
	e.ID = int64(len(f.expenses) + 1)
	f.expenses = append(f.expenses, e)
	return e, nil
}

func (f *fakeExpenses) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	var out []core.Expense
	for _, e := range f.expenses {
		if e.OwnerID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenses) ListByCategory(ctx context.Context, userID, category string) ([]core.Expense, error) {
	var out []core.Expense
	for _, e := range f.expenses {
		if e.OwnerID == userID && e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenses) MonthlySummary(ctx context.Context, userID string, year, month int) (core.Money, error) {
	var total int64
	for _, e := range f.expenses {
		if e.OwnerID == userID && e.OccurredAt.Year() == year && int(e.OccurredAt.Month()) == month {
			total += e.Amount.Cents
		}
	}
	return core.Money{Cents: total}, nil
}

func (f *fakeExpenses) DailyHistory(ctx context.Context, userID string, today core.Date, days int) ([]storage.DailyTotal, error) {
	return []storage.DailyTotal{
		{Day: today, Amount: core.Money{Cents: 1500}},
	}, nil
}

type fakeChallenges struct {
	challenges map[string]core.Challenge
	joined     map[string]map[string]bool
}

func newFakeChallenges() *fakeChallenges {
	return &fakeChallenges{
		challenges: make(map[string]core.Challenge),
		joined:     make(map[string]map[string]bool),
	}
}

func (f *fakeChallenges) Create(ctx context.Context, p services.CreateParams) (core.Challenge, error) {
	c := core.Challenge{
		ID:           "ch-1",
		Name:         p.Name,
		Description:  p.Description,
		Target:       p.Target,
		DurationDays: p.DurationDays,
		StartDate:    p.StartDate,
		EndDate:      p.StartDate.AddDays(p.DurationDays),
		Category:     p.Category,
		CreatedBy:    p.CreatedBy,
	}
	if err := c.Validate(); err != nil {
		return core.Challenge{}, fmt.Errorf("validate challenge: %w: %w", services.ErrInvalidParams, err)
	}
	f.challenges[c.ID] = c
	f.joined[c.ID] = map[string]bool{p.CreatedBy: true}
	return c, nil
}

func (f *fakeChallenges) Get(ctx context.Context, id string) (core.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return core.Challenge{}, fmt.Errorf("get challenge: %w", storage.ErrNotFound)
	}
	return c, nil
}

func (f *fakeChallenges) List(ctx context.Context) ([]core.Challenge, error) {
	var out []core.Challenge
	for _, c := range f.challenges {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeChallenges) ListForUser(ctx context.Context, userID string) ([]core.Challenge, error) {
	var out []core.Challenge
	for id, members := range f.joined {
		if members[userID] {
			out = append(out, f.challenges[id])
		}
	}
	return out, nil
}

func (f *fakeChallenges) Participants(ctx context.Context, challengeID string) ([]string, error) {
	members, ok := f.joined[challengeID]
	if !ok {
		return nil, fmt.Errorf("get challenge: %w", storage.ErrNotFound)
	}
	var out []string
	for id := range members {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeChallenges) Join(ctx context.Context, challengeID, userID string) error {
	members, ok := f.joined[challengeID]
	if !ok {
		return fmt.Errorf("get challenge: %w", storage.ErrNotFound)
	}
	if members[userID] {
		return fmt.Errorf("join challenge: %w", storage.ErrDuplicate)
	}
	members[userID] = true
	return nil
}

func (f *fakeChallenges) Complete(ctx context.Context, challengeID string, today core.Date) (core.Challenge, error) {
	c, ok := f.challenges[challengeID]
	if !ok {
		return core.Challenge{}, fmt.Errorf("get challenge: %w", storage.ErrNotFound)
	}
	if today.Before(c.EndDate.Time) {
		return core.Challenge{}, core.ErrChallengeNotEnded
	}
	c.Completed = true
	f.challenges[challengeID] = c
	return c, nil
}

type fakeBoards struct {
	snapshots []core.Snapshot
}

func (f *fakeBoards) Global(ctx context.Context) ([]core.Snapshot, error)  { return f.snapshots, nil }
func (f *fakeBoards) Streaks(ctx context.Context) ([]core.Snapshot, error) { return f.snapshots, nil }

func (f *fakeBoards) Monthly(ctx context.Context, today core.Date) ([]core.Snapshot, error) {
	return f.snapshots, nil
}

func (f *fakeBoards) Challenge(ctx context.Context, challengeID string) ([]core.Snapshot, error) {
	return f.snapshots, nil
}

func (f *fakeBoards) Region(ctx context.Context, regionCode string) ([]core.Snapshot, error) {
	var out []core.Snapshot
	for _, s := range f.snapshots {
		if s.RegionCode == regionCode {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type testEnv struct {
	srv        *Server
	auth       *auth.Manager
	users      *fakeUsers
	expenses   *fakeExpenses
	challenges *fakeChallenges
	boards     *fakeBoards
	pinger     *fakePinger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		auth:       auth.NewManager("0123456789abcdef0123456789abcdef", time.Hour),
		users:      newFakeUsers(),
		expenses:   &fakeExpenses{},
		challenges: newFakeChallenges(),
		boards:     &fakeBoards{},
		pinger:     &fakePinger{},
	}

	env.srv = NewServer(":0", Deps{
		Users:        env.users,
		Expenses:     env.expenses,
		Challenges:   env.challenges,
		Leaderboards: env.boards,
		Auth:         env.auth,
		DB:           env.pinger,
		Logger:       log.New(log.DefaultConfig()),
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = env.srv.Shutdown(ctx)
	})

	return env
}

func (env *testEnv) token(t *testing.T, userID, username string) string {
	t.Helper()
	token, err := env.auth.IssueToken(userID, username)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (env *testEnv) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	env.pinger.err = fmt.Errorf("db gone")
	rr := env.do(t, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with broken storage status=%d", rr.Code)
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	t.Run("success", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/users/register", "",
			`{"username":"alice","email":"alice@example.com","password":"s3cret-pass","region_code":"ca","monthly_budget":"1200.50"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		view := decodeBody[userView](t, rr)
		if view.Username != "alice" || view.RegionCode != "CA" {
			t.Fatalf("unexpected user view: %+v", view)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/users/register", "",
			`{"username":"alice","email":"other@example.com","password":"s3cret-pass"}`)
		if rr.Code != http.StatusConflict {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("invalid payload", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/users/register", "",
			`{"username":"","email":"nope","password":"short"}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/users/register", "", `{"username":`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status=%d", rr.Code)
		}
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.users.add(storage.User{ID: "u1", Username: "alice", Email: "alice@example.com"})

	t.Run("success", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/users/login", "",
			`{"username":"alice","password":"s3cret-pass"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		resp := decodeBody[loginResponse](t, rr)
		if resp.Token == "" || resp.User.ID != "u1" {
			t.Fatalf("unexpected login response: %+v", resp)
		}
	})

	t.Run("bad password", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/users/login", "",
			`{"username":"alice","password":"wrong"}`)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status=%d", rr.Code)
		}
	})
}

func TestVerifyToken(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/users/verify-token", env.token(t, "u1", "alice"), "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		resp := decodeBody[verifyTokenResponse](t, rr)
		if !resp.Valid || resp.UserID != "u1" {
			t.Fatalf("unexpected verify response: %+v", resp)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/users/verify-token", "garbage", "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status=%d", rr.Code)
		}
		resp := decodeBody[verifyTokenResponse](t, rr)
		if resp.Valid {
			t.Fatal("expected valid=false")
		}
	})

	t.Run("missing header", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/users/verify-token", "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status=%d", rr.Code)
		}
	})
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	env.users.add(storage.User{ID: "u1", Username: "alice", RegionCode: "CA"})
	env.users.badges["u1"] = []string{core.BadgeWeekStreak}
	token := env.token(t, "u1", "alice")

	t.Run("requires auth", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/users/profile", "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("returns badges", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/users/profile", token, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		view := decodeBody[userView](t, rr)
		if len(view.Badges) != 1 || view.Badges[0] != core.BadgeWeekStreak {
			t.Fatalf("unexpected badges: %v", view.Badges)
		}
	})

	t.Run("update region", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/users/profile", token, `{"region_code":"tx"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		view := decodeBody[userView](t, rr)
		if view.RegionCode != "TX" {
			t.Fatalf("region=%s", view.RegionCode)
		}
	})
}

func TestCreateExpense(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1", "alice")

	t.Run("success with numeric amount", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/expenses", token,
			`{"amount":12.34,"category":"groceries","note":"weekly shop","date":"2026-08-15"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		view := decodeBody[expenseView](t, rr)
		if view.Amount != "12.34" || view.Date != "2026-08-15" {
			t.Fatalf("unexpected expense view: %+v", view)
		}
	})

	t.Run("string amount", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/expenses", token,
			`{"amount":"7,50","category":"coffee"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		view := decodeBody[expenseView](t, rr)
		if view.Amount != "7.50" {
			t.Fatalf("amount=%s", view.Amount)
		}
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/expenses", token,
			`{"amount":0,"category":"groceries"}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("missing category rejected", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/expenses", token,
			`{"amount":5}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("bad date rejected", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/expenses", token,
			`{"amount":5,"category":"x","date":"15/08/2026"}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("requires auth", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/expenses", "",
			`{"amount":5,"category":"x"}`)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status=%d", rr.Code)
		}
	})
}

func TestExpenseQueries(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1", "alice")
	env.expenses.expenses = []core.Expense{
		{ID: 1, OwnerID: "u1", Amount: core.Money{Cents: 1000}, Category: "groceries", OccurredAt: core.NewDate(2026, 8, 10)},
		{ID: 2, OwnerID: "u1", Amount: core.Money{Cents: 2500}, Category: "transport", OccurredAt: core.NewDate(2026, 8, 12)},
		{ID: 3, OwnerID: "u2", Amount: core.Money{Cents: 999}, Category: "groceries", OccurredAt: core.NewDate(2026, 8, 12)},
	}

	t.Run("list own expenses", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/expenses", token, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		views := decodeBody[[]expenseView](t, rr)
		if len(views) != 2 {
			t.Fatalf("expected 2 expenses, got %d", len(views))
		}
	})

	t.Run("filter by category", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/expenses/category/groceries", token, "")
		views := decodeBody[[]expenseView](t, rr)
		if len(views) != 1 || views[0].Category != "groceries" {
			t.Fatalf("unexpected views: %+v", views)
		}
	})

	t.Run("monthly summary", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/expenses/monthly?year=2026&month=8", token, "")
		resp := decodeBody[monthlySummaryResponse](t, rr)
		if resp.Total != "35.00" {
			t.Fatalf("total=%s", resp.Total)
		}
	})

	t.Run("invalid month", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/expenses/monthly?year=2026&month=13", token, "")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("daily history", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/expenses/daily-history?days=7", token, "")
		views := decodeBody[[]dailyTotalView](t, rr)
		if len(views) != 1 || views[0].Total != "15.00" {
			t.Fatalf("unexpected views: %+v", views)
		}
	})
}

func TestChallenges(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1", "alice")
	otherToken := env.token(t, "u2", "bob")

	t.Run("create", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/challenges", token,
			`{"name":"No Takeout","description":"skip delivery for a month","target":"100.00","duration_days":30,"start_date":"2026-08-01"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
		view := decodeBody[challengeView](t, rr)
		if view.EndDate != "2026-08-31" || view.CreatedBy != "u1" {
			t.Fatalf("unexpected challenge view: %+v", view)
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/challenges", token,
			`{"name":"","description":"x","target":"100.00","duration_days":30}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("get", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/challenges/ch-1", "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/challenges/ghost", "", "")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("join", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/challenges/ch-1/join", otherToken, "")
		if rr.Code != http.StatusNoContent {
			t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
		}
	})

	t.Run("join twice conflicts", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/challenges/ch-1/join", otherToken, "")
		if rr.Code != http.StatusConflict {
			t.Fatalf("status=%d", rr.Code)
		}
	})

	t.Run("participants", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/challenges/ch-1/participants", "", "")
		resp := decodeBody[participantsResponse](t, rr)
		if len(resp.Participants) != 2 {
			t.Fatalf("participants=%v", resp.Participants)
		}
	})

	t.Run("user challenges", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/challenges/user", otherToken, "")
		views := decodeBody[[]challengeView](t, rr)
		if len(views) != 1 {
			t.Fatalf("views=%+v", views)
		}
	})

	t.Run("complete before end conflicts", func(t *testing.T) {
		env.challenges.challenges["ch-1"] = func() core.Challenge {
			c := env.challenges.challenges["ch-1"]
			c.EndDate = core.DateOf(time.Now()).AddDays(5)
			return c
		}()
		rr := env.do(t, http.MethodPost, "/challenges/ch-1/complete", token, "")
		if rr.Code != http.StatusConflict {
			t.Fatalf("status=%d", rr.Code)
		}
	})
}

func TestLeaderboards(t *testing.T) {
	env := newTestEnv(t)
	env.boards.snapshots = []core.Snapshot{
		{
			UserID:     "u1",
			Username:   "alice",
			RegionCode: "CA",
			Raw:        core.Money{Cents: 15000},
			Adjusted:   decimal.New(10000, -2),
			Index:      decimal.NewFromInt(150),
		},
		{
			UserID:     "u2",
			Username:   "bob",
			RegionCode: "TX",
			Raw:        core.Money{Cents: 12000},
			Adjusted:   decimal.New(13333, -2),
			Index:      decimal.NewFromInt(90),
		},
	}

	t.Run("global ranks in order", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/leaderboard/global", "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		views := decodeBody[[]leaderboardEntryView](t, rr)
		if len(views) != 2 || views[0].Rank != 1 || views[0].Username != "alice" {
			t.Fatalf("unexpected views: %+v", views)
		}
		if views[0].Adjusted != "100.00" {
			t.Fatalf("adjusted=%s", views[0].Adjusted)
		}
	})

	t.Run("region filters", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/leaderboard/cost-of-living/TX", "", "")
		views := decodeBody[[]leaderboardEntryView](t, rr)
		if len(views) != 1 || views[0].Username != "bob" {
			t.Fatalf("unexpected views: %+v", views)
		}
	})

	t.Run("monthly and streaks respond", func(t *testing.T) {
		for _, path := range []string{"/leaderboard/monthly", "/leaderboard/streaks", "/leaderboard/challenge/ch-1"} {
			rr := env.do(t, http.MethodGet, path, "", "")
			if rr.Code != http.StatusOK {
				t.Fatalf("%s status=%d", path, rr.Code)
			}
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("missing CORS header")
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/leaderboard/global", "", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options=%q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options=%q", got)
	}
}
