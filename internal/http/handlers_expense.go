package http

import (
	"net/http"
	"time"

	"github.com/Md905908324/NoSpendy/internal/core"
	"github.com/Md905908324/NoSpendy/internal/log"
)

type createExpenseRequest struct {
	Amount   Amount `json:"amount"`
	Category string `json:"category"`
	Note     string `json:"note"`
	Date     string `json:"date"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	occurredAt := core.DateOf(time.Now())
	if v := sanitizeInput(req.Date); v != "" {
		day, err := core.ParseDate(v)
		if err != nil {
			UnprocessableEntityError("invalid date, expected YYYY-MM-DD").Write(w)
			return
		}
		occurredAt = day
	}

	expense, err := s.expenses.CreateExpense(r.Context(), core.Expense{
		OwnerID:    claims.UserID,
		Amount:     req.Amount.Money,
		Category:   sanitizeInput(req.Category),
		Note:       sanitizeInput(req.Note),
		OccurredAt: occurredAt,
	})
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	s.logger.LogExpenseCreated(r.Context(), claims.UserID, expense.Amount.Cents, expense.Category)

	NewResponse().
		Status(http.StatusCreated).
		Payload(newExpenseView(expense)).
		Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	expenses, err := s.expenses.ListExpenses(r.Context(), claims.UserID)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newExpenseViews(expenses)).Write(w)
}

func (s *Server) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	category := sanitizeInput(r.PathValue("category"))
	if category == "" {
		BadRequestError("category is required").Write(w)
		return
	}

	expenses, err := s.expenses.ListByCategory(r.Context(), claims.UserID, category)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newExpenseViews(expenses)).Write(w)
}

type monthlySummaryResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Total string `json:"total"`
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	params := ParseMonthParams(r.URL.Query())
	if params.Month < 1 || params.Month > 12 {
		BadRequestError("month must be between 1 and 12").Write(w)
		return
	}

	total, err := s.expenses.MonthlySummary(r.Context(), claims.UserID, params.Year, params.Month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly summary failed",
			log.FieldError, err, log.FieldUserID, claims.UserID)
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().
		Payload(monthlySummaryResponse{Year: params.Year, Month: params.Month, Total: moneyString(total)}).
		Write(w)
}

func (s *Server) handleDailyHistory(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	days := parseDaysParam(r.URL.Query(), 30)

	totals, err := s.expenses.DailyHistory(r.Context(), claims.UserID, core.DateOf(time.Now()), days)
	if err != nil {
		errorResponseFor(err).Write(w)
		return
	}

	NewResponse().Payload(newDailyTotalViews(totals)).Write(w)
}
