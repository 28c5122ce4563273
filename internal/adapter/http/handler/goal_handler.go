package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/adapter/http/dto"
	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

// GoalService defines the behavior needed by GoalHandler.
type GoalService interface {
	CreateGoal(ctx context.Context, input usecase.CreateGoalInput) (*domain.MonthlyGoal, error)
	Progress(ctx context.Context, categoryID string, goalType domain.GoalType, month time.Month, year int) (decimal.Decimal, error)
	Recompute(ctx context.Context, goalID string) (*domain.MonthlyGoal, error)
	ListGoals(ctx context.Context, month time.Month, year int) ([]*domain.MonthlyGoal, error)
}

// GoalHandler handles goal-related HTTP requests.
type GoalHandler struct {
	goalUC GoalService
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalUC GoalService) *GoalHandler {
	return &GoalHandler{goalUC: goalUC}
}

// Create creates a monthly goal for a category.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	goal, err := h.goalUC.CreateGoal(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to create goal")
		return
	}

	writeJSON(w, http.StatusCreated, dto.GoalFromDomain(goal))
}

// List lists the goals of one period.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	month := time.Month(parseIntQuery(r, "month", 0))
	year := parseIntQuery(r, "year", 0)

	goals, err := h.goalUC.ListGoals(r.Context(), month, year)
	if err != nil {
		writeDomainError(w, err, "failed to list goals")
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalsFromDomain(goals))
}

// Progress recomputes a category's goal progress from the ledger.
func (h *GoalHandler) Progress(w http.ResponseWriter, r *http.Request) {
	categoryID := r.URL.Query().Get("category_id")
	goalType := domain.GoalType(r.URL.Query().Get("goal_type"))
	month := time.Month(parseIntQuery(r, "month", 0))
	year := parseIntQuery(r, "year", 0)

	progress, err := h.goalUC.Progress(r.Context(), categoryID, goalType, month, year)
	if err != nil {
		writeDomainError(w, err, "failed to compute progress")
		return
	}

	p := domain.Period{Month: month, Year: year}
	writeJSON(w, http.StatusOK, dto.GoalProgressResponse{
		CategoryID: categoryID,
		GoalType:   string(goalType),
		Period:     p.String(),
		Progress:   progress,
	})
}

// Recompute realigns a goal's cached progress with the ledger.
func (h *GoalHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	goal, err := h.goalUC.Recompute(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to recompute goal")
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalFromDomain(goal))
}
