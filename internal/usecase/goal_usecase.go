package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/infrastructure/metrics"
)

// GoalUseCase manages monthly category budgets. Progress is always
// derivable by pure recomputation over the ledger; the stored
// CurrentAmount is an incrementally maintained cache of the same number,
// and Recompute realigns it.
type GoalUseCase struct {
	goalRepo  GoalRepository
	entryRepo EntryRepository
	cache     Cache
	idGen     IDGenerator
	clock     Clock
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewGoalUseCase creates a new GoalUseCase.
func NewGoalUseCase(
	goalRepo GoalRepository,
	entryRepo EntryRepository,
	cache Cache,
	idGen IDGenerator,
	clock Clock,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *GoalUseCase {
	return &GoalUseCase{
		goalRepo:  goalRepo,
		entryRepo: entryRepo,
		cache:     cache,
		idGen:     idGen,
		clock:     clock,
		logger:    logger,
		metrics:   m,
	}
}

// CreateGoalInput represents input for creating a monthly goal.
type CreateGoalInput struct {
	CategoryID   string
	GoalType     domain.GoalType
	Month        time.Month
	Year         int
	TargetAmount decimal.Decimal
}

// CreateGoal creates a monthly goal for a category. At most one goal per
// (category, type, period).
func (uc *GoalUseCase) CreateGoal(ctx context.Context, input CreateGoalInput) (*domain.MonthlyGoal, error) {
	p, err := periodOf(input.Month, input.Year)
	if err != nil {
		return nil, err
	}
	if input.CategoryID == "" {
		return nil, domain.ErrInvalidKind
	}

	now := uc.clock.Now().UTC()
	goal := &domain.MonthlyGoal{
		ID:            uc.idGen.Generate(),
		CategoryID:    input.CategoryID,
		GoalType:      input.GoalType,
		Period:        p,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if existing, err := uc.goalRepo.FindByCategoryPeriod(ctx, input.CategoryID, input.GoalType, p); err == nil && existing != nil {
		return nil, domain.ErrGoalExists
	} else if err != nil && !errors.Is(err, domain.ErrGoalNotFound) {
		return nil, err
	}

	if err := uc.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}

	// Seed the cached current amount from the ledger so a goal created
	// mid-month starts at the right number.
	progress, err := uc.progress(ctx, input.CategoryID, input.GoalType, p)
	if err == nil && !progress.IsZero() {
		if err := uc.goalRepo.UpdateCurrent(ctx, goal.ID, progress, uc.clock.Now().UTC()); err == nil {
			goal.CurrentAmount = progress
		}
	}

	return goal, nil
}

// Progress computes a category's realized amount for one period straight
// from the ledger. Card purchases count toward their bill period the moment
// they are recorded, whether or not the bill was paid; settlements are
// excluded so the same spending is never counted twice.
func (uc *GoalUseCase) Progress(ctx context.Context, categoryID string, goalType domain.GoalType, month time.Month, year int) (decimal.Decimal, error) {
	p, err := periodOf(month, year)
	if err != nil {
		return decimal.Zero, err
	}
	if !goalType.Valid() {
		return decimal.Zero, domain.ErrInvalidKind
	}

	key := goalCacheKey(categoryID, goalType, p)
	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, key); err == nil && data != nil {
			var cached decimal.Decimal
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	total, err := uc.progress(ctx, categoryID, goalType, p)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(total); err == nil {
			_ = uc.cache.Set(ctx, key, data, GoalCacheTTL)
		}
	}

	return total, nil
}

// Recompute realigns a goal's cached CurrentAmount with the pure
// recomputation and returns the refreshed goal. Incremental adjustment and
// recomputation must agree; when they drift (e.g. after a partial bulk
// failure the caller abandoned) this is the repair path.
func (uc *GoalUseCase) Recompute(ctx context.Context, goalID string) (*domain.MonthlyGoal, error) {
	goal, err := uc.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	progress, err := uc.progress(ctx, goal.CategoryID, goal.GoalType, goal.Period)
	if err != nil {
		return nil, err
	}

	if !progress.Equal(goal.CurrentAmount) {
		uc.logger.Info().
			Str("goal_id", goal.ID).
			Str("cached", goal.CurrentAmount.String()).
			Str("recomputed", progress.String()).
			Msg("goal progress cache drifted, realigning")
		if err := uc.goalRepo.UpdateCurrent(ctx, goal.ID, progress, uc.clock.Now().UTC()); err != nil {
			return nil, err
		}
		goal.CurrentAmount = progress
	}

	if uc.metrics != nil {
		uc.metrics.GoalRecomputes.Inc()
	}

	return goal, nil
}

// ListGoals lists the goals of one period with freshly recomputed progress.
func (uc *GoalUseCase) ListGoals(ctx context.Context, month time.Month, year int) ([]*domain.MonthlyGoal, error) {
	p, err := periodOf(month, year)
	if err != nil {
		return nil, err
	}

	goals, err := uc.goalRepo.List(ctx, p)
	if err != nil {
		return nil, err
	}

	for _, goal := range goals {
		progress, err := uc.progress(ctx, goal.CategoryID, goal.GoalType, goal.Period)
		if err != nil {
			return nil, err
		}
		goal.CurrentAmount = progress
	}

	return goals, nil
}

// progress is the uncached pure recomputation: the union of account-funded
// entries occurring in p and card-funded entries billed in p, folded by
// domain.GoalProgress.
func (uc *GoalUseCase) progress(ctx context.Context, categoryID string, goalType domain.GoalType, p domain.Period) (decimal.Decimal, error) {
	byOccurs, err := uc.entryRepo.ListByCategoryOccurs(ctx, categoryID, p)
	if err != nil {
		return decimal.Zero, err
	}
	byBill, err := uc.entryRepo.ListByCategoryBill(ctx, categoryID, p)
	if err != nil {
		return decimal.Zero, err
	}

	entries := make([]*domain.Entry, 0, len(byOccurs)+len(byBill))
	entries = append(entries, byOccurs...)
	entries = append(entries, byBill...)

	return domain.GoalProgress(goalType, categoryID, p, entries), nil
}
