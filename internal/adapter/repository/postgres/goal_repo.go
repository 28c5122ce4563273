package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
)

// GoalRepository implements usecase.GoalRepository.
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

const goalColumns = `id, category_id, goal_type, goal_month, goal_year, target_amount, current_amount, created_at, updated_at`

// Create creates a new monthly goal.
func (r *GoalRepository) Create(ctx context.Context, goal *domain.MonthlyGoal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO monthly_goals (`+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		goal.ID,
		goal.CategoryID,
		string(goal.GoalType),
		int32(goal.Period.Month),
		int32(goal.Period.Year),
		decimalToNumeric(goal.TargetAmount),
		decimalToNumeric(goal.CurrentAmount),
		timeToPgTimestamptz(goal.CreatedAt),
		timeToPgTimestamptz(goal.UpdatedAt),
	)

	return err
}

// GetByID retrieves a goal by ID.
func (r *GoalRepository) GetByID(ctx context.Context, id string) (*domain.MonthlyGoal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+goalColumns+` FROM monthly_goals WHERE id = $1`, id)

	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}

		return nil, err
	}

	return goal, nil
}

// FindByCategoryPeriod retrieves the goal configured for a category, type
// and period.
func (r *GoalRepository) FindByCategoryPeriod(ctx context.Context, categoryID string, goalType domain.GoalType, p domain.Period) (*domain.MonthlyGoal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+goalColumns+` FROM monthly_goals
		WHERE category_id = $1 AND goal_type = $2 AND goal_month = $3 AND goal_year = $4`,
		categoryID,
		string(goalType),
		int32(p.Month),
		int32(p.Year),
	)

	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}

		return nil, err
	}

	return goal, nil
}

// List retrieves all goals for a period.
func (r *GoalRepository) List(ctx context.Context, p domain.Period) ([]*domain.MonthlyGoal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+goalColumns+` FROM monthly_goals
		WHERE goal_month = $1 AND goal_year = $2
		ORDER BY category_id`,
		int32(p.Month),
		int32(p.Year),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*domain.MonthlyGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	return goals, rows.Err()
}

// UpdateCurrent updates the cached progress of a goal.
func (r *GoalRepository) UpdateCurrent(ctx context.Context, id string, current decimal.Decimal, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE monthly_goals SET current_amount = $2, updated_at = $3 WHERE id = $1`,
		id,
		decimalToNumeric(current),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}

	return nil
}

func scanGoal(row pgx.Row) (*domain.MonthlyGoal, error) {
	var (
		goal                 domain.MonthlyGoal
		goalType             string
		month, year          int32
		target, current      pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&goal.ID,
		&goal.CategoryID,
		&goalType,
		&month,
		&year,
		&target,
		&current,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	goal.GoalType = domain.GoalType(goalType)
	goal.Period = domain.Period{Month: time.Month(month), Year: int(year)}
	goal.TargetAmount = numericToDecimal(target)
	goal.CurrentAmount = numericToDecimal(current)
	goal.CreatedAt = createdAt.Time
	goal.UpdatedAt = updatedAt.Time

	return &goal, nil
}
