package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
)

// The underlying store offers per-document writes only: no repository method
// spans more than one document, and no transaction primitive is assumed.
// Bulk operations are sequential loops over these methods with observable
// progress (see domain.PartialFailure).

// EntryFilter is a conjunction of equality filters for listing entries.
// Zero values mean "any".
type EntryFilter struct {
	Kind               domain.Kind
	CategoryID         string
	AccountID          string
	CardID             string
	SeriesID           string
	Month              time.Month
	Year               int
	IncludeSettlements bool
	Limit              int
	Offset             int
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	Update(ctx context.Context, entry *domain.Entry) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EntryFilter) ([]*domain.Entry, error)
	// ListBySeries returns the series members ordered by installment index.
	ListBySeries(ctx context.Context, seriesID string) ([]*domain.Entry, error)
	ListByCard(ctx context.Context, cardID string) ([]*domain.Entry, error)
	ListByCardPeriod(ctx context.Context, cardID string, p domain.Period) ([]*domain.Entry, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Entry, error)
	ListByDestination(ctx context.Context, accountID string) ([]*domain.Entry, error)
	// ListByCategoryOccurs returns account-funded entries of a category whose
	// OccursOn falls in p; ListByCategoryBill returns card-funded ones whose
	// bill period is p. Together they cover a category's effective period.
	ListByCategoryOccurs(ctx context.Context, categoryID string, p domain.Period) ([]*domain.Entry, error)
	ListByCategoryBill(ctx context.Context, categoryID string, p domain.Period) ([]*domain.Entry, error)
	// FindSettlement returns the settlement entry for a card bill, or
	// domain.ErrEntryNotFound when none exists.
	FindSettlement(ctx context.Context, cardID string, p domain.Period) (*domain.Entry, error)
}

// CardRepository defines data access for cards.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByID(ctx context.Context, id string) (*domain.Card, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Card, error)
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// GoalRepository defines data access for monthly goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.MonthlyGoal) error
	GetByID(ctx context.Context, id string) (*domain.MonthlyGoal, error)
	// FindByCategoryPeriod returns domain.ErrGoalNotFound when no goal is
	// configured for the category and period.
	FindByCategoryPeriod(ctx context.Context, categoryID string, goalType domain.GoalType, p domain.Period) (*domain.MonthlyGoal, error)
	List(ctx context.Context, p domain.Period) ([]*domain.MonthlyGoal, error)
	UpdateCurrent(ctx context.Context, id string, current decimal.Decimal, updatedAt time.Time) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Clock is the single "now" source for status-on-creation and for
// anticipation's current-period computation.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching for derived views. Implementations may be absent;
// use cases treat a nil Cache as a cache that always misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
