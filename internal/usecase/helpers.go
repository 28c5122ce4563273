package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
)

// applyBalanceDelta folds a signed adjustment into an account's cached
// balance. A zero delta is a no-op and issues no reads or writes.
func applyBalanceDelta(ctx context.Context, accounts AccountRepository, clock Clock, accountID string, delta decimal.Decimal) error {
	if delta.IsZero() || accountID == "" {
		return nil
	}
	account, err := accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	return accounts.UpdateBalance(ctx, account.ID, account.Balance.Add(delta), clock.Now().UTC())
}

// entryBalanceDeltas returns the per-account balance adjustments implied by
// an entry contributing (sign +1) or un-contributing (sign -1) its amount.
// Card-funded entries never touch account balances directly; their bill's
// settlement does.
func entryBalanceDeltas(e *domain.Entry, sign int) map[string]decimal.Decimal {
	if e.CardFunded() || !e.Status.CountsTowardBalance() {
		return nil
	}
	deltas := make(map[string]decimal.Decimal, 2)
	amount := e.SignedAmount()
	if sign < 0 {
		amount = amount.Neg()
	}
	deltas[e.AccountID] = amount
	if e.Kind == domain.KindTransfer && e.DestinationAccountID != "" {
		credit := e.Amount
		if sign < 0 {
			credit = credit.Neg()
		}
		deltas[e.DestinationAccountID] = credit
	}
	return deltas
}

// applyGoalDelta folds a signed adjustment into the cached current amount of
// the goal matching the entry's category, kind and effective period, if one
// exists. Settlement and discount entries never move goals.
func applyGoalDelta(ctx context.Context, goals GoalRepository, clock Clock, e *domain.Entry, delta decimal.Decimal) error {
	if goals == nil || delta.IsZero() || e.CategoryID == "" || e.IsSettlement() || e.IsDiscount() {
		return nil
	}
	var goalType domain.GoalType
	switch e.Kind {
	case domain.KindExpense:
		goalType = domain.GoalTypeExpense
	case domain.KindIncome:
		goalType = domain.GoalTypeIncome
	default:
		return nil
	}
	goal, err := goals.FindByCategoryPeriod(ctx, e.CategoryID, goalType, e.EffectivePeriod())
	if err != nil {
		if errors.Is(err, domain.ErrGoalNotFound) {
			return nil
		}
		return err
	}
	return goals.UpdateCurrent(ctx, goal.ID, goal.CurrentAmount.Add(delta), clock.Now().UTC())
}

// emitOutbox writes a domain event to the outbox. Outbox failures are logged
// and dropped: the primary operation has already succeeded and must not be
// reported as failed over a missing event.
func emitOutbox(ctx context.Context, outbox OutboxRepository, idGen IDGenerator, clock Clock, logger zerolog.Logger, aggregateType, aggregateID, eventType string, payload map[string]any) {
	if outbox == nil {
		return
	}
	event := &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     clock.Now().UTC(),
	}
	if err := outbox.Create(ctx, event); err != nil {
		logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("aggregate_id", aggregateID).
			Msg("outbox write failed, event dropped")
	}
}

func billCacheKey(cardID string, p domain.Period) string {
	return fmt.Sprintf("bill:%s:%s", cardID, p)
}

func goalCacheKey(categoryID string, goalType domain.GoalType, p domain.Period) string {
	return fmt.Sprintf("goal:%s:%s:%s", categoryID, goalType, p)
}

// invalidateEntryCaches drops the cached views an entry write can stale.
func invalidateEntryCaches(ctx context.Context, cache Cache, e *domain.Entry) {
	if cache == nil {
		return
	}
	if e.CardFunded() && e.BillPeriod != nil {
		_ = cache.Delete(ctx, billCacheKey(e.CardID, *e.BillPeriod))
	}
	if e.SettlesCardID != "" && e.SettlesPeriod != nil {
		_ = cache.Delete(ctx, billCacheKey(e.SettlesCardID, *e.SettlesPeriod))
	}
	if e.CategoryID != "" {
		p := e.EffectivePeriod()
		_ = cache.Delete(ctx, goalCacheKey(e.CategoryID, domain.GoalTypeExpense, p))
		_ = cache.Delete(ctx, goalCacheKey(e.CategoryID, domain.GoalTypeIncome, p))
	}
}
