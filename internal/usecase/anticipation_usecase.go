package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/infrastructure/metrics"
)

// AnticipationUseCase pulls a future installment into the currently open
// billing period, optionally spawning a linked cash-discount line.
type AnticipationUseCase struct {
	entryRepo  EntryRepository
	cardRepo   CardRepository
	goalRepo   GoalRepository
	outboxRepo OutboxRepository
	cache      Cache
	idGen      IDGenerator
	clock      Clock
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewAnticipationUseCase creates a new AnticipationUseCase.
func NewAnticipationUseCase(
	entryRepo EntryRepository,
	cardRepo CardRepository,
	goalRepo GoalRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	clock Clock,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *AnticipationUseCase {
	return &AnticipationUseCase{
		entryRepo:  entryRepo,
		cardRepo:   cardRepo,
		goalRepo:   goalRepo,
		outboxRepo: outboxRepo,
		cache:      cache,
		idGen:      idGen,
		clock:      clock,
		logger:     logger,
		metrics:    m,
	}
}

// AnticipationResult is the rewritten installment plus the discount line,
// if one was requested.
type AnticipationResult struct {
	Entry    *domain.Entry
	Discount *domain.Entry
}

// Anticipate relocates one future-dated series installment into today's
// billing period, recording the original period in AnticipatedFrom. The
// operation only ever pulls a future bill forward: it is rejected with the
// specific reason, nothing clamped silently, when the entry is not
// card-funded, not a series member, already anticipated, or already billed
// in the current or an earlier period. A positive discount spawns a second
// entry linked through RelatedEntryID, outside the series.
func (uc *AnticipationUseCase) Anticipate(ctx context.Context, entryID string, discount decimal.Decimal) (*AnticipationResult, error) {
	if discount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	entry, err := uc.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if !entry.CardFunded() {
		return nil, domain.ErrNotCardFunded
	}
	if !entry.SeriesMember() {
		return nil, domain.ErrNotSeriesMember
	}
	if entry.AnticipatedFrom != nil {
		return nil, domain.ErrAlreadyAnticipated
	}

	card, err := uc.cardRepo.GetByID(ctx, entry.CardID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	target := card.BillingPeriodFor(now)
	if !entry.BillPeriod.After(target) {
		return nil, domain.ErrPeriodNotFuture
	}

	original := *entry.BillPeriod
	oldEntry := *entry
	entry.BillPeriod = &target
	entry.AnticipatedFrom = &original
	entry.UpdatedAt = now

	if err := uc.entryRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	// The effective period changed months, so the entry's goal contribution
	// moves with it: out of the original period's goal, into the target's.
	out := domain.DeletionDelta(oldEntry.Status, oldEntry.Amount, domain.Status.CountsTowardGoal)
	if err := applyGoalDelta(ctx, uc.goalRepo, uc.clock, &oldEntry, out); err != nil {
		return nil, err
	}
	in := domain.CreationDelta(entry.Status, entry.Amount, domain.Status.CountsTowardGoal)
	if err := applyGoalDelta(ctx, uc.goalRepo, uc.clock, entry, in); err != nil {
		return nil, err
	}

	result := &AnticipationResult{Entry: entry}

	if discount.IsPositive() {
		discountEntry := &domain.Entry{
			ID:             uc.idGen.Generate(),
			Kind:           domain.KindExpense,
			Amount:         discount,
			DiscountAmount: discount,
			Description:    "anticipation discount: " + entry.Description,
			OccursOn:       now,
			Status:         statusAt(now, now),
			CardID:         card.ID,
			BillPeriod:     &target,
			RelatedEntryID: entry.ID,
			Recurrence:     domain.RecurrenceNone,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := uc.entryRepo.Create(ctx, discountEntry); err != nil {
			// The installment itself was moved; report the missing
			// discount line instead of pretending full success.
			uc.logger.Warn().Err(err).
				Str("entry_id", entry.ID).
				Msg("anticipation discount write failed")
			return result, &domain.PartialFailure{Written: 1, Requested: 2, Err: err}
		}
		result.Discount = discountEntry
	}

	emitOutbox(ctx, uc.outboxRepo, uc.idGen, uc.clock, uc.logger,
		domain.AggregateTypeEntry, entry.ID, domain.EventTypeEntryAnticipated,
		map[string]any{
			"entry_id": entry.ID,
			"from":     original.String(),
			"to":       target.String(),
			"discount": discount.String(),
		})

	invalidateEntryCaches(ctx, uc.cache, &oldEntry)
	invalidateEntryCaches(ctx, uc.cache, entry)
	if result.Discount != nil {
		invalidateEntryCaches(ctx, uc.cache, result.Discount)
	}

	if uc.metrics != nil {
		uc.metrics.EntriesAnticipated.Inc()
	}

	return result, nil
}
