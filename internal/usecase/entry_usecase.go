package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/infrastructure/metrics"
)

// EntryUseCase handles single-entry operations: creation, status
// transitions, edits and deletion, keeping the derived balance and goal
// caches adjusted through the one transition function in the domain.
type EntryUseCase struct {
	entryRepo   EntryRepository
	accountRepo AccountRepository
	cardRepo    CardRepository
	goalRepo    GoalRepository
	outboxRepo  OutboxRepository
	cache       Cache
	idGen       IDGenerator
	clock       Clock
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	entryRepo EntryRepository,
	accountRepo AccountRepository,
	cardRepo CardRepository,
	goalRepo GoalRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	clock Clock,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *EntryUseCase {
	return &EntryUseCase{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		cardRepo:    cardRepo,
		goalRepo:    goalRepo,
		outboxRepo:  outboxRepo,
		cache:       cache,
		idGen:       idGen,
		clock:       clock,
		logger:      logger,
		metrics:     m,
	}
}

func (uc *EntryUseCase) noteError(errType string) {
	if uc.metrics != nil {
		uc.metrics.EntryErrors.WithLabelValues(errType).Inc()
	}
}

// CreateEntryInput represents input for creating a single entry.
type CreateEntryInput struct {
	Kind                 domain.Kind
	Amount               decimal.Decimal
	Description          string
	OccursOn             time.Time
	AccountID            string
	CardID               string
	DestinationAccountID string
	CategoryID           string
	GoalID               string
}

// CreateEntry records one ledger entry. Card-funded entries are attributed
// to the bill period resolved from the card's closing day; the status is
// fixed at creation from the clock and never revisited.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.noteError("validation")
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		uc.noteError("validation")
		return nil, err
	}

	now := uc.clock.Now().UTC()
	entry := &domain.Entry{
		ID:                   uc.idGen.Generate(),
		Kind:                 input.Kind,
		Amount:               input.Amount,
		Description:          input.Description,
		OccursOn:             input.OccursOn,
		AccountID:            input.AccountID,
		CardID:               input.CardID,
		DestinationAccountID: input.DestinationAccountID,
		CategoryID:           input.CategoryID,
		GoalID:               input.GoalID,
		Recurrence:           domain.RecurrenceNone,
		Status:               statusAt(input.OccursOn, now),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if entry.CardFunded() {
		card, err := uc.cardRepo.GetByID(ctx, entry.CardID)
		if err != nil {
			uc.noteError("funding_lookup")
			return nil, err
		}
		p := card.BillingPeriodFor(entry.OccursOn)
		entry.BillPeriod = &p
	} else if entry.AccountID != "" {
		if _, err := uc.accountRepo.GetByID(ctx, entry.AccountID); err != nil {
			uc.noteError("funding_lookup")
			return nil, err
		}
	}

	if err := entry.Validate(); err != nil {
		uc.noteError("validation")
		return nil, err
	}

	if err := uc.entryRepo.Create(ctx, entry); err != nil {
		uc.noteError("write")
		return nil, err
	}

	if err := uc.applyCreation(ctx, entry); err != nil {
		return nil, err
	}

	emitOutbox(ctx, uc.outboxRepo, uc.idGen, uc.clock, uc.logger,
		domain.AggregateTypeEntry, entry.ID, domain.EventTypeEntryCreated,
		map[string]any{"kind": string(entry.Kind), "amount": entry.Amount.String()})
	invalidateEntryCaches(ctx, uc.cache, entry)

	if uc.metrics != nil {
		uc.metrics.EntriesCreated.Inc()
	}

	return entry, nil
}

// GetEntry retrieves an entry by ID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntries lists entries matching the filter. Settlement entries are
// excluded unless explicitly requested, so a bill payment never renders as
// both a transaction and a bill.
func (uc *EntryUseCase) ListEntries(ctx context.Context, filter EntryFilter) ([]*domain.Entry, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.entryRepo.List(ctx, filter)
}

// UpdateStatus moves an entry through the pending/completed/cancelled state
// machine and applies the implied deltas to the cached account balance and
// goal progress. A same-status update is a no-op.
func (uc *EntryUseCase) UpdateStatus(ctx context.Context, id string, newStatus domain.Status) (*domain.Entry, error) {
	if !newStatus.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == newStatus {
		return entry, nil
	}

	oldStatus := entry.Status
	entry.Status = newStatus
	entry.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.entryRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	if !entry.CardFunded() {
		signed := entry.SignedAmount()
		delta := domain.TransitionDelta(oldStatus, newStatus, signed, signed, domain.Status.CountsTowardBalance)
		if err := applyBalanceDelta(ctx, uc.accountRepo, uc.clock, entry.AccountID, delta); err != nil {
			return nil, err
		}
		if entry.Kind == domain.KindTransfer {
			credit := domain.TransitionDelta(oldStatus, newStatus, entry.Amount, entry.Amount, domain.Status.CountsTowardBalance)
			if err := applyBalanceDelta(ctx, uc.accountRepo, uc.clock, entry.DestinationAccountID, credit); err != nil {
				return nil, err
			}
		}
	}

	goalDelta := domain.TransitionDelta(oldStatus, newStatus, entry.Amount, entry.Amount, domain.Status.CountsTowardGoal)
	if err := applyGoalDelta(ctx, uc.goalRepo, uc.clock, entry, goalDelta); err != nil {
		return nil, err
	}

	invalidateEntryCaches(ctx, uc.cache, entry)

	return entry, nil
}

// UpdateEntryInput carries the editable fields of an entry; nil means keep.
type UpdateEntryInput struct {
	Description *string
	Amount      *decimal.Decimal
	CategoryID  *string
}

// UpdateEntry edits an entry's description, amount or category. An amount
// edit on a completed entry nets old-out, new-in on the derived totals.
func (uc *EntryUseCase) UpdateEntry(ctx context.Context, id string, input UpdateEntryInput) (*domain.Entry, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldAmount := entry.Amount
	oldSigned := entry.SignedAmount()
	oldEntry := *entry

	if input.Description != nil {
		if err := domain.ValidateDescription(*input.Description); err != nil {
			return nil, err
		}
		entry.Description = *input.Description
	}
	if input.Amount != nil {
		if err := domain.ValidateAmount(*input.Amount); err != nil {
			return nil, err
		}
		entry.Amount = *input.Amount
	}
	if input.CategoryID != nil {
		entry.CategoryID = *input.CategoryID
	}
	entry.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.entryRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	if !entry.CardFunded() {
		delta := domain.TransitionDelta(entry.Status, entry.Status, oldSigned, entry.SignedAmount(), domain.Status.CountsTowardBalance)
		if err := applyBalanceDelta(ctx, uc.accountRepo, uc.clock, entry.AccountID, delta); err != nil {
			return nil, err
		}
	}

	// A category change moves the contribution between goals; split it into
	// a removal against the old category and an addition to the new one.
	if oldEntry.CategoryID != entry.CategoryID {
		out := domain.DeletionDelta(oldEntry.Status, oldAmount, domain.Status.CountsTowardGoal)
		if err := applyGoalDelta(ctx, uc.goalRepo, uc.clock, &oldEntry, out); err != nil {
			return nil, err
		}
		in := domain.CreationDelta(entry.Status, entry.Amount, domain.Status.CountsTowardGoal)
		if err := applyGoalDelta(ctx, uc.goalRepo, uc.clock, entry, in); err != nil {
			return nil, err
		}
	} else {
		delta := domain.TransitionDelta(entry.Status, entry.Status, oldAmount, entry.Amount, domain.Status.CountsTowardGoal)
		if err := applyGoalDelta(ctx, uc.goalRepo, uc.clock, entry, delta); err != nil {
			return nil, err
		}
	}

	invalidateEntryCaches(ctx, uc.cache, &oldEntry)
	invalidateEntryCaches(ctx, uc.cache, entry)

	return entry, nil
}

// DeleteEntry removes an entry and reverses any balance or goal
// contribution it had already been counted for.
func (uc *EntryUseCase) DeleteEntry(ctx context.Context, id string) error {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.entryRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := uc.reverseContributions(ctx, entry); err != nil {
		return err
	}

	emitOutbox(ctx, uc.outboxRepo, uc.idGen, uc.clock, uc.logger,
		domain.AggregateTypeEntry, entry.ID, domain.EventTypeEntryDeleted,
		map[string]any{"kind": string(entry.Kind), "amount": entry.Amount.String()})
	invalidateEntryCaches(ctx, uc.cache, entry)

	if uc.metrics != nil {
		uc.metrics.EntriesDeleted.Inc()
	}

	return nil
}

// applyCreation folds a freshly created entry into the derived totals.
func (uc *EntryUseCase) applyCreation(ctx context.Context, entry *domain.Entry) error {
	for accountID, delta := range entryBalanceDeltas(entry, 1) {
		if err := applyBalanceDelta(ctx, uc.accountRepo, uc.clock, accountID, delta); err != nil {
			return err
		}
	}
	goalDelta := domain.CreationDelta(entry.Status, entry.Amount, domain.Status.CountsTowardGoal)
	return applyGoalDelta(ctx, uc.goalRepo, uc.clock, entry, goalDelta)
}

// reverseContributions backs a deleted entry out of the derived totals.
func (uc *EntryUseCase) reverseContributions(ctx context.Context, entry *domain.Entry) error {
	for accountID, delta := range entryBalanceDeltas(entry, -1) {
		if err := applyBalanceDelta(ctx, uc.accountRepo, uc.clock, accountID, delta); err != nil {
			return err
		}
	}
	goalDelta := domain.DeletionDelta(entry.Status, entry.Amount, domain.Status.CountsTowardGoal)
	return applyGoalDelta(ctx, uc.goalRepo, uc.clock, entry, goalDelta)
}

// statusAt fixes an entry's initial status: pending when strictly in the
// future relative to now, completed otherwise.
func statusAt(occursOn, now time.Time) domain.Status {
	if occursOn.After(now) {
		return domain.StatusPending
	}
	return domain.StatusCompleted
}
