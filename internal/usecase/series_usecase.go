package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/infrastructure/metrics"
)

// SeriesUseCase expands one recurrence request into dated entries and
// mutates whole series: shifting them across billing periods and truncating
// their tails. All multi-entry writes are sequential per-document writes;
// failure of write k leaves writes 1..k-1 in place and is reported as a
// domain.PartialFailure, never rolled back and never hidden.
type SeriesUseCase struct {
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

// NewSeriesUseCase creates a new SeriesUseCase.
func NewSeriesUseCase(
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
) *SeriesUseCase {
	return &SeriesUseCase{
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

// notePartialFailure records an interrupted multi-entry write for the
// given operation label.
func (uc *SeriesUseCase) notePartialFailure(op string) {
	if uc.metrics != nil {
		uc.metrics.PartialFailures.WithLabelValues(op).Inc()
	}
}

// ExpandSeriesInput represents one recurrence request.
type ExpandSeriesInput struct {
	Kind        domain.Kind
	Total       decimal.Decimal
	Description string
	StartsOn    time.Time
	AccountID   string
	CardID      string
	CategoryID  string
	GoalID      string
	Interval    domain.Recurrence
	Count       int
	SplitMode   domain.SplitMode
}

// ExpandResult reports how far an expansion got. Written equals
// len(Entries); on partial failure it is less than the requested count.
type ExpandResult struct {
	SeriesID string
	Entries  []*domain.Entry
	Written  int
}

// ExpandSeries produces and persists the entries of one series: count
// occurrences dated by the interval, amounts per the split mode, all
// sharing a fresh series ID and carrying 1-based installment indices.
// Each entry's status is fixed once at creation from the clock.
func (uc *SeriesUseCase) ExpandSeries(ctx context.Context, input ExpandSeriesInput) (*ExpandResult, error) {
	if input.Interval == domain.RecurrenceNone || !input.Interval.Valid() {
		return nil, domain.ErrInvalidRecurrence
	}
	if !input.SplitMode.Valid() {
		return nil, domain.ErrInvalidSplitMode
	}
	if err := domain.ValidateSeriesCount(input.Count); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Total); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}
	if input.StartsOn.IsZero() {
		return nil, domain.ErrMissingDate
	}

	var card *domain.Card
	if input.CardID != "" {
		var err error
		card, err = uc.cardRepo.GetByID(ctx, input.CardID)
		if err != nil {
			return nil, err
		}
	} else if input.AccountID != "" {
		if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
			return nil, err
		}
	}

	amounts := domain.SeriesAmounts(input.Total, input.Count, input.SplitMode)
	now := uc.clock.Now().UTC()
	seriesID := uc.idGen.Generate()

	// Build and validate the whole series before the first write. A split
	// can produce a zero or negative share (the last installment absorbs
	// the rounding remainder), and that must reject the request up front,
	// not strand already-written members.
	entries := make([]*domain.Entry, 0, input.Count)
	for i := 0; i < input.Count; i++ {
		occursOn := domain.StepOccurrence(input.StartsOn, input.Interval, i)
		entry := &domain.Entry{
			ID:               uc.idGen.Generate(),
			Kind:             input.Kind,
			Amount:           amounts[i],
			Description:      input.Description,
			OccursOn:         occursOn,
			Status:           statusAt(occursOn, now),
			AccountID:        input.AccountID,
			CardID:           input.CardID,
			CategoryID:       input.CategoryID,
			GoalID:           input.GoalID,
			SeriesID:         seriesID,
			InstallmentIndex: i + 1,
			InstallmentCount: input.Count,
			Recurrence:       input.Interval,
			SplitMode:        input.SplitMode,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if card != nil {
			p := card.BillingPeriodFor(occursOn)
			entry.BillPeriod = &p
		}
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	result := &ExpandResult{
		SeriesID: seriesID,
		Entries:  make([]*domain.Entry, 0, input.Count),
	}

	for _, entry := range entries {
		if err := uc.entryRepo.Create(ctx, entry); err != nil {
			uc.logger.Warn().Err(err).
				Str("series_id", seriesID).
				Int("written", result.Written).
				Int("requested", input.Count).
				Msg("series expansion stopped mid-way")
			uc.notePartialFailure("expand")
			return result, &domain.PartialFailure{Written: result.Written, Requested: input.Count, Err: err}
		}

		result.Entries = append(result.Entries, entry)
		result.Written++

		if err := uc.applyCreation(ctx, entry); err != nil {
			uc.notePartialFailure("expand")
			return result, &domain.PartialFailure{Written: result.Written, Requested: input.Count, Err: err}
		}
		invalidateEntryCaches(ctx, uc.cache, entry)
	}

	emitOutbox(ctx, uc.outboxRepo, uc.idGen, uc.clock, uc.logger,
		domain.AggregateTypeSeries, seriesID, domain.EventTypeSeriesExpanded,
		map[string]any{
			"series_id":  seriesID,
			"requested":  input.Count,
			"written":    result.Written,
			"split_mode": string(input.SplitMode),
		})

	if uc.metrics != nil {
		uc.metrics.SeriesExpanded.Inc()
	}

	return result, nil
}

// MoveResult reports a series shift.
type MoveResult struct {
	SeriesID string
	Moved    int
	Total    int
}

// MoveSeries shifts every member of a series by deltaPeriods billing
// periods, occurrence dates included. The shift is rejected outright, no
// writes issued, when the first member would land in a period that is
// already closed past the card's cutover, or in the past for account-funded
// series. A rejected move therefore never splits a series across
// inconsistent periods; a mid-loop write failure still can, and is reported
// as a partial failure for the caller to resolve.
func (uc *SeriesUseCase) MoveSeries(ctx context.Context, seriesID string, deltaPeriods int) (*MoveResult, error) {
	if deltaPeriods == 0 {
		return nil, domain.ErrInvalidCount
	}

	members, err := uc.entryRepo.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, domain.ErrSeriesNotFound
	}

	now := uc.clock.Now().UTC()
	first := members[0]

	currentPeriod := domain.PeriodOf(now)
	if first.CardFunded() {
		card, cardErr := uc.cardRepo.GetByID(ctx, first.CardID)
		if cardErr != nil {
			return nil, cardErr
		}
		currentPeriod = card.BillingPeriodFor(now)
	}
	if first.EffectivePeriod().AddMonths(deltaPeriods).Before(currentPeriod) {
		return nil, domain.ErrPeriodClosed
	}

	result := &MoveResult{SeriesID: seriesID, Total: len(members)}
	for _, member := range members {
		oldEntry := *member
		member.OccursOn = domain.StepOccurrence(member.OccursOn, domain.RecurrenceMonthly, deltaPeriods)
		if member.BillPeriod != nil {
			p := member.BillPeriod.AddMonths(deltaPeriods)
			member.BillPeriod = &p
		}
		member.UpdatedAt = now

		if err := uc.entryRepo.Update(ctx, member); err != nil {
			uc.logger.Warn().Err(err).
				Str("series_id", seriesID).
				Int("moved", result.Moved).
				Int("total", result.Total).
				Msg("series move stopped mid-way")
			uc.notePartialFailure("move")
			return result, &domain.PartialFailure{Written: result.Moved, Requested: result.Total, Err: err}
		}
		result.Moved++

		// Shifting periods moves the member's goal contribution across
		// months; back it out of the old period and count it in the new.
		out := domain.DeletionDelta(oldEntry.Status, oldEntry.Amount, domain.Status.CountsTowardGoal)
		if err := applyGoalDelta(ctx, uc.goalRepo, uc.clock, &oldEntry, out); err != nil {
			uc.notePartialFailure("move")
			return result, &domain.PartialFailure{Written: result.Moved, Requested: result.Total, Err: err}
		}
		in := domain.CreationDelta(member.Status, member.Amount, domain.Status.CountsTowardGoal)
		if err := applyGoalDelta(ctx, uc.goalRepo, uc.clock, member, in); err != nil {
			uc.notePartialFailure("move")
			return result, &domain.PartialFailure{Written: result.Moved, Requested: result.Total, Err: err}
		}

		invalidateEntryCaches(ctx, uc.cache, &oldEntry)
		invalidateEntryCaches(ctx, uc.cache, member)
	}

	emitOutbox(ctx, uc.outboxRepo, uc.idGen, uc.clock, uc.logger,
		domain.AggregateTypeSeries, seriesID, domain.EventTypeSeriesMoved,
		map[string]any{"series_id": seriesID, "delta_periods": deltaPeriods, "moved": result.Moved})

	if uc.metrics != nil {
		uc.metrics.SeriesMoved.Inc()
	}

	return result, nil
}

// DeleteFromInstallment removes every member of a series whose installment
// index is fromIndex or later, reversing any derived contributions the
// removed members had been counted for. Members before fromIndex are left
// untouched. A zero count is a valid outcome, not an error.
func (uc *SeriesUseCase) DeleteFromInstallment(ctx context.Context, seriesID string, fromIndex int) (int, error) {
	if fromIndex < 1 {
		return 0, domain.ErrInvalidInstallment
	}

	members, err := uc.entryRepo.ListBySeries(ctx, seriesID)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, domain.ErrSeriesNotFound
	}

	var tail []*domain.Entry
	for _, member := range members {
		if member.InstallmentIndex >= fromIndex {
			tail = append(tail, member)
		}
	}

	removed := 0
	for _, member := range tail {
		if err := uc.entryRepo.Delete(ctx, member.ID); err != nil {
			uc.logger.Warn().Err(err).
				Str("series_id", seriesID).
				Int("removed", removed).
				Int("matched", len(tail)).
				Msg("series truncation stopped mid-way")
			uc.notePartialFailure("truncate")
			return removed, &domain.PartialFailure{Written: removed, Requested: len(tail), Err: err}
		}
		removed++

		if err := uc.reverseContributions(ctx, member); err != nil {
			uc.notePartialFailure("truncate")
			return removed, &domain.PartialFailure{Written: removed, Requested: len(tail), Err: err}
		}
		invalidateEntryCaches(ctx, uc.cache, member)
	}

	emitOutbox(ctx, uc.outboxRepo, uc.idGen, uc.clock, uc.logger,
		domain.AggregateTypeSeries, seriesID, domain.EventTypeSeriesTruncated,
		map[string]any{"series_id": seriesID, "from_index": fromIndex, "removed": removed})

	if uc.metrics != nil {
		uc.metrics.SeriesTruncated.Inc()
	}

	return removed, nil
}

func (uc *SeriesUseCase) applyCreation(ctx context.Context, entry *domain.Entry) error {
	for accountID, delta := range entryBalanceDeltas(entry, 1) {
		if err := applyBalanceDelta(ctx, uc.accountRepo, uc.clock, accountID, delta); err != nil {
			return err
		}
	}
	goalDelta := domain.CreationDelta(entry.Status, entry.Amount, domain.Status.CountsTowardGoal)
	return applyGoalDelta(ctx, uc.goalRepo, uc.clock, entry, goalDelta)
}

func (uc *SeriesUseCase) reverseContributions(ctx context.Context, entry *domain.Entry) error {
	for accountID, delta := range entryBalanceDeltas(entry, -1) {
		if err := applyBalanceDelta(ctx, uc.accountRepo, uc.clock, accountID, delta); err != nil {
			return err
		}
	}
	goalDelta := domain.DeletionDelta(entry.Status, entry.Amount, domain.Status.CountsTowardGoal)
	return applyGoalDelta(ctx, uc.goalRepo, uc.clock, entry, goalDelta)
}
