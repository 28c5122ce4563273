package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/infrastructure/metrics"
)

// BalanceUseCase reconciles cached account balances against the ledger and
// records manual adjustments as regular entries.
type BalanceUseCase struct {
	entryRepo   EntryRepository
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	clock       Clock
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

func NewBalanceUseCase(
	entryRepo EntryRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *BalanceUseCase {
	return &BalanceUseCase{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		clock:       clock,
		logger:      logger.With().Str("component", "balance_usecase").Logger(),
		metrics:     m,
	}
}

// Recompute derives the account balance from scratch out of the account's
// completed entries and overwrites the cached value. It returns the
// recomputed account.
func (uc *BalanceUseCase) Recompute(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	funded, err := uc.entryRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account entries: %w", err)
	}
	received, err := uc.entryRepo.ListByDestination(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list incoming transfers: %w", err)
	}

	recomputed := account.RecomputeBalance(funded, received)
	if !recomputed.Equal(account.Balance) {
		uc.logger.Warn().
			Str("account_id", accountID).
			Str("cached", account.Balance.String()).
			Str("recomputed", recomputed.String()).
			Msg("account balance drift corrected")
	}
	account.Balance = recomputed

	account.UpdatedAt = uc.clock.Now()
	if err := uc.accountRepo.UpdateBalance(ctx, accountID, account.Balance, account.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	return account, nil
}

// AdjustInput carries a manual balance correction.
type AdjustInput struct {
	AccountID   string
	NewBalance  decimal.Decimal
	Description string
}

// Adjust records a manual adjustment entry whose amount is the difference
// between the declared balance and the cached one, then sets the cached
// balance to the declared value. A zero difference writes nothing.
func (uc *BalanceUseCase) Adjust(ctx context.Context, input AdjustInput) (*domain.Entry, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	delta := input.NewBalance.Sub(account.Balance)
	if delta.IsZero() {
		return nil, nil
	}

	kind := domain.KindIncome
	if delta.IsNegative() {
		kind = domain.KindExpense
	}

	description := input.Description
	if description == "" {
		description = "balance adjustment"
	}
	if err := domain.ValidateDescription(description); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	entry := &domain.Entry{
		ID:          uc.idGen.Generate(),
		Kind:        kind,
		Amount:      delta.Abs(),
		Description: description,
		OccursOn:    now,
		Status:      domain.StatusCompleted,
		AccountID:   input.AccountID,
		Recurrence:  domain.RecurrenceNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create adjustment entry: %w", err)
	}

	if err := uc.accountRepo.UpdateBalance(ctx, input.AccountID, input.NewBalance, now); err != nil {
		return nil, &domain.PartialFailure{Written: 1, Requested: 2, Err: err}
	}

	uc.emitAdjusted(ctx, account, entry, delta, input.NewBalance)

	uc.logger.Info().
		Str("account_id", input.AccountID).
		Str("delta", delta.String()).
		Str("new_balance", input.NewBalance.String()).
		Msg("balance adjusted")

	if uc.metrics != nil {
		uc.metrics.BalanceAdjustments.Inc()
	}

	return entry, nil
}

func (uc *BalanceUseCase) emitAdjusted(ctx context.Context, account *domain.Account, entry *domain.Entry, delta, newBalance decimal.Decimal) {
	payload := map[string]any{
		"account_id":  account.ID,
		"entry_id":    entry.ID,
		"old_balance": account.Balance.String(),
		"new_balance": newBalance.String(),
		"delta":       delta.String(),
	}
	emitOutbox(ctx, uc.outboxRepo, uc.idGen, uc.clock, uc.logger,
		domain.AggregateTypeAccount, account.ID, domain.EventTypeBalanceAdjusted, payload)
}
