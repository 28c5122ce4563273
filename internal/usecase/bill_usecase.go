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

// BillUseCase materializes bill views on demand and records bill payments
// as settlement entries.
type BillUseCase struct {
	entryRepo   EntryRepository
	cardRepo    CardRepository
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	cache       Cache
	idGen       IDGenerator
	clock       Clock
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewBillUseCase creates a new BillUseCase.
func NewBillUseCase(
	entryRepo EntryRepository,
	cardRepo CardRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	clock Clock,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *BillUseCase {
	return &BillUseCase{
		entryRepo:   entryRepo,
		cardRepo:    cardRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		cache:       cache,
		idGen:       idGen,
		clock:       clock,
		logger:      logger,
		metrics:     m,
	}
}

// BillFor builds the bill view of one card for one period. The view is a
// pure projection over the card's entries; a short-TTL cache fronts it.
func (uc *BillUseCase) BillFor(ctx context.Context, cardID string, month time.Month, year int) (*domain.Bill, error) {
	p, err := periodOf(month, year)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, billCacheKey(cardID, p)); err == nil && data != nil {
			var bill domain.Bill
			if json.Unmarshal(data, &bill) == nil {
				return &bill, nil
			}
		}
	}

	bill, err := uc.buildBill(ctx, cardID, p)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(bill); err == nil {
			_ = uc.cache.Set(ctx, billCacheKey(cardID, p), data, BillCacheTTL)
		}
	}

	return bill, nil
}

// PayBillInput represents input for paying a bill.
type PayBillInput struct {
	CardID string
	Month  time.Month
	Year   int
	// AccountID overrides the card's configured payment account.
	AccountID string
}

// PayBill settles a bill: one completed expense entry on the paying
// account, referencing the (card, period) it settles. Empty and
// already-paid bills are rejected before any write.
func (uc *BillUseCase) PayBill(ctx context.Context, input PayBillInput) (*domain.Entry, error) {
	p, err := periodOf(input.Month, input.Year)
	if err != nil {
		return nil, err
	}

	card, err := uc.cardRepo.GetByID(ctx, input.CardID)
	if err != nil {
		return nil, err
	}

	// Always aggregate fresh for a payment decision.
	bill, err := uc.buildBill(ctx, input.CardID, p)
	if err != nil {
		return nil, err
	}
	if bill.IsPaid {
		return nil, domain.ErrBillAlreadyPaid
	}
	if len(bill.Entries) == 0 || !bill.TotalAmount.IsPositive() {
		return nil, domain.ErrBillEmpty
	}

	accountID := input.AccountID
	if accountID == "" {
		accountID = card.PaymentAccountID
	}
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	settlement := &domain.Entry{
		ID:            uc.idGen.Generate(),
		Kind:          domain.KindExpense,
		Amount:        bill.TotalAmount,
		Description:   "bill payment " + card.Name + " " + p.String(),
		OccursOn:      now,
		Status:        domain.StatusCompleted,
		AccountID:     account.ID,
		Recurrence:    domain.RecurrenceNone,
		SettlesCardID: card.ID,
		SettlesPeriod: &p,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.entryRepo.Create(ctx, settlement); err != nil {
		return nil, err
	}

	if err := applyBalanceDelta(ctx, uc.accountRepo, uc.clock, account.ID, bill.TotalAmount.Neg()); err != nil {
		return nil, err
	}

	emitOutbox(ctx, uc.outboxRepo, uc.idGen, uc.clock, uc.logger,
		domain.AggregateTypeBill, card.ID+":"+p.String(), domain.EventTypeBillPaid,
		map[string]any{
			"card_id":    card.ID,
			"period":     p.String(),
			"amount":     bill.TotalAmount.String(),
			"account_id": account.ID,
		})

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, billCacheKey(card.ID, p))
	}

	if uc.metrics != nil {
		uc.metrics.BillsPaid.Inc()
		uc.metrics.BillAmount.Observe(bill.TotalAmount.InexactFloat64())
	}

	return settlement, nil
}

// AvailableLimit returns the card's credit limit minus the total of its
// entries sitting in bills that have not been settled yet.
func (uc *BillUseCase) AvailableLimit(ctx context.Context, cardID string) (decimal.Decimal, error) {
	card, err := uc.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return decimal.Zero, err
	}

	entries, err := uc.entryRepo.ListByCard(ctx, cardID)
	if err != nil {
		return decimal.Zero, err
	}

	byPeriod := make(map[domain.Period]decimal.Decimal)
	for _, e := range entries {
		if e.Status == domain.StatusCancelled || e.BillPeriod == nil {
			continue
		}
		if e.IsDiscount() {
			byPeriod[*e.BillPeriod] = byPeriod[*e.BillPeriod].Sub(e.Amount)
		} else {
			byPeriod[*e.BillPeriod] = byPeriod[*e.BillPeriod].Add(e.Amount)
		}
	}

	outstanding := decimal.Zero
	for p, total := range byPeriod {
		settlement, err := uc.entryRepo.FindSettlement(ctx, cardID, p)
		if err != nil {
			if errors.Is(err, domain.ErrEntryNotFound) {
				outstanding = outstanding.Add(total)
				continue
			}
			return decimal.Zero, err
		}
		if settlement.Status != domain.StatusCompleted {
			outstanding = outstanding.Add(total)
		}
	}

	return card.CreditLimit.Sub(outstanding), nil
}

func (uc *BillUseCase) buildBill(ctx context.Context, cardID string, p domain.Period) (*domain.Bill, error) {
	card, err := uc.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByCardPeriod(ctx, cardID, p)
	if err != nil {
		return nil, err
	}

	settlement, err := uc.entryRepo.FindSettlement(ctx, cardID, p)
	if err != nil && !errors.Is(err, domain.ErrEntryNotFound) {
		return nil, err
	}

	return domain.AggregateBill(card, p, entries, settlement), nil
}

// periodOf validates a (month, year) pair from the API surface.
func periodOf(month time.Month, year int) (domain.Period, error) {
	if month < time.January || month > time.December || year < 1 {
		return domain.Period{}, domain.ErrInvalidPeriod
	}
	return domain.Period{Month: month, Year: year}, nil
}
