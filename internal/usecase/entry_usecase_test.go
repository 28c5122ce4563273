package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
	"github.com/lfmartins/contas/internal/usecase/mocks"
)

type entryFixture struct {
	entryRepo   *mocks.MockEntryRepository
	accountRepo *mocks.MockAccountRepository
	cardRepo    *mocks.MockCardRepository
	goalRepo    *mocks.MockGoalRepository
	uc          *usecase.EntryUseCase
}

func newEntryFixture() *entryFixture {
	f := &entryFixture{
		entryRepo:   mocks.NewMockEntryRepository(),
		accountRepo: mocks.NewMockAccountRepository(),
		cardRepo:    mocks.NewMockCardRepository(),
		goalRepo:    mocks.NewMockGoalRepository(),
	}
	f.uc = usecase.NewEntryUseCase(
		f.entryRepo,
		f.accountRepo,
		f.cardRepo,
		f.goalRepo,
		mocks.NewMockOutboxRepository(),
		nil,
		mocks.NewMockIDGenerator(),
		mocks.NewMockClock(testNow),
		zerolog.Nop(),
		nil,
	)
	return f
}

func TestEntryUseCase_CreateEntry_AccountFunded(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(1000)})

	entry, err := f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Kind:        domain.KindExpense,
		Amount:      decimal.RequireFromString("80.00"),
		Description: "groceries",
		OccursOn:    time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		AccountID:   "acc-1",
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	if entry.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed for a past date", entry.Status)
	}
	if entry.BillPeriod != nil {
		t.Errorf("account-funded entry has bill period %v", entry.BillPeriod)
	}
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(920)) {
		t.Errorf("account balance = %s, want 920", got)
	}
}

func TestEntryUseCase_CreateEntry_FutureIsPending(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(1000)})

	entry, err := f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Kind:      domain.KindIncome,
		Amount:    decimal.RequireFromString("200.00"),
		OccursOn:  time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if entry.Status != domain.StatusPending {
		t.Errorf("status = %s, want pending for a future date", entry.Status)
	}
	// Pending entries never move the balance.
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("account balance = %s, want untouched 1000", got)
	}
}

func TestEntryUseCase_CreateEntry_CardFundedGetsBillPeriod(t *testing.T) {
	f := newEntryFixture()
	f.cardRepo.Seed(&domain.Card{ID: "card-1", ClosingDay: 10, DueDay: 20})

	entry, err := f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Kind:     domain.KindExpense,
		Amount:   decimal.RequireFromString("60.00"),
		OccursOn: time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		CardID:   "card-1",
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	// June 15 is past the closing day 10, so the purchase bills in July.
	if entry.BillPeriod == nil || *entry.BillPeriod != (domain.Period{Month: time.July, Year: 2025}) {
		t.Errorf("bill period = %v, want 2025-07", entry.BillPeriod)
	}
}

func TestEntryUseCase_CreateEntry_InvalidatesBillCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Delete(gomock.Any(), "bill:card-1:2025-07").Return(nil)

	cardRepo := mocks.NewMockCardRepository()
	cardRepo.Seed(&domain.Card{ID: "card-1", ClosingDay: 10, DueDay: 20})

	uc := usecase.NewEntryUseCase(
		mocks.NewMockEntryRepository(),
		mocks.NewMockAccountRepository(),
		cardRepo,
		mocks.NewMockGoalRepository(),
		mocks.NewMockOutboxRepository(),
		cache,
		mocks.NewMockIDGenerator(),
		mocks.NewMockClock(testNow),
		zerolog.Nop(),
		nil,
	)

	_, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Kind:     domain.KindExpense,
		Amount:   decimal.RequireFromString("60.00"),
		OccursOn: time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		CardID:   "card-1",
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
}

func TestEntryUseCase_CreateEntry_Transfer(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(
		&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(500)},
		&domain.Account{ID: "acc-2", Balance: decimal.NewFromInt(100)},
	)

	_, err := f.uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Kind:                 domain.KindTransfer,
		Amount:               decimal.RequireFromString("150.00"),
		OccursOn:             time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		AccountID:            "acc-1",
		DestinationAccountID: "acc-2",
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(350)) {
		t.Errorf("source balance = %s, want 350", got)
	}
	if got := f.accountRepo.Stored("acc-2").Balance; !got.Equal(decimal.NewFromInt(250)) {
		t.Errorf("destination balance = %s, want 250", got)
	}
}

func TestEntryUseCase_CreateEntry_Validation(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1"})
	f.cardRepo.Seed(&domain.Card{ID: "card-1", ClosingDay: 10, DueDay: 20})

	tests := []struct {
		name    string
		input   usecase.CreateEntryInput
		wantErr error
	}{
		{
			name: "non-positive amount",
			input: usecase.CreateEntryInput{
				Kind: domain.KindExpense, Amount: decimal.Zero,
				OccursOn: testNow, AccountID: "acc-1",
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "both card and account",
			input: usecase.CreateEntryInput{
				Kind: domain.KindExpense, Amount: decimal.NewFromInt(10),
				OccursOn: testNow, AccountID: "acc-1", CardID: "card-1",
			},
			wantErr: domain.ErrAmbiguousFundingSource,
		},
		{
			name: "unknown account",
			input: usecase.CreateEntryInput{
				Kind: domain.KindExpense, Amount: decimal.NewFromInt(10),
				OccursOn: testNow, AccountID: "acc-404",
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.uc.CreateEntry(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntryUseCase_UpdateStatus_RoundTripIsNetZero(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(1000)})
	f.entryRepo.Seed(&domain.Entry{
		ID:         "e-1",
		Kind:       domain.KindExpense,
		Amount:     decimal.RequireFromString("50.00"),
		OccursOn:   testNow,
		Status:     domain.StatusCompleted,
		AccountID:  "acc-1",
		Recurrence: domain.RecurrenceNone,
	})

	// Cancelling refunds the balance, completing again re-applies it.
	if _, err := f.uc.UpdateStatus(context.Background(), "e-1", domain.StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus(cancelled) error = %v", err)
	}
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("balance after cancel = %s, want 1050", got)
	}

	if _, err := f.uc.UpdateStatus(context.Background(), "e-1", domain.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus(completed) error = %v", err)
	}
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance after round trip = %s, want the original 1000", got)
	}
}

func TestEntryUseCase_UpdateStatus_SameStatusIsNoOp(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(1000)})
	f.entryRepo.Seed(&domain.Entry{
		ID:         "e-1",
		Kind:       domain.KindExpense,
		Amount:     decimal.RequireFromString("50.00"),
		OccursOn:   testNow,
		Status:     domain.StatusCompleted,
		AccountID:  "acc-1",
		Recurrence: domain.RecurrenceNone,
	})

	updates := 0
	f.entryRepo.UpdateFunc = func(ctx context.Context, entry *domain.Entry) error {
		updates++
		return nil
	}

	if _, err := f.uc.UpdateStatus(context.Background(), "e-1", domain.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if updates != 0 {
		t.Errorf("%d writes for a same-status update, want 0", updates)
	}
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance = %s, want untouched 1000", got)
	}
}

func TestEntryUseCase_UpdateStatus_AdjustsGoal(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1"})
	f.goalRepo.Seed(&domain.MonthlyGoal{
		ID:            "g-1",
		CategoryID:    "food",
		GoalType:      domain.GoalTypeExpense,
		Period:        domain.Period{Month: time.June, Year: 2025},
		TargetAmount:  decimal.NewFromInt(500),
		CurrentAmount: decimal.RequireFromString("80.00"),
	})
	f.entryRepo.Seed(&domain.Entry{
		ID:         "e-1",
		Kind:       domain.KindExpense,
		Amount:     decimal.RequireFromString("80.00"),
		OccursOn:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		Status:     domain.StatusPending,
		AccountID:  "acc-1",
		CategoryID: "food",
		Recurrence: domain.RecurrenceNone,
	})

	// Pending and completed both count toward the goal: no change.
	if _, err := f.uc.UpdateStatus(context.Background(), "e-1", domain.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus(completed) error = %v", err)
	}
	if got := f.goalRepo.Stored("g-1").CurrentAmount; !got.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("goal progress = %s, want unchanged 80.00", got)
	}

	// Cancelling leaves the goal membership: progress drops.
	if _, err := f.uc.UpdateStatus(context.Background(), "e-1", domain.StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus(cancelled) error = %v", err)
	}
	if got := f.goalRepo.Stored("g-1").CurrentAmount; !got.Equal(decimal.Zero) {
		t.Errorf("goal progress = %s, want 0 after cancellation", got)
	}
}

func TestEntryUseCase_UpdateEntry_AmountEdit(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(1000)})
	f.entryRepo.Seed(&domain.Entry{
		ID:         "e-1",
		Kind:       domain.KindExpense,
		Amount:     decimal.RequireFromString("50.00"),
		OccursOn:   testNow,
		Status:     domain.StatusCompleted,
		AccountID:  "acc-1",
		Recurrence: domain.RecurrenceNone,
	})

	newAmount := decimal.RequireFromString("70.00")
	entry, err := f.uc.UpdateEntry(context.Background(), "e-1", usecase.UpdateEntryInput{Amount: &newAmount})
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if !entry.Amount.Equal(newAmount) {
		t.Errorf("amount = %s, want 70.00", entry.Amount)
	}
	// The balance nets the edit: old 50 back in, new 70 out.
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(980)) {
		t.Errorf("balance = %s, want 980", got)
	}
}

func TestEntryUseCase_UpdateEntry_CategoryChangeMovesGoalProgress(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1"})
	june := domain.Period{Month: time.June, Year: 2025}
	f.goalRepo.Seed(
		&domain.MonthlyGoal{ID: "g-food", CategoryID: "food", GoalType: domain.GoalTypeExpense, Period: june, TargetAmount: decimal.NewFromInt(500), CurrentAmount: decimal.RequireFromString("80.00")},
		&domain.MonthlyGoal{ID: "g-fun", CategoryID: "fun", GoalType: domain.GoalTypeExpense, Period: june, TargetAmount: decimal.NewFromInt(300), CurrentAmount: decimal.Zero},
	)
	f.entryRepo.Seed(&domain.Entry{
		ID:         "e-1",
		Kind:       domain.KindExpense,
		Amount:     decimal.RequireFromString("80.00"),
		OccursOn:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		Status:     domain.StatusCompleted,
		AccountID:  "acc-1",
		CategoryID: "food",
		Recurrence: domain.RecurrenceNone,
	})

	newCategory := "fun"
	if _, err := f.uc.UpdateEntry(context.Background(), "e-1", usecase.UpdateEntryInput{CategoryID: &newCategory}); err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if got := f.goalRepo.Stored("g-food").CurrentAmount; !got.Equal(decimal.Zero) {
		t.Errorf("old category progress = %s, want 0", got)
	}
	if got := f.goalRepo.Stored("g-fun").CurrentAmount; !got.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("new category progress = %s, want 80.00", got)
	}
}

func TestEntryUseCase_DeleteEntry_ReversesContributions(t *testing.T) {
	f := newEntryFixture()
	f.accountRepo.Seed(&domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(950)})
	f.goalRepo.Seed(&domain.MonthlyGoal{
		ID:            "g-1",
		CategoryID:    "food",
		GoalType:      domain.GoalTypeExpense,
		Period:        domain.Period{Month: time.June, Year: 2025},
		TargetAmount:  decimal.NewFromInt(500),
		CurrentAmount: decimal.RequireFromString("50.00"),
	})
	f.entryRepo.Seed(&domain.Entry{
		ID:         "e-1",
		Kind:       domain.KindExpense,
		Amount:     decimal.RequireFromString("50.00"),
		OccursOn:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		Status:     domain.StatusCompleted,
		AccountID:  "acc-1",
		CategoryID: "food",
		Recurrence: domain.RecurrenceNone,
	})

	if err := f.uc.DeleteEntry(context.Background(), "e-1"); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if got := f.accountRepo.Stored("acc-1").Balance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance = %s, want 1000 after the expense is backed out", got)
	}
	if got := f.goalRepo.Stored("g-1").CurrentAmount; !got.Equal(decimal.Zero) {
		t.Errorf("goal progress = %s, want 0", got)
	}
	if f.entryRepo.Count() != 0 {
		t.Errorf("%d entries remain, want 0", f.entryRepo.Count())
	}
}

func TestEntryUseCase_ListEntries_ExcludesSettlements(t *testing.T) {
	f := newEntryFixture()
	july := domain.Period{Month: time.July, Year: 2025}
	f.entryRepo.Seed(
		&domain.Entry{ID: "e-1", Kind: domain.KindExpense, Amount: decimal.NewFromInt(30), OccursOn: testNow, Status: domain.StatusCompleted, AccountID: "acc-1", Recurrence: domain.RecurrenceNone},
		&domain.Entry{ID: "pay-1", Kind: domain.KindExpense, Amount: decimal.NewFromInt(140), OccursOn: testNow, Status: domain.StatusCompleted, AccountID: "acc-1", SettlesCardID: "card-1", SettlesPeriod: &july, Recurrence: domain.RecurrenceNone},
	)

	entries, err := f.uc.ListEntries(context.Background(), usecase.EntryFilter{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e-1" {
		t.Errorf("listing returned %d entries, want only the regular expense", len(entries))
	}

	withSettlements, err := f.uc.ListEntries(context.Background(), usecase.EntryFilter{AccountID: "acc-1", IncludeSettlements: true})
	if err != nil {
		t.Fatalf("ListEntries(IncludeSettlements) error = %v", err)
	}
	if len(withSettlements) != 2 {
		t.Errorf("listing with settlements returned %d entries, want 2", len(withSettlements))
	}
}
