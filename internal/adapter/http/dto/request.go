package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:           r.Name,
		InitialBalance: r.InitialBalance,
	}
}

// CreateCardRequest represents a request to register a credit card.
type CreateCardRequest struct {
	Name             string          `json:"name"`
	ClosingDay       int             `json:"closing_day"`
	DueDay           int             `json:"due_day"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	PaymentAccountID string          `json:"payment_account_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCardRequest) ToUseCaseInput() usecase.CreateCardInput {
	return usecase.CreateCardInput{
		Name:             r.Name,
		ClosingDay:       r.ClosingDay,
		DueDay:           r.DueDay,
		CreditLimit:      r.CreditLimit,
		PaymentAccountID: r.PaymentAccountID,
	}
}

// CreateEntryRequest represents a request to record one ledger entry.
type CreateEntryRequest struct {
	Kind                 string          `json:"kind"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
	OccursOn             time.Time       `json:"occurs_on"`
	AccountID            string          `json:"account_id,omitempty"`
	CardID               string          `json:"card_id,omitempty"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
	CategoryID           string          `json:"category_id,omitempty"`
	GoalID               string          `json:"goal_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput() usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		Kind:                 domain.Kind(r.Kind),
		Amount:               r.Amount,
		Description:          r.Description,
		OccursOn:             r.OccursOn,
		AccountID:            r.AccountID,
		CardID:               r.CardID,
		DestinationAccountID: r.DestinationAccountID,
		CategoryID:           r.CategoryID,
		GoalID:               r.GoalID,
	}
}

// UpdateEntryRequest carries the editable fields of an entry; absent fields
// are kept.
type UpdateEntryRequest struct {
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	CategoryID  *string          `json:"category_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateEntryRequest) ToUseCaseInput() usecase.UpdateEntryInput {
	return usecase.UpdateEntryInput{
		Description: r.Description,
		Amount:      r.Amount,
		CategoryID:  r.CategoryID,
	}
}

// UpdateStatusRequest represents a status transition request.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AnticipateRequest represents a request to pull an installment forward.
type AnticipateRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

// ExpandSeriesRequest represents a request to expand a recurrence into its
// member entries.
type ExpandSeriesRequest struct {
	Kind        string          `json:"kind"`
	Total       decimal.Decimal `json:"total"`
	Description string          `json:"description"`
	StartsOn    time.Time       `json:"starts_on"`
	AccountID   string          `json:"account_id,omitempty"`
	CardID      string          `json:"card_id,omitempty"`
	CategoryID  string          `json:"category_id,omitempty"`
	GoalID      string          `json:"goal_id,omitempty"`
	Interval    string          `json:"interval"`
	Count       int             `json:"count"`
	SplitMode   string          `json:"split_mode"`
}

// ToUseCaseInput converts to use case input.
func (r *ExpandSeriesRequest) ToUseCaseInput() usecase.ExpandSeriesInput {
	return usecase.ExpandSeriesInput{
		Kind:        domain.Kind(r.Kind),
		Total:       r.Total,
		Description: r.Description,
		StartsOn:    r.StartsOn,
		AccountID:   r.AccountID,
		CardID:      r.CardID,
		CategoryID:  r.CategoryID,
		GoalID:      r.GoalID,
		Interval:    domain.Recurrence(r.Interval),
		Count:       r.Count,
		SplitMode:   domain.SplitMode(r.SplitMode),
	}
}

// MoveSeriesRequest represents a request to shift a series across periods.
type MoveSeriesRequest struct {
	DeltaPeriods int `json:"delta_periods"`
}

// TruncateSeriesRequest represents a request to drop the tail of a series.
type TruncateSeriesRequest struct {
	FromInstallment int `json:"from_installment"`
}

// PayBillRequest represents a request to settle a card bill.
type PayBillRequest struct {
	// AccountID overrides the card's configured payment account.
	AccountID string `json:"account_id,omitempty"`
}

// CreateGoalRequest represents a request to create a monthly goal.
type CreateGoalRequest struct {
	CategoryID   string          `json:"category_id"`
	GoalType     string          `json:"goal_type"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateGoalRequest) ToUseCaseInput() usecase.CreateGoalInput {
	return usecase.CreateGoalInput{
		CategoryID:   r.CategoryID,
		GoalType:     domain.GoalType(r.GoalType),
		Month:        time.Month(r.Month),
		Year:         r.Year,
		TargetAmount: r.TargetAmount,
	}
}

// AdjustBalanceRequest represents a manual balance correction.
type AdjustBalanceRequest struct {
	NewBalance  decimal.Decimal `json:"new_balance"`
	Description string          `json:"description,omitempty"`
}
