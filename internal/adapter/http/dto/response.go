package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		InitialBalance: a.InitialBalance,
		Balance:        a.Balance,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// CardResponse represents a card in API responses.
type CardResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ClosingDay       int             `json:"closing_day"`
	DueDay           int             `json:"due_day"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	PaymentAccountID string          `json:"payment_account_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CardFromDomain converts domain card to response.
func CardFromDomain(c *domain.Card) *CardResponse {
	return &CardResponse{
		ID:               c.ID,
		Name:             c.Name,
		ClosingDay:       c.ClosingDay,
		DueDay:           c.DueDay,
		CreditLimit:      c.CreditLimit,
		PaymentAccountID: c.PaymentAccountID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// CardsFromDomain converts domain cards to responses.
func CardsFromDomain(cards []*domain.Card) []*CardResponse {
	result := make([]*CardResponse, len(cards))
	for i, c := range cards {
		result[i] = CardFromDomain(c)
	}
	return result
}

// ListCardsResponse wraps a page of cards.
type ListCardsResponse struct {
	Cards []*CardResponse `json:"cards"`
	Total int64           `json:"total"`
}

// EntryResponse represents an entry in API responses. Periods are rendered
// as "YYYY-MM" strings.
type EntryResponse struct {
	ID                   string          `json:"id"`
	Kind                 string          `json:"kind"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
	OccursOn             time.Time       `json:"occurs_on"`
	Status               string          `json:"status"`
	AccountID            string          `json:"account_id,omitempty"`
	CardID               string          `json:"card_id,omitempty"`
	DestinationAccountID string          `json:"destination_account_id,omitempty"`
	CategoryID           string          `json:"category_id,omitempty"`
	BillPeriod           *string         `json:"bill_period,omitempty"`
	SeriesID             string          `json:"series_id,omitempty"`
	InstallmentIndex     int             `json:"installment_index,omitempty"`
	InstallmentCount     int             `json:"installment_count,omitempty"`
	Recurrence           string          `json:"recurrence,omitempty"`
	SplitMode            string          `json:"split_mode,omitempty"`
	AnticipatedFrom      *string         `json:"anticipated_from,omitempty"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	RelatedEntryID       string          `json:"related_entry_id,omitempty"`
	GoalID               string          `json:"goal_id,omitempty"`
	SettlesCardID        string          `json:"settles_card_id,omitempty"`
	SettlesPeriod        *string         `json:"settles_period,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:                   e.ID,
		Kind:                 string(e.Kind),
		Amount:               e.Amount,
		Description:          e.Description,
		OccursOn:             e.OccursOn,
		Status:               string(e.Status),
		AccountID:            e.AccountID,
		CardID:               e.CardID,
		DestinationAccountID: e.DestinationAccountID,
		CategoryID:           e.CategoryID,
		BillPeriod:           periodString(e.BillPeriod),
		SeriesID:             e.SeriesID,
		InstallmentIndex:     e.InstallmentIndex,
		InstallmentCount:     e.InstallmentCount,
		Recurrence:           string(e.Recurrence),
		SplitMode:            string(e.SplitMode),
		AnticipatedFrom:      periodString(e.AnticipatedFrom),
		DiscountAmount:       e.DiscountAmount,
		RelatedEntryID:       e.RelatedEntryID,
		GoalID:               e.GoalID,
		SettlesCardID:        e.SettlesCardID,
		SettlesPeriod:        periodString(e.SettlesPeriod),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// BillResponse represents a derived card bill in API responses.
type BillResponse struct {
	CardID      string           `json:"card_id"`
	Period      string           `json:"period"`
	Entries     []*EntryResponse `json:"entries"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	DueDate     time.Time        `json:"due_date"`
	IsPaid      bool             `json:"is_paid"`
}

// BillFromDomain converts domain bill to response.
func BillFromDomain(b *domain.Bill) *BillResponse {
	return &BillResponse{
		CardID:      b.CardID,
		Period:      b.Period.String(),
		Entries:     EntriesFromDomain(b.Entries),
		TotalAmount: b.TotalAmount,
		DueDate:     b.DueDate,
		IsPaid:      b.IsPaid,
	}
}

// AvailableLimitResponse reports a card's remaining credit.
type AvailableLimitResponse struct {
	CardID         string          `json:"card_id"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	AvailableLimit decimal.Decimal `json:"available_limit"`
}

// GoalResponse represents a monthly goal in API responses.
type GoalResponse struct {
	ID            string          `json:"id"`
	CategoryID    string          `json:"category_id"`
	GoalType      string          `json:"goal_type"`
	Period        string          `json:"period"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// GoalFromDomain converts domain goal to response.
func GoalFromDomain(g *domain.MonthlyGoal) *GoalResponse {
	return &GoalResponse{
		ID:            g.ID,
		CategoryID:    g.CategoryID,
		GoalType:      string(g.GoalType),
		Period:        g.Period.String(),
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

// GoalsFromDomain converts domain goals to responses.
func GoalsFromDomain(goals []*domain.MonthlyGoal) []*GoalResponse {
	result := make([]*GoalResponse, len(goals))
	for i, g := range goals {
		result[i] = GoalFromDomain(g)
	}
	return result
}

// GoalProgressResponse reports recomputed progress for a category goal.
type GoalProgressResponse struct {
	CategoryID string          `json:"category_id"`
	GoalType   string          `json:"goal_type"`
	Period     string          `json:"period"`
	Progress   decimal.Decimal `json:"progress"`
}

// ExpandSeriesResponse reports an expansion result.
type ExpandSeriesResponse struct {
	SeriesID string           `json:"series_id"`
	Written  int              `json:"written"`
	Entries  []*EntryResponse `json:"entries"`
}

// MoveSeriesResponse reports a series shift.
type MoveSeriesResponse struct {
	SeriesID string `json:"series_id"`
	Moved    int    `json:"moved"`
	Total    int    `json:"total"`
}

// TruncateSeriesResponse reports how many tail members were removed.
type TruncateSeriesResponse struct {
	SeriesID string `json:"series_id"`
	Removed  int    `json:"removed"`
}

// AnticipationResponse reports a rewritten installment and its optional
// discount line.
type AnticipationResponse struct {
	Entry    *EntryResponse `json:"entry"`
	Discount *EntryResponse `json:"discount,omitempty"`
}

// ErrorResponse represents an error in API responses. Written and Requested
// are populated for partial failures of bulk operations.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Written   int    `json:"written,omitempty"`
	Requested int    `json:"requested,omitempty"`
}

func periodString(p *domain.Period) *string {
	if p == nil {
		return nil
	}
	s := p.String()
	return &s
}
