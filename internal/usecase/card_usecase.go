package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
)

// CardUseCase handles credit card lifecycle operations.
type CardUseCase struct {
	cardRepo    CardRepository
	accountRepo AccountRepository
	idGen       IDGenerator
	clock       Clock
	logger      zerolog.Logger
}

func NewCardUseCase(cardRepo CardRepository, accountRepo AccountRepository, idGen IDGenerator, clock Clock, logger zerolog.Logger) *CardUseCase {
	return &CardUseCase{
		cardRepo:    cardRepo,
		accountRepo: accountRepo,
		idGen:       idGen,
		clock:       clock,
		logger:      logger.With().Str("component", "card_usecase").Logger(),
	}
}

// CreateCardInput carries the data to register a card.
type CreateCardInput struct {
	Name             string
	ClosingDay       int
	DueDay           int
	CreditLimit      decimal.Decimal
	PaymentAccountID string
}

// CreateCard registers a credit card. The payment account, when given, must
// exist; it becomes the default funding source for bill payments.
func (uc *CardUseCase) CreateCard(ctx context.Context, input CreateCardInput) (*domain.Card, error) {
	if input.Name == "" {
		return nil, domain.ErrInvalidName
	}
	if err := domain.ValidateDescription(input.Name); err != nil {
		return nil, err
	}

	if input.PaymentAccountID != "" {
		if _, err := uc.accountRepo.GetByID(ctx, input.PaymentAccountID); err != nil {
			return nil, fmt.Errorf("payment account: %w", err)
		}
	}

	now := uc.clock.Now()
	card := &domain.Card{
		ID:               uc.idGen.Generate(),
		Name:             input.Name,
		ClosingDay:       input.ClosingDay,
		DueDay:           input.DueDay,
		CreditLimit:      input.CreditLimit,
		PaymentAccountID: input.PaymentAccountID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}

	if err := uc.cardRepo.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	uc.logger.Info().
		Str("card_id", card.ID).
		Str("name", card.Name).
		Int("closing_day", card.ClosingDay).
		Int("due_day", card.DueDay).
		Msg("card created")
	return card, nil
}

// GetCard returns a single card.
func (uc *CardUseCase) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	return uc.cardRepo.GetByID(ctx, id)
}

// ListCards returns cards with pagination.
func (uc *CardUseCase) ListCards(ctx context.Context, limit, offset int) ([]*domain.Card, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.cardRepo.List(ctx, limit, offset)
}
