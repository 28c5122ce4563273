package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lfmartins/contas/internal/domain"
)

// AccountUseCase handles account lifecycle operations.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	clock       Clock
	logger      zerolog.Logger
}

func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, clock Clock, logger zerolog.Logger) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		clock:       clock,
		logger:      logger.With().Str("component", "account_usecase").Logger(),
	}
}

// CreateAccountInput carries the data to open an account.
type CreateAccountInput struct {
	Name           string
	InitialBalance decimal.Decimal
}

// CreateAccount opens a new account. The cached balance starts at the
// initial balance; entries move it from there.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.Name == "" {
		return nil, domain.ErrInvalidName
	}
	if err := domain.ValidateDescription(input.Name); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Name:           input.Name,
		InitialBalance: input.InitialBalance,
		Balance:        input.InitialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	uc.logger.Info().Str("account_id", account.ID).Str("name", account.Name).Msg("account created")
	return account, nil
}

// GetAccount returns a single account.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccounts returns accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.accountRepo.List(ctx, limit, offset)
}
