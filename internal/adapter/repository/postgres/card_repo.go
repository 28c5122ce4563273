package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lfmartins/contas/internal/domain"
)

// CardRepository implements usecase.CardRepository.
type CardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

const cardColumns = `id, name, closing_day, due_day, credit_limit, payment_account_id, created_at, updated_at`

// Create creates a new card.
func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		card.ID,
		card.Name,
		int32(card.ClosingDay),
		int32(card.DueDay),
		decimalToNumeric(card.CreditLimit),
		card.PaymentAccountID,
		timeToPgTimestamptz(card.CreatedAt),
		timeToPgTimestamptz(card.UpdatedAt),
	)

	return err
}

// GetByID retrieves a card by ID.
func (r *CardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)

	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}

		return nil, err
	}

	return card, nil
}

// List retrieves cards with pagination.
func (r *CardRepository) List(ctx context.Context, limit, offset int) ([]*domain.Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+cardColumns+` FROM cards
		ORDER BY created_at
		LIMIT $1 OFFSET $2`, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

func scanCard(row pgx.Row) (*domain.Card, error) {
	var (
		card                 domain.Card
		closingDay, dueDay   int32
		creditLimit          pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&card.ID,
		&card.Name,
		&closingDay,
		&dueDay,
		&creditLimit,
		&card.PaymentAccountID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	card.ClosingDay = int(closingDay)
	card.DueDay = int(dueDay)
	card.CreditLimit = numericToDecimal(creditLimit)
	card.CreatedAt = createdAt.Time
	card.UpdatedAt = updatedAt.Time

	return &card, nil
}
