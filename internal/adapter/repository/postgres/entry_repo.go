package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lfmartins/contas/internal/domain"
	"github.com/lfmartins/contas/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository. Every method is a
// single statement against one row set; bulk semantics live in the use
// cases.
type EntryRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewEntryRepository creates a new EntryRepository. Writes go through the
// retrier when one is given.
func NewEntryRepository(pool *pgxpool.Pool, retrier *Retrier) *EntryRepository {
	return &EntryRepository{pool: pool, retrier: retrier}
}

func (r *EntryRepository) write(ctx context.Context, op func() error) error {
	if r.retrier == nil {
		return op()
	}
	return r.retrier.Retry(ctx, op)
}

const entryColumns = `id, kind, amount, description, occurs_on, status,
	account_id, card_id, destination_account_id, category_id,
	bill_month, bill_year, series_id, installment_index, installment_count,
	recurrence, split_mode, anticipated_month, anticipated_year,
	discount_amount, related_entry_id, goal_id,
	settles_card_id, settles_month, settles_year, created_at, updated_at`

// Create inserts one entry.
func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	billMonth, billYear := periodToInts(entry.BillPeriod)
	antMonth, antYear := periodToInts(entry.AnticipatedFrom)
	setMonth, setYear := periodToInts(entry.SettlesPeriod)

	return r.write(ctx, func() error {
		_, err := r.pool.Exec(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`,
			entry.ID,
			string(entry.Kind),
			decimalToNumeric(entry.Amount),
			entry.Description,
			timeToPgTimestamptz(entry.OccursOn),
			string(entry.Status),
			entry.AccountID,
			entry.CardID,
			entry.DestinationAccountID,
			entry.CategoryID,
			billMonth,
			billYear,
			entry.SeriesID,
			int32(entry.InstallmentIndex),
			int32(entry.InstallmentCount),
			string(entry.Recurrence),
			string(entry.SplitMode),
			antMonth,
			antYear,
			decimalToNumeric(entry.DiscountAmount),
			entry.RelatedEntryID,
			entry.GoalID,
			entry.SettlesCardID,
			setMonth,
			setYear,
			timeToPgTimestamptz(entry.CreatedAt),
			timeToPgTimestamptz(entry.UpdatedAt),
		)
		return err
	})
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

// Update rewrites one entry in full.
func (r *EntryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	billMonth, billYear := periodToInts(entry.BillPeriod)
	antMonth, antYear := periodToInts(entry.AnticipatedFrom)

	return r.write(ctx, func() error {
		tag, err := r.pool.Exec(ctx, `
		UPDATE entries SET
			kind = $2, amount = $3, description = $4, occurs_on = $5,
			status = $6, category_id = $7, bill_month = $8, bill_year = $9,
			anticipated_month = $10, anticipated_year = $11,
			discount_amount = $12, updated_at = $13
		WHERE id = $1`,
			entry.ID,
			string(entry.Kind),
			decimalToNumeric(entry.Amount),
			entry.Description,
			timeToPgTimestamptz(entry.OccursOn),
			string(entry.Status),
			entry.CategoryID,
			billMonth,
			billYear,
			antMonth,
			antYear,
			decimalToNumeric(entry.DiscountAmount),
			timeToPgTimestamptz(entry.UpdatedAt),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEntryNotFound
		}
		return nil
	})
}

// Delete removes one entry.
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	return r.write(ctx, func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEntryNotFound
		}
		return nil
	})
}

// List retrieves entries matching the filter, newest occurrence first.
// Settlement entries are excluded unless the filter asks for them.
func (r *EntryRepository) List(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeSettlements {
		conds = append(conds, "settles_card_id = ''")
	}
	if filter.Kind != "" {
		conds = append(conds, "kind = "+arg(string(filter.Kind)))
	}
	if filter.CategoryID != "" {
		conds = append(conds, "category_id = "+arg(filter.CategoryID))
	}
	if filter.AccountID != "" {
		conds = append(conds, "account_id = "+arg(filter.AccountID))
	}
	if filter.CardID != "" {
		conds = append(conds, "card_id = "+arg(filter.CardID))
	}
	if filter.SeriesID != "" {
		conds = append(conds, "series_id = "+arg(filter.SeriesID))
	}
	if filter.Year != 0 && filter.Month != 0 {
		// Effective period: card purchases match on their bill, everything
		// else on the occurrence date.
		start := time.Date(filter.Year, filter.Month, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		conds = append(conds, fmt.Sprintf(
			"((card_id <> '' AND bill_month = %s AND bill_year = %s) OR (card_id = '' AND occurs_on >= %s AND occurs_on < %s))",
			arg(int32(filter.Month)), arg(int32(filter.Year)),
			arg(timeToPgTimestamptz(start)), arg(timeToPgTimestamptz(end)),
		))
	}

	query := `SELECT ` + entryColumns + ` FROM entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurs_on DESC, id"
	query += " LIMIT " + arg(int32(filter.Limit)) + " OFFSET " + arg(int32(filter.Offset))

	return r.queryEntries(ctx, query, args...)
}

// ListBySeries retrieves the members of a series ordered by installment
// index.
func (r *EntryRepository) ListBySeries(ctx context.Context, seriesID string) ([]*domain.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE series_id = $1
		ORDER BY installment_index`, seriesID)
}

// ListByCard retrieves all entries funded by a card.
func (r *EntryRepository) ListByCard(ctx context.Context, cardID string) ([]*domain.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE card_id = $1
		ORDER BY occurs_on, id`, cardID)
}

// ListByCardPeriod retrieves a card's entries attributed to one bill.
func (r *EntryRepository) ListByCardPeriod(ctx context.Context, cardID string, p domain.Period) ([]*domain.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE card_id = $1 AND bill_month = $2 AND bill_year = $3
		ORDER BY occurs_on, id`, cardID, int32(p.Month), int32(p.Year))
}

// ListByAccount retrieves all entries funded by an account.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE account_id = $1
		ORDER BY occurs_on, id`, accountID)
}

// ListByDestination retrieves transfers into an account.
func (r *EntryRepository) ListByDestination(ctx context.Context, accountID string) ([]*domain.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE destination_account_id = $1
		ORDER BY occurs_on, id`, accountID)
}

// ListByCategoryOccurs retrieves account-funded entries of a category whose
// occurrence date falls in p.
func (r *EntryRepository) ListByCategoryOccurs(ctx context.Context, categoryID string, p domain.Period) ([]*domain.Entry, error) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	return r.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE category_id = $1 AND card_id = ''
			AND occurs_on >= $2 AND occurs_on < $3
		ORDER BY occurs_on, id`,
		categoryID, timeToPgTimestamptz(start), timeToPgTimestamptz(end))
}

// ListByCategoryBill retrieves card-funded entries of a category billed in p.
func (r *EntryRepository) ListByCategoryBill(ctx context.Context, categoryID string, p domain.Period) ([]*domain.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE category_id = $1 AND card_id <> ''
			AND bill_month = $2 AND bill_year = $3
		ORDER BY occurs_on, id`,
		categoryID, int32(p.Month), int32(p.Year))
}

// FindSettlement retrieves the settlement entry for a card bill.
func (r *EntryRepository) FindSettlement(ctx context.Context, cardID string, p domain.Period) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE settles_card_id = $1 AND settles_month = $2 AND settles_year = $3
		LIMIT 1`, cardID, int32(p.Month), int32(p.Year))

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return entry, nil
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		entry                          domain.Entry
		kind, status                   string
		recurrence, splitMode          string
		amount, discountAmount         pgtype.Numeric
		occursOn                       pgtype.Timestamptz
		billMonth, billYear            pgtype.Int4
		antMonth, antYear              pgtype.Int4
		setMonth, setYear              pgtype.Int4
		installmentIdx, installmentCnt int32
		createdAt, updatedAt           pgtype.Timestamptz
	)
	if err := row.Scan(
		&entry.ID,
		&kind,
		&amount,
		&entry.Description,
		&occursOn,
		&status,
		&entry.AccountID,
		&entry.CardID,
		&entry.DestinationAccountID,
		&entry.CategoryID,
		&billMonth,
		&billYear,
		&entry.SeriesID,
		&installmentIdx,
		&installmentCnt,
		&recurrence,
		&splitMode,
		&antMonth,
		&antYear,
		&discountAmount,
		&entry.RelatedEntryID,
		&entry.GoalID,
		&entry.SettlesCardID,
		&setMonth,
		&setYear,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	entry.Kind = domain.Kind(kind)
	entry.Status = domain.Status(status)
	entry.Recurrence = domain.Recurrence(recurrence)
	entry.SplitMode = domain.SplitMode(splitMode)
	entry.Amount = numericToDecimal(amount)
	entry.DiscountAmount = numericToDecimal(discountAmount)
	entry.OccursOn = occursOn.Time
	entry.BillPeriod = intsToPeriod(billMonth, billYear)
	entry.AnticipatedFrom = intsToPeriod(antMonth, antYear)
	entry.SettlesPeriod = intsToPeriod(setMonth, setYear)
	entry.InstallmentIndex = int(installmentIdx)
	entry.InstallmentCount = int(installmentCnt)
	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return &entry, nil
}

// Period conversion helpers. Periods persist as nullable (month, year)
// column pairs; both columns are set or both are null.
func periodToInts(p *domain.Period) (pgtype.Int4, pgtype.Int4) {
	if p == nil {
		return pgtype.Int4{}, pgtype.Int4{}
	}

	return pgtype.Int4{Int32: int32(p.Month), Valid: true},
		pgtype.Int4{Int32: int32(p.Year), Valid: true}
}

func intsToPeriod(month, year pgtype.Int4) *domain.Period {
	if !month.Valid || !year.Valid {
		return nil
	}

	return &domain.Period{Month: time.Month(month.Int32), Year: int(year.Int32)}
}
