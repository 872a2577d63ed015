package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository. Journal rows are only
// ever inserted or flag-updated; there is no DELETE statement in this file.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `
	id, scope_kind, scope_id, account_id, sale_no, type, direction,
	amount, currency, fx_rate, items, note, payment_method,
	ref_entry_id, ref_sale_no, status, is_deleted, date, created_at`

// Create inserts a journal entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	items, err := marshalItems(entry.Items)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = tx.(*Tx).PgxTx().Exec(ctx, query,
		entry.ID,
		string(entry.Scope.Kind),
		entry.Scope.ID,
		entry.AccountID,
		entry.SaleNo,
		string(entry.Type),
		string(entry.Direction),
		decimalToNumeric(entry.Amount),
		entry.Currency,
		decimalToNumeric(entry.FxRate),
		items,
		entry.Note,
		string(entry.PaymentMethod),
		entry.RefEntryID,
		entry.RefSaleNo,
		string(entry.Status),
		entry.IsDeleted,
		timeToPgTimestamptz(entry.Date),
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// GetByID retrieves a journal entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}

	return entry, err
}

// GetByIDForUpdate retrieves a journal entry with a FOR UPDATE lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 FOR UPDATE`

	entry, err := scanEntry(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}

	return entry, err
}

// GetBySaleNo retrieves all entries correlated under one sale number in scope.
func (r *EntryRepository) GetBySaleNo(ctx context.Context, scope domain.Scope, saleNo string) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE scope_kind = $1 AND scope_id = $2 AND sale_no = $3
		ORDER BY date ASC, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, string(scope.Kind), scope.ID, saleNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByAccount retrieves the journal of one account in scope, date ascending,
// optionally bounded by [from, to].
func (r *EntryRepository) ListByAccount(ctx context.Context, scope domain.Scope, accountID string, from, to *time.Time) ([]*domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE scope_kind = $1 AND scope_id = $2 AND account_id = $3
	`
	args := []any{string(scope.Kind), scope.ID, accountID}

	if from != nil {
		args = append(args, *from)
		query += ` AND date >= $4`
	}

	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND date <= $5`
		} else {
			query += ` AND date <= $4`
		}
	}

	query += ` ORDER BY date ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// UpdateState updates the soft-state flags of an entry within a transaction.
func (r *EntryRepository) UpdateState(ctx context.Context, tx usecase.Transaction, id string, status domain.EntryStatus, isDeleted bool) error {
	query := `UPDATE entries SET status = $2, is_deleted = $3 WHERE id = $1`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, string(status), isDeleted)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// CountSettlements counts live payment entries referencing a return.
// Cancelled settlements are netted to zero in the journal, so they must not
// block settling the return again.
func (r *EntryRepository) CountSettlements(ctx context.Context, tx usecase.Transaction, returnEntryID string) (int, error) {
	query := `
		SELECT count(*)
		FROM entries
		WHERE ref_entry_id = $1 AND type = $2 AND is_deleted = false AND status <> $3
	`

	var count int
	err := tx.(*Tx).PgxTx().QueryRow(ctx, query, returnEntryID, string(domain.EntryPayment), string(domain.StatusCancelled)).Scan(&count)

	return count, err
}

// SumActiveReturns sums live sale_return amounts referencing a sale entry.
func (r *EntryRepository) SumActiveReturns(ctx context.Context, tx usecase.Transaction, saleEntryID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(sum(amount), 0)
		FROM entries
		WHERE ref_entry_id = $1 AND type = $2 AND is_deleted = false AND status <> $3
	`

	var total pgtype.Numeric
	err := tx.(*Tx).PgxTx().QueryRow(ctx, query, saleEntryID, string(domain.EntrySaleReturn), string(domain.StatusCancelled)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// CountByAccount counts all journal rows of one account in scope.
func (r *EntryRepository) CountByAccount(ctx context.Context, scope domain.Scope, accountID string) (int64, error) {
	query := `
		SELECT count(*)
		FROM entries
		WHERE scope_kind = $1 AND scope_id = $2 AND account_id = $3
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, string(scope.Kind), scope.ID, accountID).Scan(&count)

	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var (
		entry     domain.Entry
		scopeKind string
		amount    pgtype.Numeric
		fxRate    pgtype.Numeric
		items     []byte
		date      pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&scopeKind,
		&entry.Scope.ID,
		&entry.AccountID,
		&entry.SaleNo,
		&entry.Type,
		&entry.Direction,
		&amount,
		&entry.Currency,
		&fxRate,
		&items,
		&entry.Note,
		&entry.PaymentMethod,
		&entry.RefEntryID,
		&entry.RefSaleNo,
		&entry.Status,
		&entry.IsDeleted,
		&date,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Scope.Kind = domain.ScopeKind(scopeKind)
	entry.Amount = numericToDecimal(amount)
	entry.FxRate = numericToDecimal(fxRate)
	entry.Date = date.Time
	entry.CreatedAt = createdAt.Time

	if len(items) > 0 {
		if err := json.Unmarshal(items, &entry.Items); err != nil {
			return nil, err
		}
	}

	return &entry, nil
}

func scanEntries(rows pgx.Rows) ([]*domain.Entry, error) {
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

func marshalItems(items []domain.LineItem) ([]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}

	return json.Marshal(items)
}
