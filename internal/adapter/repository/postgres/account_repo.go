package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `
	id, scope_kind, scope_id, display_name, kind, currency, tax_no, phone,
	cached_bakiye, version, created_at, updated_at`

// Create inserts a new cari account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		string(account.Scope.Kind),
		account.Scope.ID,
		account.DisplayName,
		string(account.Kind),
		account.Currency,
		account.TaxNo,
		account.Phone,
		decimalToNumeric(account.CachedBakiye),
		account.Version,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account by ID. Scope authorization happens in the
// usecase layer, which needs the stored scope to tell NotFound from Forbidden.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}

	return account, err
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	account, err := scanAccount(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}

	return account, err
}

// UpdateCachedBakiye rewrites the denormalized bakiye within a transaction.
func (r *AccountRepository) UpdateCachedBakiye(ctx context.Context, tx usecase.Transaction, id string, bakiye decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE accounts
		SET cached_bakiye = $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, decimalToNumeric(bakiye), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts in scope with pagination.
func (r *AccountRepository) List(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE scope_kind = $1 AND scope_id = $2
		ORDER BY display_name ASC, id ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, string(scope.Kind), scope.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account   domain.Account
		scopeKind string
		bakiye    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&scopeKind,
		&account.Scope.ID,
		&account.DisplayName,
		&account.Kind,
		&account.Currency,
		&account.TaxNo,
		&account.Phone,
		&bakiye,
		&account.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Scope.Kind = domain.ScopeKind(scopeKind)
	account.CachedBakiye = numericToDecimal(bakiye)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
