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

// ProductRepository implements usecase.ProductRepository.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `
	id, scope_kind, scope_id, name, sku, unit, on_hand, version, created_at, updated_at`

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		string(product.Scope.Kind),
		product.Scope.ID,
		product.Name,
		product.SKU,
		product.Unit,
		decimalToNumeric(product.OnHand),
		product.Version,
		timeToPgTimestamptz(product.CreatedAt),
		timeToPgTimestamptz(product.UpdatedAt),
	)

	return err
}

// GetByID retrieves a product by ID in scope.
func (r *ProductRepository) GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND scope_kind = $2 AND scope_id = $3
	`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id, string(scope.Kind), scope.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}

	return product, err
}

// GetByIDsForUpdate locks product rows in scope. The caller passes IDs in
// sorted order; ordering the SELECT the same way keeps the row lock sequence
// deterministic.
func (r *ProductRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, scope domain.Scope, ids []string) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND scope_kind = $2 AND scope_id = $3
		ORDER BY id ASC
		FOR UPDATE
	`

	rows, err := tx.(*Tx).PgxTx().Query(ctx, query, ids, string(scope.Kind), scope.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	return products, rows.Err()
}

// AdjustOnHand applies a signed quantity delta within a transaction.
func (r *ProductRepository) AdjustOnHand(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE products
		SET on_hand = on_hand + $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, decimalToNumeric(delta), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// List lists products in scope with pagination.
func (r *ProductRepository) List(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE scope_kind = $1 AND scope_id = $2
		ORDER BY name ASC, id ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, string(scope.Kind), scope.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	return products, rows.Err()
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product   domain.Product
		scopeKind string
		onHand    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&product.ID,
		&scopeKind,
		&product.Scope.ID,
		&product.Name,
		&product.SKU,
		&product.Unit,
		&onHand,
		&product.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Scope.Kind = domain.ScopeKind(scopeKind)
	product.OnHand = numericToDecimal(onHand)
	product.CreatedAt = createdAt.Time
	product.UpdatedAt = updatedAt.Time

	return &product, nil
}
