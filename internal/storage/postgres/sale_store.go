package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// SaleStore implements storage.SaleStore using PostgreSQL. The seq
// column provides insertion-order enumeration; token_id is the primary
// key, so both access paths read the same row set.
type SaleStore struct {
	pool *Pool
}

// NewSaleStore creates a new SaleStore.
func NewSaleStore(pool *Pool) *SaleStore {
	return &SaleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SaleStore = (*SaleStore)(nil)

const saleColumns = `token_id, name, symbol, creator, sold::text, raised::text, is_open, created_at`

// Insert registers a new sale. Returns ErrDuplicateKey if token_id exists.
func (s *SaleStore) Insert(ctx context.Context, sale *domain.Sale) error {
	if sale == nil || sale.TokenID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO sales (
			token_id, name, symbol, creator, sold, raised, is_open, created_at
		) VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		sale.TokenID,
		sale.Name,
		sale.Symbol,
		sale.Creator,
		sale.Sold.Dec(),
		sale.Raised.Dec(),
		sale.IsOpen,
		sale.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID retrieves a sale by token identity. Returns ErrNotFound if not exists.
func (s *SaleStore) GetByID(ctx context.Context, tokenID string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE token_id = $1`

	row := s.pool.QueryRow(ctx, query, tokenID)
	sale, err := scanSale(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get sale by id: %w", err)
	}
	return sale, nil
}

// GetByIndex retrieves a sale by insertion order, zero-based.
func (s *SaleStore) GetByIndex(ctx context.Context, index int) (*domain.Sale, error) {
	if index < 0 {
		return nil, storage.ErrNotFound
	}

	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY seq ASC OFFSET $1 LIMIT 1`

	row := s.pool.QueryRow(ctx, query, index)
	sale, err := scanSale(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get sale by index: %w", err)
	}
	return sale, nil
}

// Count returns the number of registered sales.
func (s *SaleStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return count, nil
}

// Update applies mutate inside a transaction holding a row lock, so the
// read-modify-write is a single atomic step.
func (s *SaleStore) Update(ctx context.Context, tokenID string, mutate func(*domain.Sale) error) error {
	if mutate == nil {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + saleColumns + ` FROM sales WHERE token_id = $1 FOR UPDATE`
	sale, err := scanSale(tx.QueryRow(ctx, query, tokenID))
	if err != nil {
		if isNotFoundError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("lock sale for update: %w", err)
	}

	if err := mutate(sale); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE sales SET sold = $2::numeric, raised = $3::numeric, is_open = $4
		WHERE token_id = $1
	`, tokenID, sale.Sold.Dec(), sale.Raised.Dec(), sale.IsOpen)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// scanSale scans a single sale row.
func scanSale(row pgx.Row) (*domain.Sale, error) {
	var (
		sale         domain.Sale
		sold, raised string
	)
	err := row.Scan(
		&sale.TokenID,
		&sale.Name,
		&sale.Symbol,
		&sale.Creator,
		&sold,
		&raised,
		&sale.IsOpen,
		&sale.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sale.Sold, err = parseNumeric(sold); err != nil {
		return nil, err
	}
	if sale.Raised, err = parseNumeric(raised); err != nil {
		return nil, err
	}
	return &sale, nil
}
