package clickhouse

import (
	"context"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// PurchaseEventStore implements storage.PurchaseEventStore using
// ClickHouse. Amounts are stored as UInt256 columns.
type PurchaseEventStore struct {
	conn *Conn
}

// NewPurchaseEventStore creates a new PurchaseEventStore.
func NewPurchaseEventStore(conn *Conn) *PurchaseEventStore {
	return &PurchaseEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PurchaseEventStore = (*PurchaseEventStore)(nil)

// Insert appends one purchase record.
func (s *PurchaseEventStore) Insert(ctx context.Context, r *domain.PurchaseRecord) error {
	if r == nil || r.TokenID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO purchase_events (
			token_id, buyer, amount, cost, new_sold, new_raised, closed, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	closed := uint8(0)
	if r.Closed {
		closed = 1
	}

	err = batch.Append(
		r.TokenID,
		r.Buyer,
		r.Amount.ToBig(),
		r.Cost.ToBig(),
		r.NewSold.ToBig(),
		r.NewRaised.ToBig(),
		closed,
		uint64(r.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTokenID retrieves all records for a token, ordered by timestamp ASC.
func (s *PurchaseEventStore) GetByTokenID(ctx context.Context, tokenID string) ([]*domain.PurchaseRecord, error) {
	query := `
		SELECT token_id, buyer, amount, cost, new_sold, new_raised, closed, timestamp_ms
		FROM purchase_events
		WHERE token_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get purchases by token: %w", err)
	}
	defer rows.Close()

	var result []*domain.PurchaseRecord
	for rows.Next() {
		var (
			r           domain.PurchaseRecord
			amount      big.Int
			cost        big.Int
			newSold     big.Int
			newRaised   big.Int
			closed      uint8
			timestampMs uint64
		)
		err := rows.Scan(&r.TokenID, &r.Buyer, &amount, &cost, &newSold, &newRaised, &closed, &timestampMs)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}

		if r.Amount, err = fromBig(&amount); err != nil {
			return nil, err
		}
		if r.Cost, err = fromBig(&cost); err != nil {
			return nil, err
		}
		if r.NewSold, err = fromBig(&newSold); err != nil {
			return nil, err
		}
		if r.NewRaised, err = fromBig(&newRaised); err != nil {
			return nil, err
		}
		r.Closed = closed != 0
		r.Timestamp = int64(timestampMs)

		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return result, nil
}

func fromBig(b *big.Int) (*uint256.Int, error) {
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("amount %s exceeds 256 bits", b.String())
	}
	return u, nil
}
