package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trusttrade/trustd/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore using PostgreSQL. Rows mirror
// the poller's view of the contract; re-observing a trade updates its row.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a SnapshotStore backed by the given pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

const snapshotSelectCols = `id, seller, buyer, token, token_symbol,
	token_amount, eth_price, fee_basis_points, status, disputed,
	created_at, executed_at, escrow_duration`

func scanSnapshotRows(rows pgx.Rows) ([]domain.TradeSnapshot, error) {
	var snaps []domain.TradeSnapshot
	for rows.Next() {
		var t domain.TradeSnapshot
		var status string
		if err := rows.Scan(
			&t.ID, &t.Seller, &t.Buyer, &t.Token, &t.TokenSymbol,
			&t.TokenAmount, &t.EthPrice, &t.FeeBasisPoints, &status, &t.Disputed,
			&t.CreatedAt, &t.ExecutedAt, &t.EscrowDuration,
		); err != nil {
			return nil, err
		}
		t.Status = domain.DisplayStatus(status)
		snaps = append(snaps, t)
	}
	return snaps, rows.Err()
}

// UpsertBatch writes a poll cycle's snapshots using pgx Batch. Status, buyer,
// and escrow fields change as a trade moves through its lifecycle, so
// conflicts update rather than skip.
func (s *SnapshotStore) UpsertBatch(ctx context.Context, snaps []domain.TradeSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	const query = `
		INSERT INTO trade_snapshots (
			id, seller, buyer, token, token_symbol,
			token_amount, eth_price, fee_basis_points, status, disputed,
			created_at, executed_at, escrow_duration, observed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, NOW()
		) ON CONFLICT (id) DO UPDATE SET
			buyer = EXCLUDED.buyer,
			token_symbol = EXCLUDED.token_symbol,
			status = EXCLUDED.status,
			disputed = EXCLUDED.disputed,
			executed_at = EXCLUDED.executed_at,
			escrow_duration = EXCLUDED.escrow_duration,
			observed_at = NOW()`

	batch := &pgx.Batch{}
	for _, t := range snaps {
		batch.Queue(query,
			t.ID, strings.ToLower(t.Seller), strings.ToLower(t.Buyer),
			strings.ToLower(t.Token), t.TokenSymbol,
			t.TokenAmount, t.EthPrice, t.FeeBasisPoints, string(t.Status), t.Disputed,
			t.CreatedAt, t.ExecutedAt, t.EscrowDuration,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range snaps {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert snapshot batch item %d: %w", i, err)
		}
	}
	return nil
}

// GetByID returns one snapshot by its decimal trade ID.
// It returns domain.ErrNotFound when the trade has never been observed.
func (s *SnapshotStore) GetByID(ctx context.Context, id string) (domain.TradeSnapshot, error) {
	query := `SELECT ` + snapshotSelectCols + ` FROM trade_snapshots WHERE id = $1`

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return domain.TradeSnapshot{}, fmt.Errorf("postgres: get snapshot %s: %w", id, err)
	}
	defer rows.Close()

	snaps, err := scanSnapshotRows(rows)
	if err != nil {
		return domain.TradeSnapshot{}, fmt.Errorf("postgres: scan snapshot %s: %w", id, err)
	}
	if len(snaps) == 0 {
		return domain.TradeSnapshot{}, domain.ErrNotFound
	}
	return snaps[0], nil
}

// ListByStatus returns snapshots in the given display status, newest first.
func (s *SnapshotStore) ListByStatus(ctx context.Context, status domain.DisplayStatus, opts domain.ListOpts) ([]domain.TradeSnapshot, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + snapshotSelectCols + `
		FROM trade_snapshots
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, string(status), limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots by status %s: %w", status, err)
	}
	defer rows.Close()

	snaps, err := scanSnapshotRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan snapshots by status %s: %w", status, err)
	}
	return snaps, nil
}

// ListByAddress returns snapshots where the address is seller or buyer,
// newest first.
func (s *SnapshotStore) ListByAddress(ctx context.Context, address string, opts domain.ListOpts) ([]domain.TradeSnapshot, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + snapshotSelectCols + `
		FROM trade_snapshots
		WHERE seller = $1 OR buyer = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, strings.ToLower(address), limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots for %s: %w", address, err)
	}
	defer rows.Close()

	snaps, err := scanSnapshotRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan snapshots for %s: %w", address, err)
	}
	return snaps, nil
}

// Count returns the number of observed trades.
func (s *SnapshotStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM trade_snapshots").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count snapshots: %w", err)
	}
	return n, nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
