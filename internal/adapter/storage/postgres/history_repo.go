package postgres

import (
	"context"
	"fmt"
	"time"

	"bitslow-market/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// HistoryRepo implements ports.HistoryRepository.
type HistoryRepo struct {
	pool Pool
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(pool Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

// Append adds one link to the coin's ownership chain within a transaction.
func (r *HistoryRepo) Append(ctx context.Context, tx pgx.Tx, coinID, clientID int64, at time.Time) error {
	query := `INSERT INTO coin_history (coin_id, client_id, recorded_at) VALUES ($1, $2, $3)`

	if _, err := tx.Exec(ctx, query, coinID, clientID, at); err != nil {
		return fmt.Errorf("append coin history: %w", err)
	}
	return nil
}

// ListByCoin returns the coin's ownership chain in ascending timestamp
// order with client names joined.
func (r *HistoryRepo) ListByCoin(ctx context.Context, coinID int64) ([]domain.HistoryEntry, error) {
	query := `SELECT h.history_id, h.coin_id, h.client_id, cl.name, h.recorded_at
		FROM coin_history h
		JOIN clients cl ON cl.client_id = h.client_id
		WHERE h.coin_id = $1
		ORDER BY h.recorded_at ASC, h.history_id ASC`

	rows, err := r.pool.Query(ctx, query, coinID)
	if err != nil {
		return nil, fmt.Errorf("list coin history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.CoinID, &e.ClientID, &e.ClientName, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}
