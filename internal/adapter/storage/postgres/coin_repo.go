package postgres

import (
	"context"
	"errors"
	"fmt"

	"bitslow-market/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// CoinRepo implements ports.CoinRepository.
type CoinRepo struct {
	pool Pool
}

// NewCoinRepo creates a new CoinRepo.
func NewCoinRepo(pool Pool) *CoinRepo {
	return &CoinRepo{pool: pool}
}

// Create inserts a new coin and fills in the generated ID. A unique
// constraint violation (component triple, value or fingerprint already
// taken) comes back as domain.ErrDuplicateCoin so the minting loop can
// retry with a fresh sample.
func (r *CoinRepo) Create(ctx context.Context, c *domain.Coin) error {
	query := `INSERT INTO coins (client_id, bit1, bit2, bit3, value, fingerprint, for_sale, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING coin_id`

	err := r.pool.QueryRow(ctx, query,
		c.OwnerID, c.Bit1, c.Bit2, c.Bit3, c.Value, c.Fingerprint, c.ForSale, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateCoin
		}
		return fmt.Errorf("insert coin: %w", err)
	}
	return nil
}

// GetByID fetches a coin by ID (without locking). Returns (nil, nil) when absent.
func (r *CoinRepo) GetByID(ctx context.Context, id int64) (*domain.Coin, error) {
	query := `SELECT coin_id, client_id, bit1, bit2, bit3, value, fingerprint, for_sale, created_at
		FROM coins WHERE coin_id = $1`

	c := &domain.Coin{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Bit1, &c.Bit2, &c.Bit3,
		&c.Value, &c.Fingerprint, &c.ForSale, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coin by id: %w", err)
	}
	return c, nil
}

// GetByIDForUpdate fetches a coin by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *CoinRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Coin, error) {
	query := `SELECT coin_id, client_id, bit1, bit2, bit3, value, fingerprint, for_sale, created_at
		FROM coins WHERE coin_id = $1 FOR UPDATE`

	c := &domain.Coin{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Bit1, &c.Bit2, &c.Bit3,
		&c.Value, &c.Fingerprint, &c.ForSale, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coin for update: %w", err)
	}
	return c, nil
}

// SetForSale toggles the listing flag if and only if ownerID owns the coin.
// Returns false when no row matched, which covers both an unknown coin and
// a coin owned by someone else.
func (r *CoinRepo) SetForSale(ctx context.Context, coinID, ownerID int64, forSale bool) (bool, error) {
	query := `UPDATE coins SET for_sale = $1 WHERE coin_id = $2 AND client_id = $3`

	tag, err := r.pool.Exec(ctx, query, forSale, coinID, ownerID)
	if err != nil {
		return false, fmt.Errorf("set coin for sale: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// TransferOwner reassigns the coin to newOwnerID and takes it off the
// market. This MUST be called within a transaction.
func (r *CoinRepo) TransferOwner(ctx context.Context, tx pgx.Tx, coinID, newOwnerID int64) error {
	query := `UPDATE coins SET client_id = $1, for_sale = FALSE WHERE coin_id = $2`

	tag, err := tx.Exec(ctx, query, newOwnerID, coinID)
	if err != nil {
		return fmt.Errorf("transfer coin owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("coin not found: %d", coinID)
	}
	return nil
}

// ListMarket returns purchasable coins (listed for sale or never owned),
// newest first, with owner names joined, plus the unpaginated total.
func (r *CoinRepo) ListMarket(ctx context.Context, limit, offset int) ([]domain.Coin, int64, error) {
	countQuery := `SELECT COUNT(*) FROM coins WHERE for_sale = TRUE OR client_id IS NULL`

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count market coins: %w", err)
	}

	query := `SELECT c.coin_id, c.client_id, c.bit1, c.bit2, c.bit3, c.value, c.fingerprint, c.for_sale, c.created_at,
			COALESCE(cl.name, '')
		FROM coins c
		LEFT JOIN clients cl ON cl.client_id = c.client_id
		WHERE c.for_sale = TRUE OR c.client_id IS NULL
		ORDER BY c.created_at DESC, c.coin_id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list market coins: %w", err)
	}
	defer rows.Close()

	coins, err := scanCoinsWithOwner(rows)
	if err != nil {
		return nil, 0, err
	}
	return coins, total, nil
}

// ListByOwner returns ownerID's coins, newest first, plus the total count.
func (r *CoinRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Coin, int64, error) {
	total, err := r.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT c.coin_id, c.client_id, c.bit1, c.bit2, c.bit3, c.value, c.fingerprint, c.for_sale, c.created_at,
			COALESCE(cl.name, '')
		FROM coins c
		LEFT JOIN clients cl ON cl.client_id = c.client_id
		WHERE c.client_id = $1
		ORDER BY c.created_at DESC, c.coin_id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list coins by owner: %w", err)
	}
	defer rows.Close()

	coins, err := scanCoinsWithOwner(rows)
	if err != nil {
		return nil, 0, err
	}
	return coins, total, nil
}

// CountByOwner returns how many coins ownerID holds.
func (r *CoinRepo) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coins WHERE client_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count coins by owner: %w", err)
	}
	return count, nil
}

// SumValueByOwner returns the combined value of ownerID's coins.
func (r *CoinRepo) SumValueByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(value), 0) FROM coins WHERE client_id = $1`, ownerID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum coin value by owner: %w", err)
	}
	return sum, nil
}

func scanCoinsWithOwner(rows pgx.Rows) ([]domain.Coin, error) {
	var coins []domain.Coin
	for rows.Next() {
		var c domain.Coin
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Bit1, &c.Bit2, &c.Bit3,
			&c.Value, &c.Fingerprint, &c.ForSale, &c.CreatedAt, &c.OwnerName,
		); err != nil {
			return nil, fmt.Errorf("scan coin row: %w", err)
		}
		coins = append(coins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coin rows: %w", err)
	}
	return coins, nil
}
