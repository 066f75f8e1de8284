package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitslow-market/internal/core/domain"
	"bitslow-market/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const txnSelectColumns = `t.transaction_id, t.coin_id, t.seller_id, t.buyer_id, t.amount, t.fingerprint, t.transaction_date,
		COALESCE(seller.name, ''), buyer.name`

const txnJoins = `FROM transactions t
		LEFT JOIN clients seller ON seller.client_id = t.seller_id
		JOIN clients buyer ON buyer.client_id = t.buyer_id`

// Create inserts a purchase record within a transaction and fills in the
// generated ID.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	query := `INSERT INTO transactions (coin_id, seller_id, buyer_id, amount, fingerprint, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING transaction_id`

	err := tx.QueryRow(ctx, query,
		txn.CoinID, txn.SellerID, txn.BuyerID, txn.Amount, txn.Fingerprint, txn.CreatedAt,
	).Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by ID. Returns (nil, nil) when absent.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + txnSelectColumns + ` ` + txnJoins + ` WHERE t.transaction_id = $1`

	txn := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&txn.ID, &txn.CoinID, &txn.SellerID, &txn.BuyerID,
		&txn.Amount, &txn.Fingerprint, &txn.CreatedAt,
		&txn.SellerName, &txn.BuyerName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return txn, nil
}

// sortColumns whitelists the sortable aliases of the transaction feed.
// Anything outside the map falls back to the transaction date.
var sortColumns = map[string]string{
	"date":   "t.transaction_date",
	"amount": "t.amount",
	"coin":   "t.coin_id",
	"buyer":  "buyer.name",
	"seller": "seller.name",
}

// List returns the filtered, sorted, paginated transaction feed plus the
// unpaginated total matching the filters.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conds []string
	var args []any

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.BuyerName != "" {
		conds = append(conds, "buyer.name ILIKE "+addArg("%"+params.BuyerName+"%"))
	}
	if params.SellerName != "" {
		conds = append(conds, "seller.name ILIKE "+addArg("%"+params.SellerName+"%"))
	}
	if params.MinValue != nil {
		conds = append(conds, "t.amount >= "+addArg(*params.MinValue))
	}
	if params.MaxValue != nil {
		conds = append(conds, "t.amount <= "+addArg(*params.MaxValue))
	}
	if params.From != nil {
		conds = append(conds, "t.transaction_date >= "+addArg(*params.From))
	}
	if params.To != nil {
		conds = append(conds, "t.transaction_date <= "+addArg(*params.To))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) ` + txnJoins + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	orderCol, ok := sortColumns[params.SortBy]
	if !ok {
		orderCol = "t.transaction_date"
	}
	dir := "ASC"
	if params.SortDesc {
		dir = "DESC"
	}

	query := `SELECT ` + txnSelectColumns + ` ` + txnJoins + where +
		fmt.Sprintf(" ORDER BY %s %s, t.transaction_id %s LIMIT %s OFFSET %s",
			orderCol, dir, dir, addArg(params.Limit), addArg(params.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// ListByBuyer returns buyerID's purchases, newest first, plus the total.
func (r *TransactionRepo) ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	total, err := r.CountByBuyer(ctx, buyerID)
	if err != nil {
		return nil, 0, err
	}
	return r.listBySide(ctx, "t.buyer_id", buyerID, limit, offset, total)
}

// ListBySeller returns sellerID's sales, newest first, plus the total.
func (r *TransactionRepo) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	total, err := r.CountBySeller(ctx, sellerID)
	if err != nil {
		return nil, 0, err
	}
	return r.listBySide(ctx, "t.seller_id", sellerID, limit, offset, total)
}

func (r *TransactionRepo) listBySide(ctx context.Context, column string, clientID int64, limit, offset int, total int64) ([]domain.Transaction, int64, error) {
	query := `SELECT ` + txnSelectColumns + ` ` + txnJoins +
		` WHERE ` + column + ` = $1
		ORDER BY t.transaction_date DESC, t.transaction_id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions by client: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// CountByBuyer returns how many purchases buyerID has made.
func (r *TransactionRepo) CountByBuyer(ctx context.Context, buyerID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE buyer_id = $1`, buyerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions by buyer: %w", err)
	}
	return count, nil
}

// CountBySeller returns how many sales sellerID has made.
func (r *TransactionRepo) CountBySeller(ctx context.Context, sellerID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE seller_id = $1`, sellerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions by seller: %w", err)
	}
	return count, nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.CoinID, &txn.SellerID, &txn.BuyerID,
			&txn.Amount, &txn.Fingerprint, &txn.CreatedAt,
			&txn.SellerName, &txn.BuyerName,
		); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
