package ports

import (
	"context"
	"time"

	"bitslow-market/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// DBTransactor begins database transactions. Mutating ledger operations run
// all their writes inside a single transaction obtained here.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ClientRepository persists marketplace clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
	UpdateProfile(ctx context.Context, client *domain.Client) error
}

// CoinRepository persists coins. Methods taking a pgx.Tx participate in a
// caller-managed transaction.
type CoinRepository interface {
	// Create inserts a new coin and fills in its generated ID. Returns
	// domain.ErrDuplicateCoin when a uniqueness constraint rejects the row.
	Create(ctx context.Context, coin *domain.Coin) error
	GetByID(ctx context.Context, id int64) (*domain.Coin, error)
	// GetByIDForUpdate locks the coin row for the duration of tx.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Coin, error)
	// SetForSale flips the listing flag only if ownerID owns the coin.
	// Returns false when no row matched.
	SetForSale(ctx context.Context, coinID, ownerID int64, forSale bool) (bool, error)
	// TransferOwner assigns the coin to newOwnerID and clears its listing.
	TransferOwner(ctx context.Context, tx pgx.Tx, coinID, newOwnerID int64) error
	// ListMarket returns purchasable coins (listed or never owned), newest
	// first, with owner names joined, plus the unpaginated total.
	ListMarket(ctx context.Context, limit, offset int) ([]domain.Coin, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Coin, int64, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
	SumValueByOwner(ctx context.Context, ownerID int64) (int64, error)
}

// TransactionListParams filters and orders the global transaction feed.
// Nil pointer fields mean "no constraint". SortBy must be one of the
// whitelisted column aliases; anything else falls back to the date column.
type TransactionListParams struct {
	BuyerName  string
	SellerName string
	MinValue   *int64
	MaxValue   *int64
	From       *time.Time
	To         *time.Time
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
}

// TransactionRepository persists purchase records.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]domain.Transaction, int64, error)
	ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]domain.Transaction, int64, error)
	CountByBuyer(ctx context.Context, buyerID int64) (int64, error)
	CountBySeller(ctx context.Context, sellerID int64) (int64, error)
}

// HistoryRepository persists the append-only ownership chain.
type HistoryRepository interface {
	Append(ctx context.Context, tx pgx.Tx, coinID, clientID int64, at time.Time) error
	// ListByCoin returns the chain in ascending timestamp order with
	// client names joined.
	ListByCoin(ctx context.Context, coinID int64) ([]domain.HistoryEntry, error)
}
