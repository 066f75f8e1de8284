package ports

import (
	"context"
	"time"

	"bitslow-market/internal/core/domain"
)

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// LedgerService owns all coin state transitions.
type LedgerService interface {
	// Mint allocates a new coin with a unique component triple, value and
	// fingerprint. ownerID may be nil for pool coins.
	Mint(ctx context.Context, ownerID *int64) (*domain.Coin, error)
	// SetListed toggles the for-sale flag of a coin owned by ownerID.
	SetListed(ctx context.Context, coinID, ownerID int64, listed bool) error
	// Transfer sells the coin to buyerID, atomically recording the
	// transaction, the ownership change and the history entry.
	Transfer(ctx context.Context, coinID, buyerID int64) (*domain.Transaction, error)
	// GetHistory returns the coin's ownership chain, oldest first.
	GetHistory(ctx context.Context, coinID int64) ([]domain.HistoryEntry, error)
}

// MarketService serves the public marketplace view.
type MarketService interface {
	List(ctx context.Context, page, limit int) ([]domain.Coin, *Pagination, error)
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// AuthResult is returned from both registration and login.
type AuthResult struct {
	ClientID  int64
	Name      string
	Token     string
	ExpiresAt time.Time
}

// AuthService registers and authenticates clients.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// TokenClaims are the validated contents of an access token.
type TokenClaims struct {
	ClientID  int64
	ExpiresAt time.Time
}

// TokenService issues and validates access tokens.
type TokenService interface {
	Generate(clientID int64) (string, time.Time, error)
	Validate(token string) (*TokenClaims, error)
}

// HashService hashes and verifies passwords.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// ProfileUpdate carries a partial profile edit. Nil fields are untouched.
type ProfileUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// ClientService manages client profiles.
type ClientService interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	UpdateProfile(ctx context.Context, id int64, in ProfileUpdate) (*domain.Client, error)
}

// ReportingService serves read-side views over coins and transactions.
type ReportingService interface {
	GetProfile(ctx context.Context, clientID int64) (*domain.ProfileSummary, error)
	ListOwnedCoins(ctx context.Context, clientID int64, page, limit int) ([]domain.Coin, *Pagination, error)
	ListBuyerTransactions(ctx context.Context, clientID int64, page, limit int) ([]domain.Transaction, *Pagination, error)
	ListSellerTransactions(ctx context.Context, clientID int64, page, limit int) ([]domain.Transaction, *Pagination, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, *Pagination, error)
}
