package dto

// RegisterRequest is the request body for client registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Address  string `json:"address" binding:"omitempty,max=500"`
}

// LoginRequest is the request body for client login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response body for successful registration or login.
type AuthResponse struct {
	ClientID int64  `json:"client_id"`
	Name     string `json:"name"`
	Token    string `json:"token"`
	Expiry   int64  `json:"expiry"` // Unix timestamp
}

// ListingRequest is the request body for the coin listing toggle.
// Listed is a pointer so that an explicit false still binds.
type ListingRequest struct {
	Listed *bool `json:"listed" binding:"required"`
}

// CoinResponse is the wire form of a coin.
type CoinResponse struct {
	CoinID      int64  `json:"coin_id"`
	OwnerID     *int64 `json:"owner_id,omitempty"`
	OwnerName   string `json:"owner_name,omitempty"`
	Bit1        int    `json:"bit1"`
	Bit2        int    `json:"bit2"`
	Bit3        int    `json:"bit3"`
	Value       int64  `json:"value"`
	Fingerprint string `json:"fingerprint"`
	ForSale     bool   `json:"for_sale"`
	CreatedAt   string `json:"created_at"`
}

// CoinListResponse wraps a paginated coin list.
type CoinListResponse struct {
	Items      []CoinResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// PurchaseResponse is the response body for a completed purchase.
type PurchaseResponse struct {
	TransactionID int64  `json:"transaction_id"`
	CoinID        int64  `json:"coin_id"`
	Amount        int64  `json:"amount"`
	SellerID      *int64 `json:"seller_id,omitempty"`
	BuyerID       int64  `json:"buyer_id"`
}

// HistoryEntryResponse is one link of a coin's ownership chain.
type HistoryEntryResponse struct {
	ClientID   int64  `json:"client_id"`
	ClientName string `json:"client_name"`
	Timestamp  string `json:"timestamp"`
}

// TransactionResponse is the wire form of a purchase record.
type TransactionResponse struct {
	TransactionID int64  `json:"transaction_id"`
	CoinID        int64  `json:"coin_id"`
	SellerID      *int64 `json:"seller_id,omitempty"`
	SellerName    string `json:"seller_name,omitempty"`
	BuyerID       int64  `json:"buyer_id"`
	BuyerName     string `json:"buyer_name"`
	Amount        int64  `json:"amount"`
	Fingerprint   string `json:"fingerprint"`
	Date          string `json:"date"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// ProfileResponse is the response for the profile summary view.
type ProfileResponse struct {
	ClientID          int64  `json:"client_id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	CoinsOwned        int64  `json:"coins_owned"`
	TotalValue        int64  `json:"total_value"`
	PurchaseCount     int64  `json:"purchase_count"`
	SaleCount         int64  `json:"sale_count"`
	TotalTransactions int64  `json:"total_transactions"`
	MemberSince       string `json:"member_since"`
}

// UpdateProfileRequest is the request body for a partial profile edit.
type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Email   *string `json:"email,omitempty" binding:"omitempty,email,max=254"`
	Phone   *string `json:"phone,omitempty" binding:"omitempty,phone"`
	Address *string `json:"address,omitempty" binding:"omitempty,max=500"`
}
