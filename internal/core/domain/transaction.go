package domain

import "time"

// Transaction records a completed coin purchase. Immutable once written;
// Amount and Fingerprint are snapshotted from the coin at sale time so the
// record stays meaningful even if the coin row later changes.
type Transaction struct {
	ID          int64
	CoinID      int64
	SellerID    *int64 // nil when the coin was bought off the unowned pool
	BuyerID     int64
	Amount      int64
	Fingerprint string
	CreatedAt   time.Time

	// Read-side projections.
	SellerName string
	BuyerName  string
}

// HistoryEntry is one link in a coin's ownership chain. Append-only.
type HistoryEntry struct {
	ID         int64
	CoinID     int64
	ClientID   int64
	ClientName string
	RecordedAt time.Time
}
