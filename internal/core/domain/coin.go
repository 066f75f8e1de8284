package domain

import (
	"errors"
	"time"
)

// ErrDuplicateCoin signals that an insert violated one of the coin
// uniqueness constraints (component triple, value or fingerprint).
// During minting this is an expected collision and triggers a retry.
var ErrDuplicateCoin = errors.New("coin violates a uniqueness constraint")

// Coin is a minted BitSlow. The component triple and the fingerprint
// derived from it are unique across the ledger, as is the value.
type Coin struct {
	ID          int64
	OwnerID     *int64 // nil for seeded, never-owned coins
	Bit1        int
	Bit2        int
	Bit3        int
	Value       int64
	Fingerprint string
	ForSale     bool
	CreatedAt   time.Time

	// OwnerName is a read-side projection joined from the clients table.
	// Empty when the coin has no owner or the query did not join.
	OwnerName string
}

// Available reports whether the coin can currently be purchased:
// either its owner has listed it, or it has never been owned.
func (c *Coin) Available() bool {
	return c.ForSale || c.OwnerID == nil
}
